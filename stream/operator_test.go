package stream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/stream"
	"github.com/streampref/streampref/value"
)

// fakeSource is a minimal Operator with no operands, used to drive CanRun
// from a dependent operator.
type fakeSource struct {
	stream.Base
}

func newFakeSource(attrs []record.Attribute) *fakeSource {
	return &fakeSource{Base: stream.NewBase(attrs, stream.Table)}
}

// Run satisfies stream.Operator; it advances to t with an empty list.
func (f *fakeSource) Run(t int64) error {
	return f.Advance(t, nil)
}

// Feed advances to t with recs as the new current list.
func (f *fakeSource) Feed(t int64, recs []record.Record) error {
	return f.Advance(t, recs)
}

func TestBaseCanRunGatesOnOperandTimestamps(t *testing.T) {
	id := record.NewAttribute("id")
	src := newFakeSource([]record.Attribute{id})

	consumer := &fakeSource{Base: stream.NewBase([]record.Attribute{id}, stream.Table, src)}

	require.False(t, consumer.CanRun(0), "operand has not run at t=0 yet")

	require.NoError(t, src.Feed(0, nil))
	require.True(t, consumer.CanRun(0))

	require.NoError(t, consumer.Feed(0, nil))
	require.False(t, consumer.CanRun(0), "already ran at t=0")
}

func TestBaseAdvanceComputesInsertedAndDeleted(t *testing.T) {
	id := record.NewAttribute("id")
	op := newFakeSource([]record.Attribute{id})

	r1 := record.NewBuffer().Add(id, value.NewInteger(1))
	r2 := record.NewBuffer().Add(id, value.NewInteger(2))

	require.NoError(t, op.Feed(0, []record.Record{r1}))
	require.Equal(t, int64(0), op.GetTimestamp())
	require.Len(t, op.GetInsertedList(), 1)
	require.Empty(t, op.GetDeletedList())

	require.NoError(t, op.Feed(1, []record.Record{r2}))
	require.Len(t, op.GetInsertedList(), 1)
	require.Len(t, op.GetDeletedList(), 1)
	require.Len(t, op.GetCurrentList(), 1) // current list replaced entirely, not accumulated
	require.Equal(t, r2, op.GetCurrentList()[0])
}

func TestResultTypeString(t *testing.T) {
	require.Equal(t, "table", stream.Table.String())
	require.Equal(t, "stream", stream.Stream.String())
}
