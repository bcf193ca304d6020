package sequence_test

import (
	"testing"

	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/sequence"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

func pos(ts int64, x int64) sequence.Position {
	return sequence.Position{
		Record:    record.NewBuffer().Add(record.NewAttribute("x"), value.NewInteger(x)),
		Timestamp: ts,
		Start:     0,
		End:       10,
	}
}

func TestAppendAndDeleteExpired(t *testing.T) {
	s := sequence.New("1")
	s.Append(pos(0, 1))
	s.Append(pos(1, 2))
	require.Equal(t, 2, s.Len())
	require.Equal(t, 2, s.Inserted())

	expired := sequence.Position{Record: record.NewBuffer(), Timestamp: 20, Start: 0, End: 10}
	s2 := sequence.New("1")
	s2.Append(expired)
	s2.Append(pos(1, 2))
	s2.DeleteExpired()
	require.Equal(t, 1, s2.Len())
	require.Equal(t, 1, s2.Deleted())
}

func TestCopyIsIndependent(t *testing.T) {
	s := sequence.New("1")
	s.Append(pos(0, 1))
	cp := s.Copy()
	cp.Append(pos(1, 2))
	require.Equal(t, 1, s.Len())
	require.Equal(t, 2, cp.Len())
}

func TestFirstDifferentPosition(t *testing.T) {
	s1 := sequence.New("1")
	s1.Append(pos(0, 1))
	s1.Append(pos(1, 2))

	s2 := sequence.New("1")
	s2.Append(pos(0, 1))
	s2.Append(pos(1, 9))

	idx, err := s1.FirstDifferentPosition(s2)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
}
