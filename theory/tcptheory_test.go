package theory_test

import (
	"testing"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/theory"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

type fakeSeq struct {
	recs []record.Record
}

func (s fakeSeq) Len() int                 { return len(s.recs) }
func (s fakeSeq) At(pos int) record.Record { return s.recs[pos] }

func TestTCPTheoryConsistent(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	cp := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)
	rule := prefrule.NewTemporal(cp, false, formula.New(nil), formula.New(nil), formula.New(nil))

	th, err := theory.NewTemporal([]prefrule.TCPRule{rule})
	require.NoError(t, err)
	require.True(t, th.IsConsistent())
}

func TestTCPTheoryDominatesBySearch(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	cp := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)
	rule := prefrule.NewTemporal(cp, false, formula.New(nil), formula.New(nil), formula.New(nil))

	th, err := theory.NewTemporal([]prefrule.TCPRule{rule})
	require.NoError(t, err)
	require.True(t, th.IsConsistent())

	seq := fakeSeq{recs: []record.Record{
		record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2)),
	}}
	goal := fakeSeq{recs: []record.Record{
		record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3)),
	}}

	ok, err := th.DominatesBySearch(seq, goal)
	require.NoError(t, err)
	require.True(t, ok)
}
