package prefrule_test

import (
	"testing"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

func TestIsConsistent(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})

	good := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), []record.Attribute{c})
	require.True(t, good.IsConsistent())
	require.NoError(t, good.Validate())

	badSameAttr := prefrule.New(cond, a, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)
	require.False(t, badSameAttr.IsConsistent())
	require.Error(t, badSameAttr.Validate())

	badOverlapIndiff := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), []record.Attribute{a})
	require.False(t, badOverlapIndiff.IsConsistent())
}

func TestChangeRecord(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")

	// IF a=1 THEN b=2 BETTER b=3 (c)
	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), []record.Attribute{c})

	rec := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(5))
	out, ok, err := rule.ChangeRecord(rec)
	require.NoError(t, err)
	require.True(t, ok)

	av, err := out.Get(a)
	require.NoError(t, err)
	eq, err := av.EQ(value.NewInteger(1))
	require.NoError(t, err)
	require.True(t, eq)

	_, err = out.Get(b)
	require.Error(t, err, "preference attribute should no longer carry a concrete value")
	worst, ok := out.IntervalFor(b)
	require.True(t, ok, "preference attribute should carry the worst interval")
	require.True(t, worst.Equal(interval.Equals(value.NewInteger(3))))

	_, err = out.Get(c)
	require.Error(t, err, "indifferent attribute should be dropped")

	noMatch := record.NewBuffer().Add(a, value.NewInteger(9)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(5))
	_, ok, err = rule.ChangeRecord(noMatch)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordDominates(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), []record.Attribute{c})

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(5))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3)).Add(c, value.NewInteger(9))

	ok, err := rule.RecordDominates(r1, r2)
	require.NoError(t, err)
	require.True(t, ok, "scenario (a) from spec.md §8")

	ok, err = rule.RecordDominates(r2, r1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSplit(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	// R1: 1<a<9 THEN b=2 BETTER b=3 ()
	r1Cond := formula.New(map[record.Attribute]interval.Interval{
		a: interval.New(ptr(value.NewInteger(1)), false, ptr(value.NewInteger(9)), false),
	})
	r1 := prefrule.New(r1Cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)

	// R2: 2<a<5 THEN b=2 BETTER b=3 ()
	r2Cond := formula.New(map[record.Attribute]interval.Interval{
		a: interval.New(ptr(value.NewInteger(2)), false, ptr(value.NewInteger(5)), false),
	})
	r2 := prefrule.New(r2Cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)

	parts, err := r1.Split(r2)
	require.NoError(t, err)
	require.Len(t, parts, 2, "scenario (c) from spec.md §8")

	for _, p := range parts {
		require.True(t, p.IsConsistent())
	}
}

func ptr(v value.Value) *value.Value { return &v }
