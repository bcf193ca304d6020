package formula_test

import (
	"testing"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

func TestComparisonDominates(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")

	best := formula.New(map[record.Attribute]interval.Interval{
		a: interval.Equals(value.NewInteger(1)),
		b: interval.Equals(value.NewInteger(2)),
	})
	worst := formula.New(map[record.Attribute]interval.Interval{
		a: interval.Equals(value.NewInteger(1)),
		b: interval.Equals(value.NewInteger(3)),
	})
	cmp := formula.NewComparison(best, worst, []record.Attribute{c})

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(5))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3)).Add(c, value.NewInteger(9))

	ok, err := cmp.Dominates(r1, r2)
	require.NoError(t, err)
	require.True(t, ok, "scenario (a) from spec.md §8: first record should dominate second")

	ok, err = cmp.Dominates(r2, r1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsMoreGenericThan(t *testing.T) {
	x := record.NewAttribute("x")
	y := record.NewAttribute("y")

	// R1: x=1 BETTER x=2 ()
	r1Best := formula.New(map[record.Attribute]interval.Interval{x: interval.Equals(value.NewInteger(1))})
	r1Worst := formula.New(map[record.Attribute]interval.Interval{x: interval.Equals(value.NewInteger(2))})
	c1 := formula.NewComparison(r1Best, r1Worst, nil)

	// R2: x=1 AND y=7 BETTER x=2 AND y=7 ()
	r2Best := formula.New(map[record.Attribute]interval.Interval{
		x: interval.Equals(value.NewInteger(1)),
		y: interval.Equals(value.NewInteger(7)),
	})
	r2Worst := formula.New(map[record.Attribute]interval.Interval{
		x: interval.Equals(value.NewInteger(2)),
		y: interval.Equals(value.NewInteger(7)),
	})
	c2 := formula.NewComparison(r2Best, r2Worst, nil)

	require.True(t, c1.IsMoreGenericThan(c2), "scenario (b) from spec.md §8")
	require.False(t, c2.IsMoreGenericThan(c1))
}
