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

func TestDepthSearchDominance(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), []record.Attribute{c})

	th, err := theory.New([]prefrule.CPRule{rule}, theory.AlgDepthSearch)
	require.NoError(t, err)
	require.True(t, th.IsConsistent())

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(5))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3)).Add(c, value.NewInteger(9))

	ok, err := th.Dominates(r1, r2)
	require.NoError(t, err)
	require.True(t, ok, "scenario (a) from spec.md §8")

	ok, err = th.Dominates(r2, r1)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestDepthSearchDominanceNonDegenerateWorstInterval covers a worst
// interval that is a range rather than a single point: rule "IF a=1 THEN
// b<2 BETTER b>=5 ()". r1={a:1,b:1} should dominate r2={a:1,b:7} because r2
// lies anywhere inside I-, not only at its left boundary (5).
func TestDepthSearchDominanceNonDegenerateWorstInterval(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.LessThan(value.NewInteger(2)), interval.GreaterThanOrEqual(value.NewInteger(5)), nil)

	th, err := theory.New([]prefrule.CPRule{rule}, theory.AlgDepthSearch)
	require.NoError(t, err)
	require.True(t, th.IsConsistent())

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(1))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(7))

	ok, err := th.Dominates(r1, r2)
	require.NoError(t, err)
	require.True(t, ok, "r2's value (7) lies inside the worst interval b>=5, not only at its boundary")

	ok, err = th.Dominates(r2, r1)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestDepthSearchDominanceUnboundedWorstInterval covers a worst interval
// that is fully unbounded: the preference attribute should be treated as
// matching any value, not dropped from the dominance check entirely.
func TestDepthSearchDominanceUnboundedWorstInterval(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Unbounded(), nil)

	th, err := theory.New([]prefrule.CPRule{rule}, theory.AlgDepthSearch)
	require.NoError(t, err)
	require.True(t, th.IsConsistent())

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(9999))

	ok, err := th.Dominates(r1, r2)
	require.NoError(t, err)
	require.True(t, ok, "r2's value should match the fully unbounded worst interval")
}

func TestGlobalInconsistencyCycle(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	// R1: IF a=1 THEN b=2 BETTER b=3 () -- edge a -> b
	r1Cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	r1 := prefrule.New(r1Cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)

	// R2: IF b=2 THEN a=1 BETTER a=2 () -- edge b -> a, forming a cycle
	r2Cond := formula.New(map[record.Attribute]interval.Interval{b: interval.Equals(value.NewInteger(2))})
	r2 := prefrule.New(r2Cond, a, interval.Equals(value.NewInteger(1)), interval.Equals(value.NewInteger(2)), nil)

	th, err := theory.New([]prefrule.CPRule{r1, r2}, theory.AlgDepthSearch)
	require.NoError(t, err)
	require.False(t, th.IsConsistent())
}

func TestPartitionAlgorithmAgreesWithSearch(t *testing.T) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)

	th, err := theory.New([]prefrule.CPRule{rule}, theory.AlgPartition)
	require.NoError(t, err)
	require.True(t, th.IsConsistent())
	require.NotEmpty(t, th.Comparisons())

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3))

	ok, err := th.Dominates(r1, r2)
	require.NoError(t, err)
	require.True(t, ok)
}
