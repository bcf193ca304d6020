package prefop_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/prefop"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/theory"
	"github.com/streampref/streampref/value"
)

// buildTheory constructs the spec.md §8 scenario (a) rule: IF a=1 THEN b=2
// BETTER b=3 (c).
func buildTheory(t *testing.T, alg theory.Algorithm) *theory.CPTheory {
	t.Helper()
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")

	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), []record.Attribute{c})

	th, err := theory.New([]prefrule.CPRule{rule}, alg)
	require.NoError(t, err)
	require.True(t, th.IsConsistent())
	return th
}

func scenarioARecords() (r1, r2 record.Record) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")
	r1 = record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(5))
	r2 = record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3)).Add(c, value.NewInteger(9))
	return r1, r2
}

func TestPreferenceOpScenarioA_AllAlgorithms(t *testing.T) {
	r1, r2 := scenarioARecords()

	algos := []struct {
		name   string
		alg    prefop.Algorithm
		thAlg  theory.Algorithm
	}{
		{"depth-search", prefop.AlgDepthSearch, theory.AlgDepthSearch},
		{"partition", prefop.AlgPartition, theory.AlgPartition},
		{"inc-ancestors", prefop.AlgIncAncestors, theory.AlgDepthSearch},
		{"inc-partition", prefop.AlgIncPartition, theory.AlgPartition},
		{"inc-graph", prefop.AlgIncGraph, theory.AlgDepthSearch},
		{"inc-graph-no-transitive", prefop.AlgIncGraphNoTransitive, theory.AlgDirect},
	}

	for _, tc := range algos {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			th := buildTheory(t, tc.thAlg)
			op, err := prefop.New(tc.alg, th)
			require.NoError(t, err)

			current := []record.Record{r1, r2}
			best, err := op.Run(0, current, nil, current, -1)
			require.NoError(t, err)
			require.Len(t, best, 1)
			eq, err := record.Equal(best[0], r1)
			require.NoError(t, err)
			require.True(t, eq, "first record should dominate and be the sole best record")
		})
	}
}

func TestPreferenceOpTopZeroEmitsEmpty(t *testing.T) {
	th := buildTheory(t, theory.AlgDepthSearch)
	op, err := prefop.New(prefop.AlgDepthSearch, th)
	require.NoError(t, err)

	r1, r2 := scenarioARecords()
	out, err := op.Run(0, []record.Record{r1, r2}, nil, []record.Record{r1, r2}, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestPreferenceOpUnsupportedAlgorithm(t *testing.T) {
	th := buildTheory(t, theory.AlgDepthSearch)
	_, err := prefop.New(prefop.Algorithm(99), th)
	require.Error(t, err)
}

func TestPreferenceOpTopKCapsAtK(t *testing.T) {
	th := buildTheory(t, theory.AlgDepthSearch)
	op, err := prefop.New(prefop.AlgDepthSearch, th)
	require.NoError(t, err)

	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	c := record.NewAttribute("c")
	incomparable := func(cv int64) record.Record {
		return record.NewBuffer().Add(a, value.NewInteger(2)).Add(b, value.NewInteger(2)).Add(c, value.NewInteger(cv))
	}
	current := []record.Record{incomparable(1), incomparable(2), incomparable(3)}
	top, err := op.Run(0, current, nil, current, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
}
