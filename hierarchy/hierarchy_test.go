package hierarchy_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/hierarchy"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/theory"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

// fingerprints renders recs as sorted "a=1,b=2" strings, so cmp.Diff can
// compare the *set* of best records across hierarchy implementations
// without reaching into each Hierarchy's unexported id tables.
func fingerprints(t *testing.T, recs []record.Record) []string {
	t.Helper()
	out := make([]string, len(recs))
	for i, r := range recs {
		attrs := r.Attributes()
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key() < attrs[j].Key() })
		fp, err := record.Fingerprint(r, attrs)
		require.NoError(t, err)
		out[i] = fp
	}
	sort.Strings(out)
	return out
}

func buildTheory(t *testing.T, alg theory.Algorithm) (*theory.CPTheory, record.Attribute, record.Attribute) {
	a := record.NewAttribute("a")
	b := record.NewAttribute("b")
	cond := formula.New(map[record.Attribute]interval.Interval{a: interval.Equals(value.NewInteger(1))})
	rule := prefrule.New(cond, b, interval.Equals(value.NewInteger(2)), interval.Equals(value.NewInteger(3)), nil)
	th, err := theory.New([]prefrule.CPRule{rule}, alg)
	require.NoError(t, err)
	require.True(t, th.IsConsistent())
	return th, a, b
}

func TestAncestorsBest(t *testing.T) {
	th, a, b := buildTheory(t, theory.AlgDepthSearch)
	h := hierarchy.NewAncestors(th.Dominates)

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3))

	require.NoError(t, h.Update(nil, []record.Record{r1, r2}))

	best := h.BestRecords()
	require.Len(t, best, 1)
	eq, err := record.Equal(best[0], r1)
	require.NoError(t, err)
	require.True(t, eq, "r1 (the preferred record) should be the sole best record")
}

func TestGraphBest(t *testing.T) {
	th, a, b := buildTheory(t, theory.AlgDirect)
	h := hierarchy.NewGraph(th.Dominates)

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3))

	require.NoError(t, h.Update(nil, []record.Record{r1, r2}))
	best := h.BestRecords()
	require.Len(t, best, 1)
}

func TestPartitionBest(t *testing.T) {
	th, a, b := buildTheory(t, theory.AlgPartition)
	h := hierarchy.NewPartition(th.Comparisons())

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3))

	require.NoError(t, h.Update(nil, []record.Record{r1, r2}))
	best := h.BestRecords()
	require.Len(t, best, 1)
	eq, err := record.Equal(best[0], r1)
	require.NoError(t, err)
	require.True(t, eq)
}

// TestHierarchyEquivalence checks spec.md §8's "Hierarchy equivalence"
// property: for identical (deletes, inserts) histories, Ancestors,
// Partition and Graph must yield the same *set* of best records.
func TestHierarchyEquivalence(t *testing.T) {
	thSearch, a, b := buildTheory(t, theory.AlgDepthSearch)
	thDirect, _, _ := buildTheory(t, theory.AlgDirect)
	thPartition, _, _ := buildTheory(t, theory.AlgPartition)

	r1 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(2))
	r2 := record.NewBuffer().Add(a, value.NewInteger(1)).Add(b, value.NewInteger(3))
	r3 := record.NewBuffer().Add(a, value.NewInteger(2)).Add(b, value.NewInteger(9))

	ancestors := hierarchy.NewAncestors(thSearch.Dominates)
	graph := hierarchy.NewGraph(thDirect.Dominates)
	partition := hierarchy.NewPartition(thPartition.Comparisons())

	require.NoError(t, ancestors.Update(nil, []record.Record{r1, r2, r3}))
	require.NoError(t, graph.Update(nil, []record.Record{r1, r2, r3}))
	require.NoError(t, partition.Update(nil, []record.Record{r1, r2, r3}))

	want := fingerprints(t, ancestors.BestRecords())
	if diff := cmp.Diff(want, fingerprints(t, graph.BestRecords())); diff != "" {
		t.Errorf("graph best set differs from ancestors best set (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, fingerprints(t, partition.BestRecords())); diff != "" {
		t.Errorf("partition best set differs from ancestors best set (-want +got):\n%s", diff)
	}

	require.NoError(t, ancestors.Update([]record.Record{r1}, nil))
	require.NoError(t, graph.Update([]record.Record{r1}, nil))
	require.NoError(t, partition.Update([]record.Record{r1}, nil))

	want = fingerprints(t, ancestors.BestRecords())
	if diff := cmp.Diff(want, fingerprints(t, graph.BestRecords())); diff != "" {
		t.Errorf("graph best set differs from ancestors best set after delete (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, fingerprints(t, partition.BestRecords())); diff != "" {
		t.Errorf("partition best set differs from ancestors best set after delete (-want +got):\n%s", diff)
	}
}
