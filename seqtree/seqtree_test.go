package seqtree_test

import (
	"testing"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/seqtree"
	"github.com/streampref/streampref/sequence"
	"github.com/streampref/streampref/theory"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

func firstTheory(t *testing.T) *theory.TCPTheory {
	x := record.NewAttribute("x")
	cp := prefrule.New(formula.New(nil), x, interval.Equals(value.NewInteger(1)), interval.Equals(value.NewInteger(2)), nil)
	rule := prefrule.NewTemporal(cp, true, formula.New(nil), formula.New(nil), formula.New(nil))
	th, err := theory.NewTemporal([]prefrule.TCPRule{rule})
	require.NoError(t, err)
	require.True(t, th.IsConsistent())
	return th
}

func buildSeq(t *testing.T, id string, xs []int64) *sequence.Sequence {
	x := record.NewAttribute("x")
	s := sequence.New(id)
	for i, v := range xs {
		s.Append(sequence.Position{
			Record:    record.NewBuffer().Add(x, value.NewInteger(v)),
			Timestamp: int64(i),
			Start:     0,
			End:       seqopUnbounded,
		})
	}
	return s
}

const seqopUnbounded = 1 << 30

func TestSeqTreeFirstRulePrefersS1(t *testing.T) {
	th := firstTheory(t)
	tree := seqtree.New(th, false)

	s1 := buildSeq(t, "s1", []int64{1, 2})
	s2 := buildSeq(t, "s2", []int64{2, 1})

	require.NoError(t, tree.Update([]*sequence.Sequence{s1, s2}))

	best := tree.BestSequences()
	require.Len(t, best, 1)
	require.Equal(t, "s1", best[0].ID)
}

func TestSeqTreeTopKCoversBoth(t *testing.T) {
	th := firstTheory(t)
	tree := seqtree.New(th, false)

	s1 := buildSeq(t, "s1", []int64{1, 2})
	s2 := buildSeq(t, "s2", []int64{2, 1})

	require.NoError(t, tree.Update([]*sequence.Sequence{s1, s2}))

	top, err := tree.TopKSequences(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
}

func TestSeqTreePruningAgreesWithPlain(t *testing.T) {
	th := firstTheory(t)
	plain := seqtree.New(th, false)
	pruned := seqtree.New(th, true)

	s1 := buildSeq(t, "s1", []int64{1, 2})
	s2 := buildSeq(t, "s2", []int64{2, 1})

	require.NoError(t, plain.Update([]*sequence.Sequence{s1, s2}))
	require.NoError(t, pruned.Update([]*sequence.Sequence{s1.Copy(), s2.Copy()}))

	plainBest := plain.BestSequences()
	prunedBest := pruned.BestSequences()
	require.Len(t, plainBest, 1)
	require.Len(t, prunedBest, 1)
	require.Equal(t, plainBest[0].ID, prunedBest[0].ID)
}
