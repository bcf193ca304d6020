package seqop_test

import (
	"testing"

	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/seqop"
	"github.com/streampref/streampref/sequence"
	"github.com/streampref/streampref/value"
	"github.com/stretchr/testify/require"
)

func TestWindowBounds(t *testing.T) {
	start, end := seqop.WindowBounds(4, 10, 1)
	require.Equal(t, int64(4), start)
	require.Equal(t, int64(13), end)

	start, end = seqop.WindowBounds(4, seqop.Unbounded, 1)
	require.Equal(t, int64(4), start)
	require.Equal(t, seqop.Unbounded, end)
}

func TestSeqAndConseqScenarioD(t *testing.T) {
	// Scenario (d) from spec.md §8: (id=1,t=0),(1,1),(1,3),(1,4) with
	// SEQ[range=10, slide=1]. After tick t=4: CONSEQ yields two sub-sequences
	// of lengths 2 and 2.
	id := record.NewAttribute("id")
	op := seqop.NewSeq([]record.Attribute{id}, 10, 1)

	rec := func() record.Record {
		return record.NewBuffer().Add(id, value.NewInteger(1))
	}

	var seqs []*sequence.Sequence
	var err error
	for _, ts := range []int64{0, 1, 3, 4} {
		seqs, err = op.Run(ts, []record.Record{rec()})
		require.NoError(t, err)
	}

	require.Len(t, seqs, 1)
	sub := seqop.ConseqNaive(seqs[0])
	require.Len(t, sub, 2)
	require.Equal(t, 2, sub[0].Len())
	require.Equal(t, 2, sub[1].Len())
}

// appendPositions appends one position per timestamp in ts to seq. Window
// bounds are irrelevant here (DeleteExpired is never exercised by this
// test), so Start/End are just set equal to the timestamp.
func appendPositions(seq *sequence.Sequence, idAttr record.Attribute, idVal int64, ts ...int64) {
	for _, t := range ts {
		rec := record.NewBuffer().Add(idAttr, value.NewInteger(idVal))
		seq.Append(sequence.Position{Record: rec, Timestamp: t, Start: t, End: t})
	}
}

// requireSameSubsequences asserts that got and want hold the same ordered
// list of sub-sequences (same length, same positions in the same order).
func requireSameSubsequences(t *testing.T, want, got []*sequence.Sequence) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Len(), got[i].Len(), "subsequence %d length", i)
		for j := 0; j < want[i].Len(); j++ {
			wp := want[i].Position(j)
			gp := got[i].Position(j)
			require.Equal(t, wp.Timestamp, gp.Timestamp, "subsequence %d position %d timestamp", i, j)
			eq, err := record.Equal(wp.Record, gp.Record)
			require.NoError(t, err)
			require.True(t, eq, "subsequence %d position %d record", i, j)
		}
	}
}

// TestConseqIncrementalMatchesNaive drives a sequence through inserts and
// deletes across several ticks and checks that ConseqIncremental always
// yields the same sub-sequence list as rebuilding from scratch with
// ConseqNaive, per spec.md §8's "CONSEQ incremental == CONSEQ naive on
// every tick" invariant.
func TestConseqIncrementalMatchesNaive(t *testing.T) {
	id := record.NewAttribute("id")
	seq := sequence.New("s1")
	var cache *seqop.ConseqCache

	step := func(mutate func()) {
		mutate()
		cache = seqop.ConseqIncremental(cache, seq)
		requireSameSubsequences(t, seqop.ConseqNaive(seq), cache.Subsequences())
		seq.Reset()
	}

	// Insert-only: one contiguous run.
	step(func() { appendPositions(seq, id, 1, 0, 1, 2) })
	// Insert-only, still contiguous: run grows to length 5.
	step(func() { appendPositions(seq, id, 1, 3, 4) })
	// Delete from the front, then insert a position that fuses onto the
	// remaining run's tail.
	step(func() {
		seq.DeleteFirstK(2)
		appendPositions(seq, id, 1, 5)
	})
	// Delete the rest of the old run, then insert a new run with a gap:
	// two sub-sequences.
	step(func() {
		seq.DeleteFirstK(3)
		appendPositions(seq, id, 1, 10, 11)
	})
	// Insert a position that fuses onto the new run's tail again.
	step(func() { appendPositions(seq, id, 1, 12) })
}

// TestEndseqIncrementalMatchesNaive mirrors
// TestConseqIncrementalMatchesNaive for ENDSEQ.
func TestEndseqIncrementalMatchesNaive(t *testing.T) {
	id := record.NewAttribute("id")
	seq := sequence.New("s1")
	var cache *seqop.EndseqCache

	step := func(mutate func()) {
		mutate()
		cache = seqop.EndseqIncremental(cache, seq)
		requireSameSubsequences(t, seqop.EndseqNaive(seq), cache.Suffixes())
		seq.Reset()
	}

	step(func() { appendPositions(seq, id, 1, 0, 1, 2) })
	step(func() { appendPositions(seq, id, 1, 3, 4) })
	step(func() {
		seq.DeleteFirstK(2)
		appendPositions(seq, id, 1, 5)
	})
	step(func() {
		seq.DeleteFirstK(3)
		appendPositions(seq, id, 1, 10, 11)
	})
	step(func() { appendPositions(seq, id, 1, 12) })
}

func TestMinMaxSeq(t *testing.T) {
	id := record.NewAttribute("id")
	op := seqop.NewSeq([]record.Attribute{id}, seqop.Unbounded, 1)
	rec := record.NewBuffer().Add(id, value.NewInteger(1))
	out, err := op.Run(0, []record.Record{rec})
	require.NoError(t, err)

	require.Len(t, seqop.MinSeq(out, 1), 1)
	require.Len(t, seqop.MinSeq(out, 2), 0)
	require.Len(t, seqop.MaxSeq(out, 1), 1)
}
