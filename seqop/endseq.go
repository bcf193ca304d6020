package seqop

import (
	"sort"

	"github.com/streampref/streampref/sequence"
)

// EndseqNaive returns every suffix of seq, ordered by decreasing length,
// by rebuilding the full suffix list every call.
func EndseqNaive(seq *sequence.Sequence) []*sequence.Sequence {
	n := seq.Len()
	out := make([]*sequence.Sequence, 0, n)
	for start := 0; start < n; start++ {
		out = append(out, seq.Subsequence(start, n))
	}
	sortByDecreasingLength(out)
	return out
}

// EndseqCache holds the incremental ENDSEQ state for one sequence identifier.
type EndseqCache struct {
	suffixes []*sequence.Sequence
}

// EndseqIncremental maintains an EndseqCache across ticks: inserted
// positions are appended to every existing suffix and new suffixes are
// added covering the inserted tail; deleted positions drop suffixes from
// the front whose length exceeds len(seq) - inserted (the ones that no
// longer correspond to a still-live starting position).
func EndseqIncremental(cache *EndseqCache, seq *sequence.Sequence) *EndseqCache {
	if cache == nil {
		cache = &EndseqCache{}
	}
	if cache.suffixes == nil {
		cache.suffixes = EndseqNaive(seq)
		return cache
	}

	inserted := seq.Inserted()
	threshold := seq.Len() - inserted

	var kept []*sequence.Sequence
	for _, suf := range cache.suffixes {
		if suf.Len() <= threshold {
			kept = append(kept, suf)
		}
	}

	positions := seq.Positions()
	newStart := len(positions) - inserted
	if newStart < 0 {
		newStart = 0
	}

	for i := range kept {
		kept[i].AppendSequence(sequenceFromPositions(seq, newStart, len(positions)))
	}

	for start := newStart; start < len(positions); start++ {
		kept = append(kept, seq.Subsequence(start, len(positions)))
	}

	sortByDecreasingLength(kept)
	cache.suffixes = kept
	return cache
}

func sequenceFromPositions(seq *sequence.Sequence, start, end int) *sequence.Sequence {
	return seq.Subsequence(start, end)
}

func sortByDecreasingLength(seqs []*sequence.Sequence) {
	sort.SliceStable(seqs, func(i, j int) bool { return seqs[i].Len() > seqs[j].Len() })
}

// Suffixes returns the cached suffix list.
func (c *EndseqCache) Suffixes() []*sequence.Sequence {
	if c == nil {
		return nil
	}
	return c.suffixes
}

// MinSeq filters seqs to those with length >= n.
func MinSeq(seqs []*sequence.Sequence, n int) []*sequence.Sequence {
	var out []*sequence.Sequence
	for _, s := range seqs {
		if s.Len() >= n {
			out = append(out, s)
		}
	}
	return out
}

// MaxSeq filters seqs to those with length <= n.
func MaxSeq(seqs []*sequence.Sequence, n int) []*sequence.Sequence {
	var out []*sequence.Sequence
	for _, s := range seqs {
		if s.Len() <= n {
			out = append(out, s)
		}
	}
	return out
}
