package seqop

import (
	"github.com/streampref/streampref/sequence"
)

// ConseqNaive partitions seq into maximal runs of consecutive timestamps by
// rescanning its full position list every call. Grounded on
// operators/sequence.py's naive consecutive-sequence extraction.
func ConseqNaive(seq *sequence.Sequence) []*sequence.Sequence {
	positions := seq.Positions()
	if len(positions) == 0 {
		return nil
	}

	var out []*sequence.Sequence
	runStart := 0
	for i := 1; i <= len(positions); i++ {
		if i == len(positions) || positions[i].Timestamp != positions[i-1].Timestamp+1 {
			out = append(out, seq.Subsequence(runStart, i))
			runStart = i
		}
	}
	return out
}

// ConseqCache holds the incremental CONSEQ state for one sequence
// identifier: the current list of consecutive-run sub-sequences.
type ConseqCache struct {
	subs []*sequence.Sequence
}

// ConseqIncremental maintains a ConseqCache across ticks: on a brand-new
// sequence id it computes from scratch; otherwise it consumes seq's
// Inserted()/Deleted() counters, dropping sub-sequences from the front to
// cover deletions (truncating the first surviving run), then appending
// newly-inserted positions, fusing the new tail onto the last run only when
// its first timestamp continues that run. Grounded on operators/sequence.py's
// incremental consecutive-sequence extraction.
func ConseqIncremental(cache *ConseqCache, seq *sequence.Sequence) *ConseqCache {
	if cache == nil {
		cache = &ConseqCache{}
	}

	deleted := seq.Deleted()
	inserted := seq.Inserted()

	if cache.subs == nil {
		cache.subs = ConseqNaive(seq)
		return cache
	}

	remaining := deleted
	for remaining > 0 && len(cache.subs) > 0 {
		run := cache.subs[0]
		if run.Len() <= remaining {
			remaining -= run.Len()
			cache.subs = cache.subs[1:]
			continue
		}
		cache.subs[0] = run.Subsequence(remaining, run.Len())
		remaining = 0
	}

	positions := seq.Positions()
	newStart := len(positions) - inserted
	if newStart < 0 {
		newStart = 0
	}

	for i := newStart; i < len(positions); {
		runEnd := i + 1
		for runEnd < len(positions) && positions[runEnd].Timestamp == positions[runEnd-1].Timestamp+1 {
			runEnd++
		}
		newRun := seq.Subsequence(i, runEnd)

		if len(cache.subs) > 0 {
			last := cache.subs[len(cache.subs)-1]
			if last.Len() > 0 && newRun.Len() > 0 {
				lastPos := last.Position(last.Len() - 1)
				firstNew := newRun.Position(0)
				if firstNew.Timestamp == lastPos.Timestamp+1 {
					fused := last.Copy()
					fused.AppendSequence(newRun)
					cache.subs[len(cache.subs)-1] = fused
					i = runEnd
					continue
				}
			}
		}
		cache.subs = append(cache.subs, newRun)
		i = runEnd
	}

	return cache
}

// Subsequences returns the cached sub-sequence list.
func (c *ConseqCache) Subsequences() []*sequence.Sequence {
	if c == nil {
		return nil
	}
	return c.subs
}
