// Package seqop implements the sequence-producing and sub-sequence
// operators described in spec.md §4.6: SEQ, CONSEQ, ENDSEQ, MINSEQ, MAXSEQ.
// Grounded on original_source/operators/sequence.py and operators/window.py.
package seqop

import (
	"sort"

	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/sequence"
)

// Unbounded is the sentinel range value meaning "never expire."
const Unbounded int64 = -1

// WindowBounds computes (start, end) for a tick t under the given range and
// slide, per spec.md §6: start = floor(t/slide)*slide, end = start+range-1.
// range = Unbounded disables the end bound (callers must treat it as "no
// expiry" rather than call this with range = -1 arithmetically).
func WindowBounds(t, rangeLen, slide int64) (start, end int64) {
	if slide <= 0 {
		slide = 1
	}
	start = (t / slide) * slide
	if rangeLen == Unbounded {
		return start, Unbounded
	}
	return start, start + rangeLen - 1
}

// SeqOp builds and maintains sequences keyed by a set of identifier
// attributes, grounded on operators/sequence.py's SequenceOp.
type SeqOp struct {
	identAttrs []record.Attribute
	rangeLen   int64
	slide      int64

	seqs map[string]*sequence.Sequence
	keys []string // insertion order, for deterministic iteration
}

// NewSeq builds a SEQ operator over identAttrs with the given window range
// and slide.
func NewSeq(identAttrs []record.Attribute, rangeLen, slide int64) *SeqOp {
	return &SeqOp{identAttrs: identAttrs, rangeLen: rangeLen, slide: slide, seqs: make(map[string]*sequence.Sequence)}
}

// Run advances the operator to tick t with the records that arrived this
// tick, returning the list of currently-live sequences. Expired positions
// are dropped first (unless the operator is unbounded), then new positions
// are appended, creating sequences for identifiers seen for the first time.
func (s *SeqOp) Run(t int64, arrived []record.Record) ([]*sequence.Sequence, error) {
	if s.rangeLen != Unbounded {
		for _, key := range s.keys {
			s.seqs[key].DeleteExpired()
		}
	}

	start, end := WindowBounds(t, s.rangeLen, s.slide)

	for _, rec := range arrived {
		key, err := record.Fingerprint(rec, s.identAttrs)
		if err != nil {
			return nil, err
		}
		seq, ok := s.seqs[key]
		if !ok {
			seq = sequence.New(key)
			s.seqs[key] = seq
			s.keys = append(s.keys, key)
		}
		seq.Append(sequence.Position{Record: rec, Timestamp: t, Start: start, End: end})
	}

	if s.rangeLen != Unbounded {
		var kept []string
		for _, key := range s.keys {
			if s.seqs[key].IsEmpty() {
				delete(s.seqs, key)
				continue
			}
			kept = append(kept, key)
		}
		s.keys = kept
	}

	return s.live(), nil
}

func (s *SeqOp) live() []*sequence.Sequence {
	keys := append([]string{}, s.keys...)
	sort.Strings(keys)
	out := make([]*sequence.Sequence, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.seqs[k])
	}
	return out
}
