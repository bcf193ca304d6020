// Package sequence implements the identified, ordered sequence of positions
// described in spec.md §3: a Sequence groups records sharing an identifier,
// each position carrying its original timestamp and a validity window.
// Grounded on original_source/control/sequence.py, generalized from its
// DB-connected record fetches to the in-memory record.Record model used
// throughout this module.
package sequence

import (
	"github.com/streampref/streampref/record"
)

// Position is one element of a Sequence: a record plus the timestamp it
// arrived at and the validity window it must fall within to stay live.
type Position struct {
	Record    record.Record
	Timestamp int64
	Start     int64
	End       int64
}

// Expired reports whether p's timestamp falls outside its validity window
// at the given current timestamp's reference frame. The window (Start, End)
// is computed once at insertion (see seqop.WindowBounds) and compared
// against the position's own Timestamp, mirroring Sequence.delete_expired.
func (p Position) Expired() bool {
	return p.Timestamp < p.Start || p.Timestamp > p.End
}

// Sequence is an ordered, identified list of positions. At satisfies
// prefrule.Sequence, letting CPRule/TCPRule temporal predicates evaluate
// directly against it.
type Sequence struct {
	ID        string
	positions []Position

	inserted int
	deleted  int
}

// New builds an empty sequence for the given identifier.
func New(id string) *Sequence {
	return &Sequence{ID: id}
}

// Len returns the number of live positions.
func (s *Sequence) Len() int { return len(s.positions) }

// At returns the record at position pos. Satisfies prefrule.Sequence.
func (s *Sequence) At(pos int) record.Record { return s.positions[pos].Record }

// Position returns the full position value at pos.
func (s *Sequence) Position(pos int) Position { return s.positions[pos] }

// Positions returns the live position list.
func (s *Sequence) Positions() []Position { return s.positions }

// Append adds a position to the end of the sequence and increments the
// insertion counter.
func (s *Sequence) Append(p Position) {
	s.positions = append(s.positions, p)
	s.inserted++
}

// AppendSequence appends every position of other to s, incrementing the
// insertion counter by other's length. Mirrors Sequence.append_sequence.
func (s *Sequence) AppendSequence(other *Sequence) {
	for _, p := range other.positions {
		s.Append(p)
	}
}

// DeleteFirstK removes the first k positions (no-op if k <= 0), incrementing
// the deletion counter.
func (s *Sequence) DeleteFirstK(k int) {
	if k <= 0 {
		return
	}
	if k > len(s.positions) {
		k = len(s.positions)
	}
	s.positions = s.positions[k:]
	s.deleted += k
}

// DeleteExpired removes every expired position from the front of the
// sequence (validity windows only ever expire in timestamp order, so a
// single prefix scan suffices), incrementing the deletion counter.
func (s *Sequence) DeleteExpired() {
	i := 0
	for i < len(s.positions) && s.positions[i].Expired() {
		i++
	}
	s.deleted += i
	s.positions = s.positions[i:]
}

// Copy returns an independent deep copy of s, including its counters.
func (s *Sequence) Copy() *Sequence {
	cp := &Sequence{ID: s.ID, inserted: s.inserted, deleted: s.deleted}
	cp.positions = append([]Position{}, s.positions...)
	return cp
}

// Subsequence returns a new, uncounted Sequence covering positions
// [start, end) of s.
func (s *Sequence) Subsequence(start, end int) *Sequence {
	if start < 0 {
		start = 0
	}
	if end > len(s.positions) {
		end = len(s.positions)
	}
	cp := &Sequence{ID: s.ID}
	if start < end {
		cp.positions = append([]Position{}, s.positions[start:end]...)
	}
	return cp
}

// Inserted returns the insertion counter accumulated since the last Reset.
func (s *Sequence) Inserted() int { return s.inserted }

// Deleted returns the deletion counter accumulated since the last Reset.
func (s *Sequence) Deleted() int { return s.deleted }

// Reset zeroes the insertion/deletion counters, called once consumed by an
// incremental sub-sequence operator.
func (s *Sequence) Reset() {
	s.inserted = 0
	s.deleted = 0
}

// IsEmpty reports whether the sequence has no live positions.
func (s *Sequence) IsEmpty() bool { return len(s.positions) == 0 }

// FirstDifferentPosition returns the index of the first position where s
// and other disagree on their record, or -1 if one is a prefix of the
// other (or they are identical).
func (s *Sequence) FirstDifferentPosition(other *Sequence) (int, error) {
	n := s.Len()
	if other.Len() < n {
		n = other.Len()
	}
	for i := 0; i < n; i++ {
		eq, err := record.Equal(s.At(i), other.At(i))
		if err != nil {
			return -1, err
		}
		if !eq {
			return i, nil
		}
	}
	return -1, nil
}
