// Package hierarchy implements the three pluggable incremental record
// hierarchies described in spec.md §4.5 — Ancestors, Partition, and Graph —
// each answering "what are the current best records" and "what's the
// current top-k" without recomputing dominance from scratch on every tick.
// Grounded on the teacher's incremental-index style (internal/stream
// operators that carry running state across Iterate calls) generalized to
// the CPTheory dominance relation instead of a single comparison key.
package hierarchy

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/streampref/streampref/record"
)

// Dominates reports whether r1 dominates r2 under whatever theory or rule
// set a Hierarchy was built against. theory.CPTheory.Dominates and
// prefrule.CPRule.RecordDominates both satisfy this shape.
type Dominates func(r1, r2 record.Record) (bool, error)

// idTable assigns monotone integer ids to distinct records (by value
// equality) and tracks their reference counts, shared by every hierarchy
// implementation. Grounded on spec.md §2's "record-id (a monotone integer
// assigned on first add, reused on duplicates via refcount)".
type idTable struct {
	nextID   int
	recordOf map[int]record.Record
	refcount map[int]int
	idOf     []int // never populated; iteration order comes from sorting ids
}

func newIDTable() *idTable {
	return &idTable{recordOf: make(map[int]record.Record), refcount: make(map[int]int)}
}

// find returns the id bound to rec, if any.
func (t *idTable) find(rec record.Record) (int, bool, error) {
	for id, r := range t.recordOf {
		eq, err := record.Equal(r, rec)
		if err != nil {
			return 0, false, err
		}
		if eq {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// addRef either bumps an existing record's refcount or allocates a new id,
// returning (id, isNew).
func (t *idTable) addRef(rec record.Record) (int, bool, error) {
	id, ok, err := t.find(rec)
	if err != nil {
		return 0, false, err
	}
	if ok {
		t.refcount[id]++
		return id, false, nil
	}
	id = t.nextID
	t.nextID++
	t.recordOf[id] = rec
	t.refcount[id] = 1
	return id, true, nil
}

// release decrements rec's refcount, returning (id, justRemoved).
func (t *idTable) release(rec record.Record) (int, bool, error) {
	id, ok, err := t.find(rec)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	t.refcount[id]--
	if t.refcount[id] <= 0 {
		delete(t.recordOf, id)
		delete(t.refcount, id)
		return id, true, nil
	}
	return id, false, nil
}

func (t *idTable) expand(ids []int) []record.Record {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	var out []record.Record
	for _, id := range ids {
		rec, ok := t.recordOf[id]
		if !ok {
			continue
		}
		for i := 0; i < t.refcount[id]; i++ {
			out = append(out, rec)
		}
	}
	return out
}

// Hierarchy is the common interface all three variants implement.
type Hierarchy interface {
	// Update applies a tick's deletions (first) and insertions (second).
	Update(deleted, inserted []record.Record) error
	// BestRecords returns the current best set, expanded by refcount.
	BestRecords() []record.Record
	// TopK returns at most k records from the current best ordering.
	TopK(k int) []record.Record
}
