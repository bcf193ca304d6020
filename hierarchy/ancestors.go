package hierarchy

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/streampref/streampref/record"
)

// Ancestors is the HierarchyAncestors variant (inc-ancestors): every record
// tracks the set of ids that dominate it and a dominance level, computed
// lazily by a pending-queue fixpoint. Grounded on spec.md §4.5.
type Ancestors struct {
	dominates Dominates
	ids       *idTable
	ancestors map[int][]int
	level     map[int]int
	best      map[int]bool
	pending   []int
}

// NewAncestors builds an empty HierarchyAncestors using dominates to decide
// edges between records.
func NewAncestors(dominates Dominates) *Ancestors {
	return &Ancestors{
		dominates: dominates,
		ids:       newIDTable(),
		ancestors: make(map[int][]int),
		level:     make(map[int]int),
		best:      make(map[int]bool),
	}
}

// Update applies deleted records, then inserted records, to the hierarchy.
func (a *Ancestors) Update(deleted, inserted []record.Record) error {
	for _, rec := range deleted {
		if err := a.delete(rec); err != nil {
			return err
		}
	}
	for _, rec := range inserted {
		if err := a.add(rec); err != nil {
			return err
		}
	}
	return a.updateLevels()
}

func (a *Ancestors) add(rec record.Record) error {
	id, isNew, err := a.ids.addRef(rec)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}

	a.level[id] = -1
	a.ancestors[id] = nil
	a.pending = append(a.pending, id)

	for existing := range a.ids.recordOf {
		if existing == id {
			continue
		}
		existingRec := a.ids.recordOf[existing]
		dominatesNew, err := a.dominates(existingRec, rec)
		if err != nil {
			return err
		}
		if dominatesNew {
			a.ancestors[id] = append(a.ancestors[id], existing)
		}
		newDominatesExisting, err := a.dominates(rec, existingRec)
		if err != nil {
			return err
		}
		if newDominatesExisting {
			a.ancestors[existing] = append(a.ancestors[existing], id)
			a.level[existing] = -1
			delete(a.best, existing)
			a.pending = append(a.pending, existing)
		}
	}
	return nil
}

func (a *Ancestors) delete(rec record.Record) error {
	id, removed, err := a.ids.release(rec)
	if err != nil || !removed {
		return err
	}
	removedLevel := a.level[id]
	delete(a.level, id)
	delete(a.ancestors, id)
	delete(a.best, id)

	for other, ancs := range a.ancestors {
		filtered := ancs[:0]
		changed := false
		for _, anc := range ancs {
			if anc == id {
				changed = true
				continue
			}
			filtered = append(filtered, anc)
		}
		if changed {
			a.ancestors[other] = filtered
			if a.level[other] > removedLevel {
				a.level[other] = -1
				delete(a.best, other)
				a.pending = append(a.pending, other)
			}
		}
	}
	return nil
}

func (a *Ancestors) updateLevels() error {
	for len(a.pending) > 0 {
		id := a.pending[0]
		a.pending = a.pending[1:]
		if _, ok := a.ids.recordOf[id]; !ok {
			continue
		}
		if len(a.ancestors[id]) == 0 {
			a.level[id] = 0
			a.best[id] = true
			continue
		}
		maxLevel := -1
		ready := true
		for _, anc := range a.ancestors[id] {
			if a.level[anc] < 0 {
				ready = false
				break
			}
			if a.level[anc] > maxLevel {
				maxLevel = a.level[anc]
			}
		}
		if !ready {
			a.pending = append(a.pending, id)
			continue
		}
		a.level[id] = maxLevel + 1
		delete(a.best, id)
	}
	return nil
}

// BestRecords returns the level-0 records, expanded by refcount.
func (a *Ancestors) BestRecords() []record.Record {
	return a.ids.expand(maps.Keys(a.best))
}

// TopK returns up to k records ordered by ascending level.
func (a *Ancestors) TopK(k int) []record.Record {
	if k <= 0 {
		return nil
	}
	ids := maps.Keys(a.ids.recordOf)
	slices.SortFunc(ids, func(i, j int) int {
		if a.level[i] != a.level[j] {
			return a.level[i] - a.level[j]
		}
		return i - j
	})

	var out []record.Record
	for _, id := range ids {
		rec := a.ids.recordOf[id]
		for i := 0; i < a.ids.refcount[id] && len(out) < k; i++ {
			out = append(out, rec)
		}
		if len(out) >= k {
			break
		}
	}
	return out
}
