package hierarchy

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/streampref/streampref/record"
)

// Graph is the HierarchyGraph variant (inc-graph / inc-graph-no-transitive):
// records are nodes in an explicit dominance DAG; the best set is exactly
// the set of roots (no incoming edges). Grounded on spec.md §4.5.
type Graph struct {
	dominates   Dominates
	ids         *idTable
	successors  map[int][]int
	ancestorsOf map[int][]int
	best        map[int]bool
}

// NewGraph builds an empty HierarchyGraph using dominates to decide edges.
func NewGraph(dominates Dominates) *Graph {
	return &Graph{
		dominates:   dominates,
		ids:         newIDTable(),
		successors:  make(map[int][]int),
		ancestorsOf: make(map[int][]int),
		best:        make(map[int]bool),
	}
}

// Update applies deleted records, then inserted records, to the hierarchy.
func (g *Graph) Update(deleted, inserted []record.Record) error {
	for _, rec := range deleted {
		if err := g.delete(rec); err != nil {
			return err
		}
	}
	for _, rec := range inserted {
		if err := g.add(rec); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) add(rec record.Record) error {
	id, isNew, err := g.ids.addRef(rec)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}

	g.successors[id] = nil
	g.ancestorsOf[id] = nil
	hasAncestor := false

	for existing := range g.ids.recordOf {
		if existing == id {
			continue
		}
		existingRec := g.ids.recordOf[existing]

		existingDominatesNew, err := g.dominates(existingRec, rec)
		if err != nil {
			return err
		}
		if existingDominatesNew {
			g.successors[existing] = append(g.successors[existing], id)
			g.ancestorsOf[id] = append(g.ancestorsOf[id], existing)
			hasAncestor = true
		}

		newDominatesExisting, err := g.dominates(rec, existingRec)
		if err != nil {
			return err
		}
		if newDominatesExisting {
			g.successors[id] = append(g.successors[id], existing)
			g.ancestorsOf[existing] = append(g.ancestorsOf[existing], id)
			delete(g.best, existing)
		}
	}

	if !hasAncestor {
		g.best[id] = true
	}
	return nil
}

func (g *Graph) delete(rec record.Record) error {
	id, removed, err := g.ids.release(rec)
	if err != nil || !removed {
		return err
	}
	successors := g.successors[id]
	delete(g.successors, id)
	delete(g.ancestorsOf, id)
	delete(g.best, id)

	for _, s := range successors {
		ancs := g.ancestorsOf[s][:0]
		for _, a := range g.ancestorsOf[s] {
			if a != id {
				ancs = append(ancs, a)
			}
		}
		g.ancestorsOf[s] = ancs
		if len(ancs) == 0 {
			if _, alive := g.ids.recordOf[s]; alive {
				g.best[s] = true
			}
		}
	}
	return nil
}

// BestRecords returns the roots of the dominance DAG, expanded by refcount.
func (g *Graph) BestRecords() []record.Record {
	return g.ids.expand(maps.Keys(g.best))
}

// TopK performs a BFS from the best set, emitting records and "deleting"
// their outgoing edges as their successors lose their last ancestor,
// capping the output at k.
func (g *Graph) TopK(k int) []record.Record {
	if k <= 0 {
		return nil
	}
	remainingAncestors := make(map[int]int, len(g.ancestorsOf))
	for id, ancs := range g.ancestorsOf {
		remainingAncestors[id] = len(ancs)
	}

	queue := maps.Keys(g.best)
	slices.Sort(queue)

	var out []record.Record
	visited := make(map[int]bool)
	for len(queue) > 0 && len(out) < k {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		rec := g.ids.recordOf[id]
		for i := 0; i < g.ids.refcount[id] && len(out) < k; i++ {
			out = append(out, rec)
		}

		for _, s := range g.successors[id] {
			remainingAncestors[s]--
			if remainingAncestors[s] <= 0 && !visited[s] {
				queue = append(queue, s)
			}
		}
	}
	return out
}
