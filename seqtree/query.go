package seqtree

import (
	"sort"

	"github.com/streampref/streampref/hierarchy"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/sequence"
)

// nonDominatedChildren returns n's children that survive n's local
// hierarchy (or, for the pruning variant, that aren't flagged dominated),
// in a deterministic order. A node with at most one child has nothing to
// rank, so all of it (if any) is returned.
func (t *Tree) nonDominatedChildren(n *node) []*node {
	if len(n.children) <= 1 {
		out := make([]*node, 0, 1)
		for _, key := range n.order {
			if child, ok := n.children[key]; ok {
				out = append(out, child)
			}
		}
		return out
	}

	if t.pruning {
		var out []*node
		for _, key := range n.order {
			child, ok := n.children[key]
			if ok && !child.dominated {
				out = append(out, child)
			}
		}
		return out
	}

	best := n.hierarchy.BestRecords()
	var out []*node
	for _, rec := range best {
		key, err := positionKey(rec)
		if err != nil {
			continue
		}
		if child, ok := n.children[key]; ok {
			out = append(out, child)
		}
	}
	return out
}

// orderedChildren returns every child of n ranked best-first by n's
// hierarchy's own TopK ordering, used by TopKSequences to descend in
// preference order rather than only the undominated frontier.
func (t *Tree) orderedChildren(n *node) []*node {
	if len(n.children) <= 1 || n.hierarchy == nil {
		out := make([]*node, 0, len(n.order))
		for _, key := range n.order {
			if child, ok := n.children[key]; ok {
				out = append(out, child)
			}
		}
		return out
	}

	ranked := n.hierarchy.TopK(len(n.order))
	out := make([]*node, 0, len(ranked))
	for _, rec := range ranked {
		key, err := positionKey(rec)
		if err != nil {
			continue
		}
		if child, ok := n.children[key]; ok {
			out = append(out, child)
		}
	}
	return out
}

// orderedSeqs renders n's terminating sequences in a stable (id-sorted)
// order, so repeated calls against the same node agree.
func orderedSeqs(seqs map[string]*sequence.Sequence) []*sequence.Sequence {
	ids := make([]string, 0, len(seqs))
	for id := range seqs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*sequence.Sequence, len(ids))
	for i, id := range ids {
		out[i] = seqs[id]
	}
	return out
}

// BestSequences recursively descends the tree, at every node restricting
// itself to the non-dominated children, and collects the sequences
// terminating at every node it reaches. Mirrors
// get_best_sequences_recursive.
func (t *Tree) BestSequences() []*sequence.Sequence {
	var out []*sequence.Sequence
	var walk func(n *node)
	walk = func(n *node) {
		out = append(out, orderedSeqs(n.seqs)...)
		for _, child := range t.nonDominatedChildren(n) {
			walk(child)
		}
	}
	walk(t.root)
	return out
}

// TopKSequences returns up to k sequences in descending preference order.
// It operates on a deep copy of the tree (spec.md §4.8: "the copy must
// deep-copy per-node sequence dictionaries, children, and hierarchies") so
// the live index is untouched, then repeatedly peels the current frontier's
// dominants, emitting their terminating sequences before descending into
// their own children in hierarchy-ranked order.
func (t *Tree) TopKSequences(k int) ([]*sequence.Sequence, error) {
	if k <= 0 {
		return nil, nil
	}

	cp, err := copyNode(t.root)
	if err != nil {
		return nil, err
	}

	var out []*sequence.Sequence
	queue := []*node{cp}
	for len(queue) > 0 && len(out) < k {
		n := queue[0]
		queue = queue[1:]

		for _, seq := range orderedSeqs(n.seqs) {
			if len(out) >= k {
				break
			}
			out = append(out, seq)
		}
		if len(out) >= k {
			break
		}

		queue = append(queue, t.orderedChildren(n)...)
	}
	return out, nil
}

// copyNode deep-copies a subtree: children, per-node sequence maps, and a
// freshly-rebuilt hierarchy (hierarchy.Hierarchy implementations carry no
// exported Clone, so the copy is reconstructed from the node's own
// comparisons and current child records instead of aliasing the original).
func copyNode(n *node) (*node, error) {
	cp := newNode(n.depth)
	cp.comparisons = n.comparisons
	cp.dominated = n.dominated
	cp.order = append([]string{}, n.order...)

	for id, s := range n.seqs {
		cp.seqs[id] = s.Copy()
	}

	recs := make([]record.Record, 0, len(n.order))
	for _, key := range n.order {
		child, ok := n.children[key]
		if !ok {
			continue
		}
		childCopy, err := copyNode(child)
		if err != nil {
			return nil, err
		}
		cp.children[key] = childCopy
		cp.childRec[key] = n.childRec[key]
		recs = append(recs, n.childRec[key])
	}

	if n.hierarchy != nil && len(recs) > 1 {
		h := hierarchy.NewPartition(cp.comparisons)
		if err := h.Update(nil, recs); err != nil {
			return nil, err
		}
		cp.hierarchy = h
	}
	return cp, nil
}
