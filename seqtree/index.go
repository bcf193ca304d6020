package seqtree

import (
	"github.com/streampref/streampref/hierarchy"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/sequence"
)

// Update applies one tick's worth of sequence changes, mirroring spec.md
// §4.8's update protocol: known sequences are moved or reinserted according
// to their accumulated insert/delete counters, newly-seen sequences are
// inserted from the root, sequences no longer present are removed, and empty
// leaves are pruned upward. seqs is the full currently-live sequence list
// (e.g. a SeqOp's or CONSEQ/ENDSEQ's output); counters are reset as each
// sequence is consumed.
func (t *Tree) Update(seqs []*sequence.Sequence) error {
	live := make(map[string]*sequence.Sequence, len(seqs))
	for _, s := range seqs {
		live[s.ID] = s
	}

	for id := range t.nodeOf {
		if _, ok := live[id]; !ok {
			if err := t.removeSequence(id); err != nil {
				return err
			}
		}
	}

	for _, s := range seqs {
		if _, known := t.nodeOf[s.ID]; !known {
			if err := t.insertFromRoot(s); err != nil {
				return err
			}
			s.Reset()
			continue
		}

		switch {
		case s.Deleted() > 0:
			if err := t.removeSequence(s.ID); err != nil {
				return err
			}
			if s.Len() > 0 {
				if err := t.insertFromRoot(s); err != nil {
					return err
				}
			}
		case s.Inserted() > 0:
			if err := t.moveDown(s); err != nil {
				return err
			}
		}
		s.Reset()
	}

	pruneEmpty(t.root)
	return nil
}

// removeSequence drops a sequence id from the node it currently occupies.
func (t *Tree) removeSequence(id string) error {
	n, ok := t.nodeOf[id]
	if !ok {
		return nil
	}
	delete(n.seqs, id)
	delete(t.nodeOf, id)
	delete(t.lastLen, id)
	return nil
}

// insertFromRoot walks seq's full position list down from the tree root,
// creating any missing edges, and registers seq at the node it reaches.
func (t *Tree) insertFromRoot(seq *sequence.Sequence) error {
	n := t.root
	var prefix []record.Record
	for i := 0; i < seq.Len(); i++ {
		rec := seq.At(i)
		var err error
		n, err = t.descend(n, prefix, rec)
		if err != nil {
			return err
		}
		prefix = append(prefix, rec)
	}
	n.seqs[seq.ID] = seq
	t.nodeOf[seq.ID] = n
	t.lastLen[seq.ID] = seq.Len()
	return nil
}

// moveDown advances seq's registration from its current node down through
// the positions it gained since the last tick, without touching positions
// that were already indexed.
func (t *Tree) moveDown(seq *sequence.Sequence) error {
	cur := t.nodeOf[seq.ID]
	delete(cur.seqs, seq.ID)

	prefix := make([]record.Record, 0, cur.depth)
	for i := 0; i < cur.depth; i++ {
		prefix = append(prefix, seq.At(i))
	}

	n := cur
	for i := cur.depth; i < seq.Len(); i++ {
		rec := seq.At(i)
		var err error
		n, err = t.descend(n, prefix, rec)
		if err != nil {
			return err
		}
		prefix = append(prefix, rec)
	}

	n.seqs[seq.ID] = seq
	t.nodeOf[seq.ID] = n
	t.lastLen[seq.ID] = seq.Len()
	return nil
}

// descend returns the child of n reached by rec, creating it (and its
// hierarchy edge registration) if it doesn't already exist. prefix is the
// path from the root to n, used to synthesize the rule set valid at n's
// depth when (re)building n's hierarchy.
func (t *Tree) descend(n *node, prefix []record.Record, rec record.Record) (*node, error) {
	key, err := positionKey(rec)
	if err != nil {
		return nil, err
	}

	if child, ok := n.children[key]; ok {
		return child, nil
	}

	child := newNode(n.depth + 1)
	n.children[key] = child
	n.childRec[key] = rec
	n.order = append(n.order, key)

	if err := t.registerChild(n, prefix); err != nil {
		return nil, err
	}
	return child, nil
}

// registerChild (re)builds n's hierarchy over its current children after a
// new child was added, and, for the pruning variant, reclassifies every
// child's dominated flag. With at most one child there is nothing to rank
// (SeqTreePruning lazily drops the hierarchy in that case).
func (t *Tree) registerChild(n *node, prefix []record.Record) error {
	if t.pruning && len(n.children) <= 1 {
		n.hierarchy = nil
		for _, key := range n.order {
			n.children[key].dominated = false
		}
		return nil
	}

	comparisons, err := t.comparisonsForPrefix(prefix)
	if err != nil {
		return err
	}
	n.comparisons = comparisons

	h := hierarchy.NewPartition(comparisons)
	recs := make([]record.Record, len(n.order))
	for i, key := range n.order {
		recs[i] = n.childRec[key]
	}
	if err := h.Update(nil, recs); err != nil {
		return err
	}
	n.hierarchy = h

	if t.pruning {
		classifyChildren(n)
	}
	return nil
}

// classifyChildren marks every child of n dominated unless it is part of
// n.hierarchy's current best set (spec.md §4.8 pruning variant).
func classifyChildren(n *node) {
	best := n.hierarchy.BestRecords()
	bestKeys := make(map[string]bool, len(best))
	for _, rec := range best {
		key, err := positionKey(rec)
		if err != nil {
			continue
		}
		bestKeys[key] = true
	}
	for _, key := range n.order {
		n.children[key].dominated = !bestKeys[key]
	}
}

// pruneEmpty removes children that have no live sequences and no
// descendants left, working bottom-up. Returns whether n itself is now
// empty and can be dropped by its own parent.
func pruneEmpty(n *node) bool {
	for _, key := range n.order {
		child := n.children[key]
		if pruneEmpty(child) {
			delete(n.children, key)
			delete(n.childRec, key)
		}
	}
	if len(n.children) != len(n.order) {
		kept := n.order[:0]
		for _, key := range n.order {
			if _, ok := n.children[key]; ok {
				kept = append(kept, key)
			}
		}
		n.order = kept
	}
	return len(n.seqs) == 0 && len(n.children) == 0
}
