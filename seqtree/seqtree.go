// Package seqtree implements the SeqTree / SeqTreePruning prefix-tree index
// described in spec.md §4.8: a trie over sequence positions where every
// internal node owns a preference hierarchy ranking its immediate children,
// built from the subset of a TCPTheory's rules that are temporally valid at
// that node's depth. Grounded on
// original_source/operators/seqtree.py and seqtreeindex.py, generalized from
// their DB-backed position storage to the in-memory sequence.Sequence model.
package seqtree

import (
	"sort"
	"strings"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/hierarchy"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/sequence"
	"github.com/streampref/streampref/theory"
)

// node is one prefix-tree position: the path from the tree root to a node at
// depth d spells the first d positions shared by every sequence indexed
// under it.
type node struct {
	depth int

	children map[string]*node
	childRec map[string]record.Record // child key -> the position record that leads to it
	order    []string                 // child keys in first-insertion order, for deterministic copies

	seqs map[string]*sequence.Sequence // sequence ids currently terminating exactly at this node

	comparisons []formula.Comparison
	hierarchy   hierarchy.Hierarchy
	dominated   bool // pruning variant only: classified as dominated by the parent's hierarchy
}

func newNode(depth int) *node {
	return &node{
		depth:    depth,
		children: make(map[string]*node),
		childRec: make(map[string]record.Record),
		seqs:     make(map[string]*sequence.Sequence),
	}
}

// Tree is the SeqTree (pruning=false) or SeqTreePruning (pruning=true) index
// over the sequences currently live in one TemporalPreferenceOp.
type Tree struct {
	tcp     *theory.TCPTheory
	pruning bool

	root    *node
	nodeOf  map[string]*node // sequence id -> node its tail currently occupies
	lastLen map[string]int   // sequence id -> length observed at last Update

	intern map[string]*internedTheory
}

type internedTheory struct {
	comparisons []formula.Comparison
}

// New builds an empty tree driven by tcp's rules. pruning selects the
// SeqTreePruning variant (cheaper classification, lazily-dropped
// hierarchies) over the plain SeqTree.
func New(tcp *theory.TCPTheory, pruning bool) *Tree {
	return &Tree{
		tcp:     tcp,
		pruning: pruning,
		root:    newNode(0),
		nodeOf:  make(map[string]*node),
		lastLen: make(map[string]int),
		intern:  make(map[string]*internedTheory),
	}
}

// positionKey renders the (attribute, value) identity of a position record,
// used both as a trie edge label and as the hierarchy's candidate key.
func positionKey(rec record.Record) (string, error) {
	attrs := append([]record.Attribute{}, rec.Attributes()...)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key() < attrs[j].Key() })
	return record.Fingerprint(rec, attrs)
}

// prefixSeq adapts a plain record slice to prefrule.Sequence, representing
// the prefix positions followed by one blank "target" slot (spec.md §4.8:
// "a synthetic sequence whose positions are the prefix followed by a blank
// target slot"). Only past-predicate evaluation ever touches index < len,
// so the blank slot itself is never read.
type prefixSeq struct {
	recs []record.Record
}

func (s prefixSeq) Len() int                 { return len(s.recs) + 1 }
func (s prefixSeq) At(pos int) record.Record { return s.recs[pos] }

// NodeCount returns the number of nodes currently in the tree (root
// included).
func (t *Tree) NodeCount() int {
	var count int
	var walk func(n *node)
	walk = func(n *node) {
		count++
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
	return count
}

// rulesForPrefix returns the subset of tcp's rules whose temporal condition
// (FIRST / PREVIOUS / SOME PREVIOUS / ALL PREVIOUS) is satisfied by prefix,
// mirroring get_rules_for_sequence.
func rulesForPrefix(tcp *theory.TCPTheory, prefix []record.Record) ([]prefrule.TCPRule, error) {
	seq := prefixSeq{recs: prefix}
	var out []prefrule.TCPRule
	for _, r := range tcp.Rules() {
		ok, err := r.IsTemporalValidByPosition(seq, len(prefix))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// internKey renders a stable cache key for a rule set, so nodes sharing the
// same temporally-valid rule set (common across sibling prefixes) reuse one
// synthesized comparison set instead of rebuilding it per node.
func internKey(rules []prefrule.TCPRule) string {
	rendered := make([]string, len(rules))
	for i, r := range rules {
		rendered[i] = r.String()
	}
	sort.Strings(rendered)
	return strings.Join(rendered, "\n")
}

// comparisonsForPrefix returns the (possibly cached) essential comparison
// set ranking candidate continuations of prefix, built from the rules
// temporally valid at that depth.
func (t *Tree) comparisonsForPrefix(prefix []record.Record) ([]formula.Comparison, error) {
	rules, err := rulesForPrefix(t.tcp, prefix)
	if err != nil {
		return nil, err
	}
	key := internKey(rules)
	if cached, ok := t.intern[key]; ok {
		return cached.comparisons, nil
	}
	cpRules := make([]prefrule.CPRule, len(rules))
	for i, r := range rules {
		cpRules[i] = r.CPRule
	}
	cp, err := theory.NewSkipConsistencyPartition(cpRules)
	if err != nil {
		return nil, err
	}
	t.intern[key] = &internedTheory{comparisons: cp.Comparisons()}
	return cp.Comparisons(), nil
}
