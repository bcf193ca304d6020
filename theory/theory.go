// Package theory implements CPTheory and TCPTheory: a consistency-checked
// set of conditional preference rules and the dominance algorithms defined
// over it, grounded on original_source/preference/theory.py.
package theory

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/prefgraph"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
)

// Algorithm selects the dominance test strategy, mirroring the TUP_ALG_*
// constants of control/config.py.
type Algorithm int

const (
	// AlgDepthSearch tests dominance by recursively rewriting record1 with
	// every applicable rule until record2 is reached or the search exhausts.
	AlgDepthSearch Algorithm = iota
	// AlgPartition precomputes the essential comparison set and tests
	// dominance by membership.
	AlgPartition
	// AlgDirect tests dominance by a single rule application, with no
	// transitive closure (TUP_ALG_INC_GRAPH_NO_TRANSITIVE).
	AlgDirect
)

// CPTheory is a consistency-checked conditional preference theory.
type CPTheory struct {
	rules       []prefrule.CPRule
	alg         Algorithm
	consistent  bool
	formulas    []formula.Formula
	comparisons []formula.Comparison
}

// New builds a CPTheory: rules are split to a fixpoint of pairwise-disjoint
// intervals, then global and local consistency are checked. When alg is
// AlgPartition the essential comparison set is also synthesized.
func New(rules []prefrule.CPRule, alg Algorithm) (*CPTheory, error) {
	t := &CPTheory{alg: alg}
	return t.init(rules, true)
}

// NewSkipConsistency builds a CPTheory without running consistency checks,
// used internally by dominance-by-search for the per-rule sub-theories it
// spawns (skip_consistency=True in the original source).
func NewSkipConsistency(rules []prefrule.CPRule, alg Algorithm) *CPTheory {
	t := &CPTheory{alg: alg}
	t.rules = rules
	t.consistent = true
	return t
}

// NewSkipConsistencyPartition builds an AlgPartition CPTheory without
// running any consistency check, synthesizing the essential comparison set
// directly from rules already known to be consistent. Used by seqtree to
// intern a per-depth CPTheory (spec.md §4.8: "CPTheory instances are
// interned ... skip_consistency on intern — consistency already guaranteed
// globally").
func NewSkipConsistencyPartition(rules []prefrule.CPRule) (*CPTheory, error) {
	t := &CPTheory{alg: AlgPartition, rules: rules, consistent: true}
	if err := t.buildComparisons(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *CPTheory) init(rules []prefrule.CPRule, checkConsistency bool) (*CPTheory, error) {
	t.rules = rules
	if !checkConsistency {
		t.consistent = true
		return t, nil
	}

	if !checkRulesConsistency(rules) {
		t.consistent = false
		return t, nil
	}

	split, err := splitRulesToFixpoint(rules)
	if err != nil {
		return nil, err
	}
	t.rules = split

	if !t.isGloballyConsistent() {
		t.consistent = false
		return t, nil
	}
	ok, err := t.isLocallyConsistent()
	if err != nil {
		return nil, err
	}
	if !ok {
		t.consistent = false
		return t, nil
	}
	t.consistent = true

	if t.alg == AlgPartition && t.consistent {
		if err := t.buildComparisons(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the number of rules in the theory.
func (t *CPTheory) Len() int { return len(t.rules) }

// Rules returns the theory's (post-split) rule list.
func (t *CPTheory) Rules() []prefrule.CPRule { return t.rules }

// IsConsistent reports whether the theory passed its consistency checks.
func (t *CPTheory) IsConsistent() bool { return t.consistent }

// Comparisons returns the synthesized essential comparison set (only
// populated for AlgPartition).
func (t *CPTheory) Comparisons() []formula.Comparison { return t.comparisons }

func checkRulesConsistency(rules []prefrule.CPRule) bool {
	for _, r := range rules {
		if !r.IsConsistent() {
			return false
		}
	}
	return true
}

// splitRulesToFixpoint repeatedly splits any rule pair with overlapping
// intervals until no more splits apply, mirroring _split_rules.
func splitRulesToFixpoint(rules []prefrule.CPRule) ([]prefrule.CPRule, error) {
	list := append([]prefrule.CPRule{}, rules...)
	for {
		changed := false
		for i, r := range list {
			var parts []prefrule.CPRule
			for _, other := range list {
				p, err := r.Split(other)
				if err != nil {
					return nil, err
				}
				if len(p) > 0 {
					parts = p
					break
				}
			}
			if len(parts) > 0 {
				list = append(append(append([]prefrule.CPRule{}, list[:i]...), list[i+1:]...), parts...)
				changed = true
				break
			}
		}
		if !changed {
			return list, nil
		}
	}
}

// isGloballyConsistent builds the graph (cond attrs) -> (pref attr) ->
// (indifferent attrs) over every rule and checks it is acyclic.
func (t *CPTheory) isGloballyConsistent() bool {
	g := prefgraph.New()
	for _, r := range t.rules {
		for _, a := range r.Condition.Attributes() {
			g.AddEdge(a.Key(), r.PrefAttr.Key())
		}
		for _, a := range r.Indifferent {
			g.AddEdge(r.PrefAttr.Key(), a.Key())
		}
	}
	return g.IsAcyclic()
}

// isLocallyConsistent checks that no maximal set of compatible rules forms a
// cycle of preferred/non-preferred intervals. Each set's interval-graph is
// built and checked independently of the others, so the check fans out one
// goroutine per set via errgroup. Every set is checked to completion (a
// cyclic set does not stop the others), and the result is false if any set
// is cyclic.
func (t *CPTheory) isLocallyConsistent() (bool, error) {
	sets := t.compatibleSets()
	cyclic := make([]bool, len(sets))

	var eg errgroup.Group
	for i, set := range sets {
		i, set := i, set
		eg.Go(func() error {
			g := prefgraph.New()
			for _, idx := range set {
				r := t.rules[idx]
				g.AddEdge(r.Best.Render(r.PrefAttr), r.Worst.Render(r.PrefAttr))
			}
			cyclic[i] = !g.IsAcyclic()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return false, err
	}

	for _, c := range cyclic {
		if c {
			return false, nil
		}
	}
	return true, nil
}

// compatibleSets returns the maximal sets of pairwise-compatible rule
// indices, mirroring CPTheory._get_compatible_sets.
func (t *CPTheory) compatibleSets() [][]int {
	sets := make([][]int, len(t.rules))
	for i := range t.rules {
		sets[i] = []int{i}
	}
	changed := true
	for changed {
		changed = false
		var next [][]int
		seen := map[string]bool{}
		for _, set := range sets {
			combined := false
			for ruleID := range t.rules {
				if containsInt(set, ruleID) {
					continue
				}
				if t.isCompatibleToSet(ruleID, set) {
					combined = true
					newSet := append(append([]int{}, set...), ruleID)
					sort.Ints(newSet)
					key := intsKey(newSet)
					if !seen[key] {
						seen[key] = true
						next = append(next, newSet)
						changed = true
					}
				}
			}
			if !combined {
				key := intsKey(set)
				if !seen[key] {
					seen[key] = true
					next = append(next, set)
				}
			}
		}
		sets = next
	}
	return sets
}

func (t *CPTheory) isCompatibleToSet(ruleID int, set []int) bool {
	r := t.rules[ruleID]
	for _, other := range set {
		if !r.IsCompatibleTo(t.rules[other]) {
			return false
		}
	}
	return true
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func intsKey(xs []int) string {
	sorted := append([]int{}, xs...)
	sort.Ints(sorted)
	out := make([]byte, 0, len(sorted)*4)
	for _, x := range sorted {
		out = append(out, byte(x>>24), byte(x>>16), byte(x>>8), byte(x))
	}
	return string(out)
}

// Dominates reports whether r1 dominates r2 according to the theory,
// dispatching on the configured algorithm.
func (t *CPTheory) Dominates(r1, r2 record.Record) (bool, error) {
	switch t.alg {
	case AlgDirect:
		return t.directDominates(r1, r2)
	case AlgPartition:
		return t.dominatesByComparisons(r1, r2)
	default:
		return t.dominatesBySearch(r1, r2)
	}
}

func (t *CPTheory) directDominates(r1, r2 record.Record) (bool, error) {
	for _, r := range t.rules {
		ok, err := r.RecordDominates(r1, r2)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (t *CPTheory) dominatesByComparisons(r1, r2 record.Record) (bool, error) {
	for _, c := range t.comparisons {
		ok, err := c.Dominates(r1, r2)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (t *CPTheory) dominatesBySearch(r1, r2 record.Record) (bool, error) {
	eq, err := record.Equal(r1, r2)
	if err != nil {
		return false, err
	}
	if eq {
		return false, nil
	}
	return dominatesBySearch(t.rules, r1, r2)
}

func dominatesBySearch(rules []prefrule.CPRule, r1, r2 record.Record) (bool, error) {
	goal, err := isGoalRecord(r2, r1)
	if err != nil {
		return false, err
	}
	if goal {
		return true, nil
	}
	for i, r := range rules {
		newRec, ok, err := r.ChangeRecord(r1)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		rest := make([]prefrule.CPRule, 0, len(rules)-1)
		rest = append(rest, rules[:i]...)
		rest = append(rest, rules[i+1:]...)
		dominated, err := dominatesBySearch(rest, newRec, r2)
		if err != nil {
			return false, err
		}
		if dominated {
			return true, nil
		}
	}
	return false, nil
}

// intervalBearing is implemented by prefrule.ChangedRecord: the records
// ChangeRecord produces carry their rewritten attribute's whole worst
// interval rather than a single boundary value.
type intervalBearing interface {
	Intervals() []prefrule.IntervalMark
}

// isGoalRecord reports whether rec reaches goal. For attributes goal binds
// to a plain value this is equality; for attributes ChangeRecord rewrote to
// an interval (see prefrule.ChangedRecord), rec reaches goal if its value
// lies anywhere inside that interval, not only at one of its boundary
// points. Mirrors is_goal_record's mixed value/interval goal check in the
// original source.
func isGoalRecord(rec, goal record.Record) (bool, error) {
	marked := make(map[string]bool)
	if ib, ok := goal.(intervalBearing); ok {
		for _, m := range ib.Intervals() {
			marked[m.Attr.Key()] = true
			v, err := rec.Get(m.Attr)
			if err != nil {
				return false, nil
			}
			contains, err := m.Interval.Contains(v)
			if err != nil {
				return false, err
			}
			if !contains {
				return false, nil
			}
		}
	}

	for _, a := range goal.Attributes() {
		if marked[a.Key()] {
			continue
		}
		gv, err := goal.Get(a)
		if err != nil {
			return false, err
		}
		v, err := rec.Get(a)
		if err != nil {
			return false, nil
		}
		eq, err := v.EQ(gv)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}
