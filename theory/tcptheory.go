package theory

import (
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
)

// TCPTheory is a consistency-checked temporal conditional preference theory.
type TCPTheory struct {
	rules      []prefrule.TCPRule
	consistent bool
}

// NewTemporal builds a TCPTheory: rules are split to a fixpoint, grouped
// into maximal temporal-compatible sets, and each set's present-condition
// projection is checked for CPTheory consistency. Mirrors
// TCPTheory._check_consistency.
func NewTemporal(rules []prefrule.TCPRule) (*TCPTheory, error) {
	t := &TCPTheory{}

	for _, r := range rules {
		if !r.IsConsistent() {
			t.rules = rules
			t.consistent = false
			return t, nil
		}
	}

	split, err := splitTemporalRulesToFixpoint(rules)
	if err != nil {
		return nil, err
	}
	t.rules = split

	for _, set := range t.temporalCompatibleSets() {
		cpRules := make([]prefrule.CPRule, len(set))
		for i, idx := range set {
			cpRules[i] = t.rules[idx].CPRule
		}
		sub := NewSkipConsistency(cpRules, AlgDepthSearch)
		ok, err := sub.isLocallyConsistent()
		if err != nil {
			return nil, err
		}
		if !sub.isGloballyConsistent() || !ok {
			t.consistent = false
			return t, nil
		}
	}
	t.consistent = true
	return t, nil
}

func splitTemporalRulesToFixpoint(rules []prefrule.TCPRule) ([]prefrule.TCPRule, error) {
	list := append([]prefrule.TCPRule{}, rules...)
	for {
		changed := false
		for i, r := range list {
			var parts []prefrule.TCPRule
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
				list = append(append(append([]prefrule.TCPRule{}, list[:i]...), list[i+1:]...), parts...)
				changed = true
				break
			}
		}
		if !changed {
			return list, nil
		}
	}
}

// temporalCompatibleSets returns, for each rule, the set of indices of every
// other rule it is temporal-compatible with (including itself), mirroring
// TCPTheory._get_temporal_compatible_sets.
func (t *TCPTheory) temporalCompatibleSets() [][]int {
	var sets [][]int
	seen := map[string]bool{}
	for i, r := range t.rules {
		set := []int{i}
		for j, other := range t.rules {
			if j == i {
				continue
			}
			if r.IsTemporalCompatibleTo(other) {
				set = append(set, j)
			}
		}
		key := intsKey(set)
		if !seen[key] {
			seen[key] = true
			sets = append(sets, set)
		}
	}
	return sets
}

// IsConsistent reports whether the theory passed its consistency checks.
func (t *TCPTheory) IsConsistent() bool { return t.consistent }

// Rules returns the theory's (post-split) rule list.
func (t *TCPTheory) Rules() []prefrule.TCPRule { return t.rules }

// ValidRules returns every rule whose condition (present and temporal) is
// satisfied at seq's position pos.
func (t *TCPTheory) ValidRules(seq prefrule.Sequence, pos int) ([]prefrule.TCPRule, error) {
	var out []prefrule.TCPRule
	for _, r := range t.rules {
		ok, err := r.IsValidByPosition(seq, pos)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// DominatesBySearch reports whether seq dominates goal: it finds the first
// position where the two sequences disagree, builds a skip-consistency
// CPTheory from the rules valid at that position, and tests record
// dominance between the two records at that position. Mirrors
// TCPTheory.dominates_by_search.
func (t *TCPTheory) DominatesBySearch(seq, goal prefrule.Sequence) (bool, error) {
	pos, err := firstDifferentPosition(seq, goal)
	if err != nil {
		return false, err
	}
	if pos == -1 {
		return false, nil
	}
	valid, err := t.ValidRules(seq, pos)
	if err != nil {
		return false, err
	}
	cpRules := make([]prefrule.CPRule, len(valid))
	for i, r := range valid {
		cpRules[i] = r.CPRule
	}
	sub := NewSkipConsistency(cpRules, AlgDepthSearch)
	return sub.Dominates(seq.At(pos), goal.At(pos))
}

// IsCandidatePosition reports whether rec satisfies some rule's condition
// and its preference-attribute value lies in that rule's best or worst
// interval, i.e. whether rec could ever be distinguished by the theory.
func (t *TCPTheory) IsCandidatePosition(rec record.Record) (bool, error) {
	for _, r := range t.rules {
		ok, err := r.Condition.Satisfies(rec)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		v, err := rec.Get(r.PrefAttr)
		if err != nil {
			continue
		}
		inBest, err := r.Best.Contains(v)
		if err != nil {
			return false, err
		}
		if inBest {
			return true, nil
		}
		inWorst, err := r.Worst.Contains(v)
		if err != nil {
			return false, err
		}
		if inWorst {
			return true, nil
		}
	}
	return false, nil
}

func firstDifferentPosition(s1, s2 prefrule.Sequence) (int, error) {
	n := s1.Len()
	if s2.Len() < n {
		n = s2.Len()
	}
	for i := 0; i < n; i++ {
		eq, err := record.Equal(s1.At(i), s2.At(i))
		if err != nil {
			return -1, err
		}
		if !eq {
			return i, nil
		}
	}
	return -1, nil
}
