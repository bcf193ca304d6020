package prefrule

import (
	"strings"

	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/record"
)

// Sequence is the minimal view a TCPRule needs over an ordered stream
// partition to evaluate temporal predicates. sequence.Sequence satisfies
// this interface; prefrule intentionally does not import sequence to keep
// the dependency direction condition -> sequence, not the reverse.
type Sequence interface {
	Len() int
	At(pos int) record.Record
}

// TCPRule is a temporal conditional preference rule: a CPRule over the
// "present" condition, plus PREVIOUS/SOME PREVIOUS/ALL PREVIOUS past
// predicates and an optional FIRST predicate, grounded on
// original_source/preference/rule.py's TCPCondition/TCPRule.
type TCPRule struct {
	CPRule

	First        bool
	Previous     formula.Formula
	SomePrevious formula.Formula
	AllPrevious  formula.Formula
}

// NewTemporal builds a TCPRule from a present-condition CPRule plus its
// temporal predicates.
func NewTemporal(cp CPRule, first bool, previous, somePrevious, allPrevious formula.Formula) TCPRule {
	return TCPRule{CPRule: cp, First: first, Previous: previous, SomePrevious: somePrevious, AllPrevious: allPrevious}
}

// HasFirst reports whether the rule carries a FIRST predicate.
func (t TCPRule) HasFirst() bool { return t.First }

// HasPrevious reports whether the rule carries any past predicate.
func (t TCPRule) HasPrevious() bool {
	return t.Previous.Len() > 0 || t.SomePrevious.Len() > 0 || t.AllPrevious.Len() > 0
}

// IsTemporalCompatibleTo reports whether t and other can be grouped into the
// same temporal-compatible rule set: a FIRST rule can't mix with a rule
// carrying past predicates, and any attribute shared between either rule's
// past-predicate formulas must agree on the same interval. Mirrors
// TCPCondition.is_temporal_compatible_to.
func (t TCPRule) IsTemporalCompatibleTo(other TCPRule) bool {
	if t.First && other.HasPrevious() {
		return false
	}
	if other.First && t.HasPrevious() {
		return false
	}
	for _, tp := range t.pastParts() {
		for _, op := range other.pastParts() {
			if !formulasCompatible(tp.f, op.f) {
				return false
			}
		}
	}
	return true
}

func formulasCompatible(f1, f2 formula.Formula) bool {
	for _, a := range f1.Attributes() {
		iv1, _ := f1.Interval(a)
		if iv2, ok := f2.Interval(a); ok && !iv1.Equal(iv2) {
			return false
		}
	}
	return true
}

func (t TCPRule) previousValid(seq Sequence, pos int) (bool, error) {
	if t.Previous.Len() == 0 {
		return true, nil
	}
	if pos <= 0 {
		return false, nil
	}
	return t.Previous.Satisfies(seq.At(pos - 1))
}

func (t TCPRule) someValid(seq Sequence, pos int) (bool, error) {
	if t.SomePrevious.Len() == 0 {
		return true, nil
	}
	if pos <= 0 {
		return false, nil
	}
	for i := 0; i < pos; i++ {
		ok, err := t.SomePrevious.Satisfies(seq.At(i))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (t TCPRule) allValid(seq Sequence, pos int) (bool, error) {
	if t.AllPrevious.Len() == 0 {
		return true, nil
	}
	if pos <= 0 {
		return false, nil
	}
	for i := 0; i < pos; i++ {
		ok, err := t.AllPrevious.Satisfies(seq.At(i))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// IsTemporalValidByPosition checks only the past predicates (FIRST,
// PREVIOUS, SOME PREVIOUS, ALL PREVIOUS), ignoring the present condition.
// Mirrors TCPCondition.is_temporal_valid_by_position.
func (t TCPRule) IsTemporalValidByPosition(seq Sequence, pos int) (bool, error) {
	if t.First && pos != 0 {
		return false, nil
	}
	if ok, err := t.previousValid(seq, pos); err != nil || !ok {
		return ok, err
	}
	if ok, err := t.someValid(seq, pos); err != nil || !ok {
		return ok, err
	}
	return t.allValid(seq, pos)
}

// IsValidByPosition checks the present condition against the record at pos,
// plus every past predicate. Mirrors TCPCondition.is_valid_by_position.
func (t TCPRule) IsValidByPosition(seq Sequence, pos int) (bool, error) {
	if pos < 0 || pos >= seq.Len() {
		return false, nil
	}
	if t.First && pos != 0 {
		return false, nil
	}
	ok, err := t.Condition.Satisfies(seq.At(pos))
	if err != nil || !ok {
		return ok, err
	}
	return t.IsTemporalValidByPosition(seq, pos)
}

// pastParts enumerates the rule's past predicate formulas alongside a label,
// for use by Split.
func (t TCPRule) pastParts() []struct {
	label string
	f     formula.Formula
} {
	return []struct {
		label string
		f     formula.Formula
	}{
		{"previous", t.Previous},
		{"some", t.SomePrevious},
		{"all", t.AllPrevious},
	}
}

func (t TCPRule) withPast(label string, f formula.Formula) TCPRule {
	cp := t
	switch label {
	case "previous":
		cp.Previous = f
	case "some":
		cp.SomePrevious = f
	case "all":
		cp.AllPrevious = f
	}
	return cp
}

// Split extends CPRule.Split with the rule's past predicates: if the
// present condition and preference intervals produce no split against
// other, the PREVIOUS/SOME PREVIOUS/ALL PREVIOUS formulas are tried next, in
// that order. Mirrors TCPCondition.split_by_interval.
func (t TCPRule) Split(other TCPRule) ([]TCPRule, error) {
	present, err := t.CPRule.Split(other.CPRule)
	if err != nil {
		return nil, err
	}
	if len(present) > 0 {
		out := make([]TCPRule, len(present))
		for i, cp := range present {
			tp := t
			tp.CPRule = cp
			out[i] = tp
		}
		return out, nil
	}

	for _, oi := range other.allTemporalIntervals() {
		for _, pp := range t.pastParts() {
			iv, ok := pp.f.Interval(oi.attr)
			if !ok {
				continue
			}
			parts, err := iv.SplitBy(oi.iv)
			if err != nil {
				return nil, err
			}
			if len(parts) == 0 {
				continue
			}
			out := make([]TCPRule, len(parts))
			for i, p := range parts {
				props := make(map[record.Attribute]interval.Interval)
				for _, a := range pp.f.Attributes() {
					cur, _ := pp.f.Interval(a)
					if a.Equal(oi.attr) {
						props[a] = p
					} else {
						props[a] = cur
					}
				}
				out[i] = t.withPast(pp.label, formula.New(props))
			}
			return out, nil
		}
	}
	return nil, nil
}

type temporalInterval struct {
	attr record.Attribute
	iv   interval.Interval
}

func (t TCPRule) allTemporalIntervals() []temporalInterval {
	var out []temporalInterval
	for _, pp := range t.pastParts() {
		for _, a := range pp.f.Attributes() {
			iv, _ := pp.f.Interval(a)
			out = append(out, temporalInterval{a, iv})
		}
	}
	return out
}

func (t TCPRule) String() string {
	var sb strings.Builder
	if t.First {
		sb.WriteString("FIRST ")
	}
	conds := []string{}
	if t.Condition.Len() > 0 {
		conds = append(conds, t.Condition.String())
	}
	if t.Previous.Len() > 0 {
		conds = append(conds, "PREVIOUS "+t.Previous.String())
	}
	if t.SomePrevious.Len() > 0 {
		conds = append(conds, "SOME PREVIOUS "+t.SomePrevious.String())
	}
	if t.AllPrevious.Len() > 0 {
		conds = append(conds, "ALL PREVIOUS "+t.AllPrevious.String())
	}
	if len(conds) > 0 {
		sb.WriteString("IF ")
		sb.WriteString(strings.Join(conds, " AND "))
		sb.WriteString(" THEN ")
	}
	sb.WriteString(t.Best.Render(t.PrefAttr))
	sb.WriteString(" BETTER ")
	sb.WriteString(t.Worst.Render(t.PrefAttr))
	return sb.String()
}
