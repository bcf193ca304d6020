// Package prefrule implements CPRule and TCPRule — the conditional
// preference rule and its temporal extension — grounded on
// original_source/preference/rule.py.
package prefrule

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/value"
)

// ErrInvalidRule is returned by Validate when a rule violates one of the
// invariants in spec.md §3.
var ErrInvalidRule = errors.New("prefrule: invalid rule")

// CPRule is a conditional preference rule: a condition (a conjunction of
// propositions over attributes) plus a preference (attribute A, best
// interval I+, worst interval I-, indifferent set W).
type CPRule struct {
	Condition   formula.Formula
	PrefAttr    record.Attribute
	Best        interval.Interval
	Worst       interval.Interval
	Indifferent []record.Attribute
}

// New builds a CPRule.
func New(condition formula.Formula, prefAttr record.Attribute, best, worst interval.Interval, indifferent []record.Attribute) CPRule {
	return CPRule{Condition: condition, PrefAttr: prefAttr, Best: best, Worst: worst, Indifferent: indifferent}
}

func (r CPRule) indifferentSet() map[string]bool {
	m := make(map[string]bool, len(r.Indifferent))
	for _, a := range r.Indifferent {
		m[a.Key()] = true
	}
	return m
}

// IsConsistent enforces the invariants from spec.md §3: A not in
// condition.attrs, A not in W, W ∩ condition.attrs = ∅.
func (r CPRule) IsConsistent() bool {
	if r.Condition.Has(r.PrefAttr) {
		return false
	}
	indiff := r.indifferentSet()
	if indiff[r.PrefAttr.Key()] {
		return false
	}
	for _, a := range r.Condition.Attributes() {
		if indiff[a.Key()] {
			return false
		}
	}
	return true
}

// Validate returns ErrInvalidRule if the rule violates IsConsistent.
func (r CPRule) Validate() error {
	if !r.IsConsistent() {
		return errors.Wrapf(ErrInvalidRule, "%s", r)
	}
	return nil
}

// attributeIntervals lists (attribute, interval, part) triples for every
// proposition carried by the rule: condition propositions, then the
// preference attribute's best and worst intervals. Mirrors
// CPRule.get_attribute_list / get_interval_list in the original source.
type ruleInterval struct {
	attr record.Attribute
	iv   interval.Interval
	part string // "condition", "best", "worst"
}

func (r CPRule) attributeIntervals() []ruleInterval {
	var out []ruleInterval
	for _, a := range r.Condition.Attributes() {
		iv, _ := r.Condition.Interval(a)
		out = append(out, ruleInterval{a, iv, "condition"})
	}
	out = append(out, ruleInterval{r.PrefAttr, r.Best, "best"})
	out = append(out, ruleInterval{r.PrefAttr, r.Worst, "worst"})
	return out
}

func (r CPRule) withCondition(a record.Attribute, iv interval.Interval) CPRule {
	props := make(map[record.Attribute]interval.Interval)
	for _, at := range r.Condition.Attributes() {
		if at.Equal(a) {
			props[at] = iv
			continue
		}
		cur, _ := r.Condition.Interval(at)
		props[at] = cur
	}
	cp := r
	cp.Condition = formula.New(props)
	return cp
}

func (r CPRule) withBest(iv interval.Interval) CPRule {
	cp := r
	cp.Best = iv
	return cp
}

func (r CPRule) withWorst(iv interval.Interval) CPRule {
	cp := r
	cp.Worst = iv
	return cp
}

// splitByInterval tries to split r's proposition on attr against iv,
// mirroring CPRule._split_by_interval: condition is tried first, and the
// preference attribute's best/worst intervals only if attr is the
// preference attribute and the condition produced no split.
func (r CPRule) splitByInterval(attr record.Attribute, iv interval.Interval) ([]CPRule, error) {
	if condIv, ok := r.Condition.Interval(attr); ok {
		parts, err := condIv.SplitBy(iv)
		if err != nil {
			return nil, err
		}
		if len(parts) > 0 {
			out := make([]CPRule, len(parts))
			for i, p := range parts {
				out[i] = r.withCondition(attr, p)
			}
			return out, nil
		}
	}

	if !attr.Equal(r.PrefAttr) {
		return nil, nil
	}

	if parts, err := r.Best.SplitBy(iv); err != nil {
		return nil, err
	} else if len(parts) > 0 {
		out := make([]CPRule, len(parts))
		for i, p := range parts {
			out[i] = r.withBest(p)
		}
		return out, nil
	}

	if parts, err := r.Worst.SplitBy(iv); err != nil {
		return nil, err
	} else if len(parts) > 0 {
		out := make([]CPRule, len(parts))
		for i, p := range parts {
			out[i] = r.withWorst(p)
		}
		return out, nil
	}

	return nil, nil
}

// Split returns a list of new rules that partition r so that no interval
// overlaps with any of other's intervals. The first attribute/interval
// causing a split determines the output; at most one split per call.
// Mirrors CPRule.split.
func (r CPRule) Split(other CPRule) ([]CPRule, error) {
	for _, ri := range other.attributeIntervals() {
		parts, err := r.splitByInterval(ri.attr, ri.iv)
		if err != nil {
			return nil, err
		}
		if len(parts) > 0 {
			return parts, nil
		}
	}
	return nil, nil
}

// IntervalMark pairs an attribute with the interval a ChangedRecord accepts
// in place of a concrete value for it.
type IntervalMark struct {
	Attr     record.Attribute
	Interval interval.Interval
}

// ChangedRecord is produced by ChangeRecord. Every attribute keeps its
// concrete value except the attributes rewritten by this or an earlier rule
// in the same depth-search chain, which instead carry the rule's whole
// worst interval: the rule is satisfied by any value inside I-, not only by
// one of its boundary points. Mirrors change_record storing the Interval
// object itself in the rewritten record (original_source/preference/rule.py:438).
type ChangedRecord struct {
	base      *record.Buffer
	intervals []IntervalMark
}

var _ record.Record = (*ChangedRecord)(nil)

// Iterate implements record.Record over the concrete (non-interval)
// attributes only.
func (c *ChangedRecord) Iterate(fn func(a record.Attribute, v value.Value) error) error {
	return c.base.Iterate(fn)
}

// Get implements record.Record; it returns ErrAttributeNotFound for
// attributes ChangeRecord rewrote to an interval, same as if they had been
// dropped, so callers that only understand concrete values treat them as
// wildcards rather than reading a fabricated boundary value.
func (c *ChangedRecord) Get(a record.Attribute) (value.Value, error) {
	return c.base.Get(a)
}

// Attributes implements record.Record over the concrete attributes only.
func (c *ChangedRecord) Attributes() []record.Attribute {
	return c.base.Attributes()
}

// Intervals returns every attribute this record accepts as an interval
// rather than a concrete value.
func (c *ChangedRecord) Intervals() []IntervalMark {
	return c.intervals
}

// IntervalFor returns the interval ChangeRecord substituted for a's
// concrete value, if any.
func (c *ChangedRecord) IntervalFor(a record.Attribute) (interval.Interval, bool) {
	for _, m := range c.intervals {
		if m.Attr.Equal(a) {
			return m.Interval, true
		}
	}
	return interval.Interval{}, false
}

// ChangeRecord produces r' from r by rewriting the preference attribute to
// accept any value inside the worst interval and dropping indifferent
// attributes, if rec satisfies the condition and its preference-attribute
// value lies within the best interval (or is absent, meaning an earlier
// rule already rewrote or dropped it). It returns ok=false if the rule does
// not apply.
func (r CPRule) ChangeRecord(rec record.Record) (out *ChangedRecord, ok bool, err error) {
	validCond, err := r.Condition.Satisfies(rec)
	if err != nil {
		return nil, false, err
	}
	if !validCond {
		return nil, false, nil
	}

	v, getErr := rec.Get(r.PrefAttr)
	if getErr == nil {
		inBest, err := r.Best.Contains(v)
		if err != nil {
			return nil, false, err
		}
		if !inBest {
			return nil, false, nil
		}
	} else if !errors.Is(getErr, record.ErrAttributeNotFound) {
		return nil, false, getErr
	}

	nb := record.NewBuffer()
	indiff := r.indifferentSet()
	if err := rec.Iterate(func(a record.Attribute, val value.Value) error {
		if indiff[a.Key()] {
			return nil
		}
		if a.Equal(r.PrefAttr) {
			return nil
		}
		nb.Add(a, val)
		return nil
	}); err != nil {
		return nil, false, err
	}

	var intervals []IntervalMark
	if prev, ok := rec.(interface{ Intervals() []IntervalMark }); ok {
		for _, m := range prev.Intervals() {
			if indiff[m.Attr.Key()] || m.Attr.Equal(r.PrefAttr) {
				continue
			}
			intervals = append(intervals, m)
		}
	}
	intervals = append(intervals, IntervalMark{Attr: r.PrefAttr, Interval: r.Worst})

	return &ChangedRecord{base: nb, intervals: intervals}, true, nil
}

// RecordDominates reports whether r1 dominates r2 under r: r1 has I+, r2
// has I-, both satisfy the condition, all other non-indifferent
// non-preference attributes equal.
func (r CPRule) RecordDominates(r1, r2 record.Record) (bool, error) {
	v1, err := r1.Get(r.PrefAttr)
	if err != nil {
		return false, nil
	}
	inBest, err := r.Best.Contains(v1)
	if err != nil {
		return false, err
	}
	if !inBest {
		return false, nil
	}

	v2, err := r2.Get(r.PrefAttr)
	if err != nil {
		return false, nil
	}
	inWorst, err := r.Worst.Contains(v2)
	if err != nil {
		return false, err
	}
	if !inWorst {
		return false, nil
	}

	valid1, err := r.Condition.Satisfies(r1)
	if err != nil || !valid1 {
		return false, err
	}
	valid2, err := r.Condition.Satisfies(r2)
	if err != nil || !valid2 {
		return false, err
	}

	indiff := r.indifferentSet()
	for _, a := range unionAttrs(r1, r2) {
		if a.Equal(r.PrefAttr) || indiff[a.Key()] {
			continue
		}
		x1, e1 := r1.Get(a)
		x2, e2 := r2.Get(a)
		if e1 != nil || e2 != nil {
			return false, nil
		}
		eq, err := x1.EQ(x2)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// FormulaDominates is the formula-level analog of RecordDominates, used by
// essential-comparison synthesis: formula equality is used in place of
// record-value equality, per CPRule.formula_dominates.
func (r CPRule) FormulaDominates(f1, f2 formula.Formula) (bool, error) {
	iv1, ok := f1.Interval(r.PrefAttr)
	if !ok {
		return false, nil
	}
	if !r.Best.Equal(iv1) {
		return false, nil
	}
	iv2, ok := f2.Interval(r.PrefAttr)
	if !ok {
		return false, nil
	}
	if !r.Worst.Equal(iv2) {
		return false, nil
	}

	if !r.Condition.SatisfiedByFormula(f1) || !r.Condition.SatisfiedByFormula(f2) {
		return false, nil
	}

	indiff := r.indifferentSet()
	seen := make(map[string]bool)
	for _, a := range append(append([]record.Attribute{}, f1.Attributes()...), f2.Attributes()...) {
		if seen[a.Key()] {
			continue
		}
		seen[a.Key()] = true
		if a.Equal(r.PrefAttr) || indiff[a.Key()] {
			continue
		}
		x1, ok1 := f1.Interval(a)
		x2, ok2 := f2.Interval(a)
		if !ok1 || !ok2 || !x1.Equal(x2) {
			return false, nil
		}
	}
	return true, nil
}

// IsCompatibleTo reports whether r is compatible with other: same
// preference attribute, and matching values on any condition attribute they
// share (CPRule.is_compatible_to / are_compatible_dicts).
func (r CPRule) IsCompatibleTo(other CPRule) bool {
	if !r.PrefAttr.Equal(other.PrefAttr) {
		return false
	}
	for _, a := range r.Condition.Attributes() {
		iv1, _ := r.Condition.Interval(a)
		if iv2, ok := other.Condition.Interval(a); ok {
			if !iv1.Equal(iv2) {
				return false
			}
		}
	}
	return true
}

func unionAttrs(r1, r2 record.Record) []record.Attribute {
	seen := make(map[string]record.Attribute)
	for _, a := range r1.Attributes() {
		seen[a.Key()] = a
	}
	for _, a := range r2.Attributes() {
		seen[a.Key()] = a
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]record.Attribute, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
	}
	return out
}

func (r CPRule) String() string {
	var sb strings.Builder
	if r.Condition.Len() > 0 {
		sb.WriteString("IF ")
		sb.WriteString(r.Condition.String())
		sb.WriteString(" THEN ")
	}
	sb.WriteString(r.Best.Render(r.PrefAttr))
	sb.WriteString(" BETTER ")
	sb.WriteString(r.Worst.Render(r.PrefAttr))
	return sb.String()
}
