package formula

import (
	"sort"
	"strings"

	"github.com/streampref/streampref/record"
)

// Comparison is the dominance primitive b = (f+, f-, W) described in
// spec.md §3/§4.2: b dominates (r1, r2) iff r1 satisfies f+, r2 satisfies f-,
// and every attribute outside W ∪ dom(f+) ∪ dom(f-) is equal between r1 and
// r2.
type Comparison struct {
	best        Formula
	worst       Formula
	indifferent map[string]record.Attribute
}

// NewComparison builds a Comparison from its best formula, worst formula and
// indifferent attribute set.
func NewComparison(best, worst Formula, indifferent []record.Attribute) Comparison {
	c := Comparison{best: best, worst: worst, indifferent: make(map[string]record.Attribute, len(indifferent))}
	for _, a := range indifferent {
		c.indifferent[a.Key()] = a
	}
	return c
}

// Best returns the preferred-side formula f+.
func (c Comparison) Best() Formula { return c.best }

// Worst returns the non-preferred-side formula f-.
func (c Comparison) Worst() Formula { return c.worst }

// Indifferent returns the indifferent attribute set W, in a stable order.
func (c Comparison) Indifferent() []record.Attribute {
	keys := make([]string, 0, len(c.indifferent))
	for k := range c.indifferent {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]record.Attribute, len(keys))
	for i, k := range keys {
		out[i] = c.indifferent[k]
	}
	return out
}

func (c Comparison) hasIndifferent(a record.Attribute) bool {
	_, ok := c.indifferent[a.Key()]
	return ok
}

// IsBestRecord reports whether r satisfies f+ (is_best_record).
func (c Comparison) IsBestRecord(r record.Record) (bool, error) {
	return c.best.Satisfies(r)
}

// IsWorstRecord reports whether r satisfies f- (is_worst_record).
func (c Comparison) IsWorstRecord(r record.Record) (bool, error) {
	return c.worst.Satisfies(r)
}

// Dominates reports whether r1 dominates r2 under this comparison.
func (c Comparison) Dominates(r1, r2 record.Record) (bool, error) {
	ok, err := c.IsBestRecord(r1)
	if err != nil || !ok {
		return false, err
	}
	ok, err = c.IsWorstRecord(r2)
	if err != nil || !ok {
		return false, err
	}

	attrs := unionAttributes(r1, r2)
	for _, a := range attrs {
		if c.hasIndifferent(a) || c.best.Has(a) || c.worst.Has(a) {
			continue
		}
		v1, err1 := r1.Get(a)
		v2, err2 := r2.Get(a)
		if err1 != nil || err2 != nil {
			return false, nil
		}
		eq, err := v1.EQ(v2)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func unionAttributes(r1, r2 record.Record) []record.Attribute {
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

// IsMoreGenericThan reports whether c is more generic than other, per
// spec.md §3/Comparison.is_more_generic_than in the original source: c
// (f+, f-, W) is more generic than other (g+^a+, g-^a-, W2) when either
// (1) a+ = a-  and W2 ⊆ W, or
// (2) (Attr(a+) ∪ W2) ⊆ W and (Attr(a-) ∪ W2) ⊆ W
// where a+ = (g+^a+) - f+, a- = (g-^a-) - f-.
func (c Comparison) IsMoreGenericThan(other Comparison) bool {
	aPref := Difference(other.best, c.best)
	aNotpref := Difference(other.worst, c.worst)
	gPref := Difference(other.best, aPref)
	gNotpref := Difference(other.worst, aNotpref)

	if !c.best.Equal(gPref) || !c.worst.Equal(gNotpref) {
		return false
	}

	w2 := other.indifferent

	if aPref.Equal(aNotpref) && isSubsetOfW(w2, c.indifferent) {
		return true
	}

	awPref := unionKeys(w2, aPref.attrs)
	awNotpref := unionKeys(w2, aNotpref.attrs)
	return isSubsetOfW(awPref, c.indifferent) && isSubsetOfW(awNotpref, c.indifferent)
}

func isSubsetOfW(sub map[string]record.Attribute, super map[string]record.Attribute) bool {
	for k := range sub {
		if _, ok := super[k]; !ok {
			return false
		}
	}
	return true
}

func unionKeys(w map[string]record.Attribute, attrs []record.Attribute) map[string]record.Attribute {
	out := make(map[string]record.Attribute, len(w)+len(attrs))
	for k, a := range w {
		out[k] = a
	}
	for _, a := range attrs {
		out[a.Key()] = a
	}
	return out
}

// Equal compares two comparisons by the string-identity of their canonical
// render, as the original source's Comparison.__eq__ does.
func (c Comparison) Equal(other Comparison) bool {
	return c.String() == other.String()
}

// Less orders comparisons by descending indifferent-set size, then
// ascending formula size (spec.md §4.2). Essential pruning in package
// theory does not sort by it: cleanComparisons visits candidates in the
// order the closure cells yield them.
func (c Comparison) Less(other Comparison) bool {
	if len(c.indifferent) != len(other.indifferent) {
		return len(c.indifferent) > len(other.indifferent)
	}
	return c.best.Len()+c.worst.Len() < other.best.Len()+other.worst.Len()
}

func (c Comparison) String() string {
	var sb strings.Builder
	sb.WriteString(c.best.String())
	sb.WriteString(" > ")
	sb.WriteString(c.worst.String())
	sb.WriteByte('[')
	for i, a := range c.Indifferent() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Key())
	}
	sb.WriteByte(']')
	return sb.String()
}
