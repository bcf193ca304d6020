// Package formula implements the Formula (a conjunction of attribute=interval
// propositions) and Comparison (f+, f-, W) primitives described in spec.md
// §3/§4.2, grounded on original_source/preference/comparison.py.
package formula

import (
	"sort"
	"strings"

	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/record"
)

// Formula maps attributes to the interval they must satisfy. A record
// satisfies a formula iff, for every mapped attribute, the record's value
// lies in the interval.
type Formula struct {
	attrs     []record.Attribute
	byAttrKey map[string]interval.Interval
}

// New builds a Formula from an attribute/interval map, fixing a stable
// (sorted by attribute key) attribute order for rendering and comparison.
func New(propositions map[record.Attribute]interval.Interval) Formula {
	f := Formula{byAttrKey: make(map[string]interval.Interval, len(propositions))}
	attrOf := make(map[string]record.Attribute, len(propositions))
	for a, iv := range propositions {
		f.byAttrKey[a.Key()] = iv
		attrOf[a.Key()] = a
	}
	keys := make([]string, 0, len(propositions))
	for k := range f.byAttrKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	f.attrs = make([]record.Attribute, 0, len(keys))
	for _, k := range keys {
		f.attrs = append(f.attrs, attrOf[k])
	}
	return f
}

// Attributes returns the formula's attributes in a stable order.
func (f Formula) Attributes() []record.Attribute {
	return f.attrs
}

// Len returns the number of propositions.
func (f Formula) Len() int {
	return len(f.attrs)
}

// Has reports whether a is constrained by f.
func (f Formula) Has(a record.Attribute) bool {
	_, ok := f.byAttrKey[a.Key()]
	return ok
}

// Interval returns the interval bound to a, if any.
func (f Formula) Interval(a record.Attribute) (interval.Interval, bool) {
	iv, ok := f.byAttrKey[a.Key()]
	return iv, ok
}

// Satisfies reports whether r satisfies every proposition of f.
func (f Formula) Satisfies(r record.Record) (bool, error) {
	for _, a := range f.attrs {
		iv := f.byAttrKey[a.Key()]
		v, err := r.Get(a)
		if err != nil {
			return false, err
		}
		ok, err := iv.Contains(v)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// SatisfiedByFormula reports whether every proposition of f is present with
// an identical interval in other — used by rule-level formula domination,
// which compares formulas by exact interval equality rather than value
// containment (CPCondition.is_valid_by_formula in the original source).
func (f Formula) SatisfiedByFormula(other Formula) bool {
	for _, a := range f.attrs {
		iv := f.byAttrKey[a.Key()]
		oiv, ok := other.byAttrKey[a.Key()]
		if !ok || !iv.Equal(oiv) {
			return false
		}
	}
	return true
}

// Equal reports attribute-wise interval equality.
func (f Formula) Equal(other Formula) bool {
	if len(f.attrs) != len(other.attrs) {
		return false
	}
	for _, a := range f.attrs {
		iv1 := f.byAttrKey[a.Key()]
		iv2, ok := other.byAttrKey[a.Key()]
		if !ok || !iv1.Equal(iv2) {
			return false
		}
	}
	return true
}

// Union returns a new Formula combining f's and other's propositions;
// attributes present in both take other's interval (callers are expected to
// call Union only on attribute-disjoint formulas, as in the universe
// cross-combination step of essential-comparison synthesis).
func (f Formula) Union(other Formula) Formula {
	props := make(map[record.Attribute]interval.Interval, len(f.attrs)+len(other.attrs))
	for _, a := range f.attrs {
		props[a] = f.byAttrKey[a.Key()]
	}
	for _, a := range other.attrs {
		props[a] = other.byAttrKey[a.Key()]
	}
	return New(props)
}

// Difference returns the propositions of big not present in small — used by
// Comparison.IsMoreGenericThan (get_difference_formula in the original).
func Difference(big, small Formula) Formula {
	props := make(map[record.Attribute]interval.Interval)
	for _, a := range big.attrs {
		if !small.Has(a) {
			props[a] = big.byAttrKey[a.Key()]
		}
	}
	return New(props)
}

// String renders the formula as "(a1 op v1)^(a2 op v2)...", matching
// get_string_formula in the original source.
func (f Formula) String() string {
	if len(f.attrs) == 0 {
		return "()"
	}
	parts := make([]string, len(f.attrs))
	for i, a := range f.attrs {
		parts[i] = "(" + f.byAttrKey[a.Key()].Render(a) + ")"
	}
	return strings.Join(parts, "^")
}
