// Package interval implements half-open/closed value ranges over a single
// attribute, grounded on original_source/preference/interval.py: a bound is
// either unbounded (nil value) or a value together with whether it is closed
// (<=) or open (<). An interval with equal closed bounds is normalized to a
// single-point ("=") interval.
package interval

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/streampref/streampref/value"
)

// ErrInconsistent names the error for an interval whose bounds cannot hold
// any value (e.g. lv >= rv with strict or non-strict operators on both
// sides). No function in this package returns it: New and the other
// constructors accept such bounds, and IsConsistent reports them.
var ErrInconsistent = errors.New("interval: inconsistent bounds")

// Bound is one side of an Interval. A nil Value means unbounded.
type Bound struct {
	Value  *value.Value
	Closed bool // true: <= (or >= from the other side); false: < (or >)
}

func unbounded() Bound { return Bound{} }

func closedBound(v value.Value) Bound { return Bound{Value: &v, Closed: true} }
func openBound(v value.Value) Bound   { return Bound{Value: &v, Closed: false} }

// Interval represents `[lv lop . rop rv]` as described in spec.md §3: each
// side is optional (unbounded), and the operator set is {<, <=, =}.
type Interval struct {
	left  Bound
	right Bound
}

// New builds an interval from explicit left/right bounds. A nil *value.Value
// on either side means unbounded on that side.
func New(left *value.Value, leftClosed bool, right *value.Value, rightClosed bool) Interval {
	iv := Interval{
		left:  Bound{Value: left, Closed: leftClosed},
		right: Bound{Value: right, Closed: rightClosed},
	}
	return normalize(iv)
}

// Equals builds the single-point interval `attr = v`.
func Equals(v value.Value) Interval {
	return Interval{left: closedBound(v), right: closedBound(v)}
}

// LessThan builds the interval `attr < v`.
func LessThan(v value.Value) Interval {
	return Interval{left: unbounded(), right: openBound(v)}
}

// LessThanOrEqual builds the interval `attr <= v`.
func LessThanOrEqual(v value.Value) Interval {
	return Interval{left: unbounded(), right: closedBound(v)}
}

// GreaterThan builds the interval `attr > v`.
func GreaterThan(v value.Value) Interval {
	return Interval{left: openBound(v), right: unbounded()}
}

// GreaterThanOrEqual builds the interval `attr >= v`.
func GreaterThanOrEqual(v value.Value) Interval {
	return Interval{left: closedBound(v), right: unbounded()}
}

// Unbounded builds the interval covering every value.
func Unbounded() Interval {
	return Interval{}
}

func normalize(iv Interval) Interval {
	if iv.left.Value != nil && iv.right.Value != nil && iv.left.Closed && iv.right.Closed {
		if ok, err := iv.left.Value.EQ(*iv.right.Value); err == nil && ok {
			v := *iv.left.Value
			return Interval{left: closedBound(v), right: closedBound(v)}
		}
	}
	return iv
}

// IsEquality reports whether the interval denotes a single point (the
// normalized "=" form).
func (iv Interval) IsEquality() bool {
	if iv.left.Value == nil || iv.right.Value == nil || !iv.left.Closed || !iv.right.Closed {
		return false
	}
	ok, err := iv.left.Value.EQ(*iv.right.Value)
	return err == nil && ok
}

// LeftValue returns the left bound's value, or nil if unbounded.
func (iv Interval) LeftValue() *value.Value { return iv.left.Value }

// RightValue returns the right bound's value, or nil if unbounded.
func (iv Interval) RightValue() *value.Value { return iv.right.Value }

// LeftClosed reports whether the left bound is inclusive.
func (iv Interval) LeftClosed() bool { return iv.left.Closed }

// RightClosed reports whether the right bound is inclusive.
func (iv Interval) RightClosed() bool { return iv.right.Closed }

// IsConsistent reports whether the interval can hold at least one value.
// Mirrors Interval.is_consistent in the original source: inconsistent when
// both bounds are set, neither is the normalized equality form, and
// lv >= rv.
func (iv Interval) IsConsistent() bool {
	if iv.IsEquality() {
		return true
	}
	if iv.left.Value == nil || iv.right.Value == nil {
		return true
	}
	ok, err := iv.left.Value.GTE(*iv.right.Value)
	if err != nil {
		// Incomparable types are reported by the caller (rule/formula
		// consistency checks run on well-typed attributes); treat as
		// consistent here so the type error surfaces at the call site.
		return true
	}
	return !ok
}

func afterLeft(b Bound, v value.Value) (bool, error) {
	if b.Value == nil {
		return true, nil
	}
	lt, err := b.Value.LT(v)
	if err != nil {
		return false, err
	}
	if lt {
		return true, nil
	}
	if b.Closed {
		eq, err := b.Value.EQ(v)
		if err != nil {
			return false, err
		}
		return eq, nil
	}
	return false, nil
}

func beforeRight(b Bound, v value.Value) (bool, error) {
	if b.Value == nil {
		return true, nil
	}
	gt, err := b.Value.GT(v)
	if err != nil {
		return false, err
	}
	if gt {
		return true, nil
	}
	if b.Closed {
		eq, err := b.Value.EQ(v)
		if err != nil {
			return false, err
		}
		return eq, nil
	}
	return false, nil
}

// Contains reports whether v lies within the interval, respecting the
// boundary operator on each side.
func (iv Interval) Contains(v value.Value) (bool, error) {
	after, err := afterLeft(iv.left, v)
	if err != nil {
		return false, err
	}
	if !after {
		return false, nil
	}
	return beforeRight(iv.right, v)
}

func boundEqual(a, b Bound) bool {
	if (a.Value == nil) != (b.Value == nil) {
		return false
	}
	if a.Value == nil {
		return true
	}
	ok, err := a.Value.EQ(*b.Value)
	return err == nil && ok && a.Closed == b.Closed
}

// Equal reports whether iv and other have identical bounds.
func (iv Interval) Equal(other Interval) bool {
	return boundEqual(iv.left, other.left) && boundEqual(iv.right, other.right)
}

// ContainsLeft reports whether other's left bound lies strictly inside iv,
// mirroring Interval.left_inside in the original source (self=iv, other=other).
func (iv Interval) ContainsLeft(other Interval) (bool, error) {
	if other.left.Value == nil {
		return false, nil
	}

	leftOK := iv.left.Value == nil
	if !leftOK {
		lt, err := iv.left.Value.LT(*other.left.Value)
		if err != nil {
			return false, err
		}
		if lt {
			leftOK = true
		} else {
			eq, err := iv.left.Value.EQ(*other.left.Value)
			if err != nil {
				return false, err
			}
			leftOK = eq && !other.left.Closed && iv.left.Closed
		}
	}
	if !leftOK {
		return false, nil
	}

	rightOK := iv.right.Value == nil
	if !rightOK {
		gt, err := iv.right.Value.GT(*other.left.Value)
		if err != nil {
			return false, err
		}
		if gt {
			rightOK = true
		} else {
			eq, err := iv.right.Value.EQ(*other.left.Value)
			if err != nil {
				return false, err
			}
			rightOK = eq && iv.right.Closed && other.left.Closed
		}
	}
	return rightOK, nil
}

// ContainsRight reports whether other's right bound lies strictly inside iv,
// mirroring Interval.right_inside in the original source.
func (iv Interval) ContainsRight(other Interval) (bool, error) {
	if other.right.Value == nil {
		return false, nil
	}

	rightOK := iv.right.Value == nil
	if !rightOK {
		gt, err := iv.right.Value.GT(*other.right.Value)
		if err != nil {
			return false, err
		}
		if gt {
			rightOK = true
		} else {
			eq, err := iv.right.Value.EQ(*other.right.Value)
			if err != nil {
				return false, err
			}
			rightOK = eq && !other.right.Closed && iv.right.Closed
		}
	}
	if !rightOK {
		return false, nil
	}

	leftOK := iv.left.Value == nil
	if !leftOK {
		lt, err := iv.left.Value.LT(*other.right.Value)
		if err != nil {
			return false, err
		}
		if lt {
			leftOK = true
		} else {
			eq, err := iv.left.Value.EQ(*other.right.Value)
			if err != nil {
				return false, err
			}
			leftOK = eq && iv.left.Closed && other.right.Closed
		}
	}
	return leftOK, nil
}

// Disjoint reports whether iv and other share no value. Unlike the
// original source's is_disjoint (whose name is inverted — it actually tests
// for overlap, the same kind of naming bug flagged for is_goal_formula in
// spec.md §9), this follows the textual contract in spec.md §3: disjoint iff
// each interval's bound lies outside the other.
func (iv Interval) Disjoint(other Interval) (bool, error) {
	overlap, err := iv.overlaps(other)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

func (iv Interval) overlaps(other Interval) (bool, error) {
	// iv is entirely before other: iv.right < other.left
	if iv.right.Value != nil && other.left.Value != nil {
		lt, err := iv.right.Value.LT(*other.left.Value)
		if err != nil {
			return false, err
		}
		if lt {
			return false, nil
		}
		if !lt {
			eq, err := iv.right.Value.EQ(*other.left.Value)
			if err != nil {
				return false, err
			}
			if eq && !(iv.right.Closed && other.left.Closed) {
				return false, nil
			}
		}
	}
	// iv is entirely after other: iv.left > other.right
	if iv.left.Value != nil && other.right.Value != nil {
		gt, err := iv.left.Value.GT(*other.right.Value)
		if err != nil {
			return false, err
		}
		if gt {
			return false, nil
		}
		eq, err := iv.left.Value.EQ(*other.right.Value)
		if err != nil {
			return false, err
		}
		if eq && !(iv.left.Closed && other.right.Closed) {
			return false, nil
		}
	}
	return true, nil
}

// SplitBy returns the 2-partition of iv produced by other's bound, when
// other's left or right bound lies strictly inside iv, preserving the
// original outer bounds and inserting the other bound twice with flipped
// openness. It returns nil when no split applies — grounded on
// Interval.split_by_interval: "at most one split per call."
func (iv Interval) SplitBy(other Interval) ([]Interval, error) {
	if iv.Equal(other) {
		return nil, nil
	}

	containsLeft, err := iv.ContainsLeft(other)
	if err != nil {
		return nil, err
	}
	if containsLeft {
		rightClosed := !other.left.Closed
		first := Interval{left: iv.left, right: Bound{Value: other.left.Value, Closed: rightClosed}}
		second := Interval{left: Bound{Value: other.left.Value, Closed: other.left.Closed}, right: iv.right}
		return []Interval{normalize(first), normalize(second)}, nil
	}

	containsRight, err := iv.ContainsRight(other)
	if err != nil {
		return nil, err
	}
	if containsRight {
		first := Interval{left: iv.left, right: Bound{Value: other.right.Value, Closed: other.right.Closed}}
		leftClosed := !other.right.Closed
		second := Interval{left: Bound{Value: other.right.Value, Closed: leftClosed}, right: iv.right}
		return []Interval{normalize(first), normalize(second)}, nil
	}

	return nil, nil
}

// Copy returns an independent copy of iv. Interval is an immutable value
// type, so Copy is simply a value return.
func (iv Interval) Copy() Interval {
	return iv
}

// Render formats the interval the way the original implementation's
// Interval.get_string does: "LV <LO> key <RO> RV", collapsing to a single
// comparison when one side is unbounded or the interval is an equality.
func (iv Interval) Render(attr fmt.Stringer) string {
	switch {
	case iv.left.Value == nil && iv.right.Value == nil:
		return attr.String()
	case iv.left.Value == nil:
		op := "<"
		if iv.right.Closed {
			op = "<="
		}
		return fmt.Sprintf("%s%s%s", attr, op, iv.right.Value)
	case iv.right.Value == nil:
		op := ">"
		if iv.left.Closed {
			op = ">="
		}
		return fmt.Sprintf("%s%s%s", attr, op, iv.left.Value)
	case iv.IsEquality():
		return fmt.Sprintf("%s=%s", attr, iv.left.Value)
	default:
		lop := "<"
		if iv.left.Closed {
			lop = "<="
		}
		rop := "<"
		if iv.right.Closed {
			rop = "<="
		}
		return fmt.Sprintf("%s%s%s%s%s", iv.left.Value, lop, attr, rop, iv.right.Value)
	}
}

func (iv Interval) String() string {
	return iv.Render(stringerAttr("?"))
}

type stringerAttr string

func (s stringerAttr) String() string { return string(s) }
