// Package value implements the Value domain described in the data model:
// a record attribute holds exactly one of an integer, a float or a string.
package value

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/streampref/streampref/stringutil"
)

// ErrTypeMismatch is returned when two values of incompatible types are compared.
var ErrTypeMismatch = errors.New("value: type mismatch")

// Type is the type tag of a Value.
type Type uint8

const (
	// TypeInteger denotes a 64-bit signed integer.
	TypeInteger Type = iota
	// TypeFloat denotes a 64-bit floating point number.
	TypeFloat
	// TypeText denotes a string.
	TypeText
)

func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeText:
		return "string"
	default:
		panic(fmt.Sprintf("value: unsupported type %d", t))
	}
}

// IsNumber reports whether t is integer or float.
func (t Type) IsNumber() bool {
	return t == TypeInteger || t == TypeFloat
}

// Value is an immutable scalar of one of the three supported types.
// The zero Value is not valid; use the New* constructors.
type Value struct {
	typ Type
	i   int64
	f   float64
	s   string
}

// NewInteger returns an integer value.
func NewInteger(i int64) Value {
	return Value{typ: TypeInteger, i: i}
}

// NewFloat returns a float value.
func NewFloat(f float64) Value {
	return Value{typ: TypeFloat, f: f}
}

// NewText returns a string value.
func NewText(s string) Value {
	return Value{typ: TypeText, s: s}
}

// Type returns the value's type.
func (v Value) Type() Type {
	return v.typ
}

// Int returns the underlying integer. It panics if Type() != TypeInteger.
func (v Value) Int() int64 {
	if v.typ != TypeInteger {
		panic("value: Int called on non-integer value")
	}
	return v.i
}

// Float returns the underlying float. It panics if Type() != TypeFloat.
func (v Value) Float() float64 {
	if v.typ != TypeFloat {
		panic("value: Float called on non-float value")
	}
	return v.f
}

// Text returns the underlying string. It panics if Type() != TypeText.
func (v Value) Text() string {
	if v.typ != TypeText {
		panic("value: Text called on non-string value")
	}
	return v.s
}

// asFloat returns v's numeric value widened to float64, for cross-numeric
// comparisons (integer vs float).
func (v Value) asFloat() float64 {
	if v.typ == TypeInteger {
		return float64(v.i)
	}
	return v.f
}

func (v Value) compatible(other Value) bool {
	if v.typ == other.typ {
		return true
	}
	return v.typ.IsNumber() && other.typ.IsNumber()
}

// compare returns -1, 0 or 1 comparing v to other, or an error if the two
// values don't share a comparable type.
func (v Value) compare(other Value) (int, error) {
	if !v.compatible(other) {
		return 0, errors.Wrapf(ErrTypeMismatch, "cannot compare %s with %s", v.typ, other.typ)
	}

	switch v.typ {
	case TypeText:
		switch {
		case v.s < other.s:
			return -1, nil
		case v.s > other.s:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		a, b := v.asFloat(), other.asFloat()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	}
}

// EQ reports whether v equals other.
func (v Value) EQ(other Value) (bool, error) {
	c, err := v.compare(other)
	return c == 0, err
}

// GT reports whether v is strictly greater than other.
func (v Value) GT(other Value) (bool, error) {
	c, err := v.compare(other)
	return c > 0, err
}

// GTE reports whether v is greater than or equal to other.
func (v Value) GTE(other Value) (bool, error) {
	c, err := v.compare(other)
	return c >= 0, err
}

// LT reports whether v is strictly less than other.
func (v Value) LT(other Value) (bool, error) {
	c, err := v.compare(other)
	return c < 0, err
}

// LTE reports whether v is less than or equal to other.
func (v Value) LTE(other Value) (bool, error) {
	c, err := v.compare(other)
	return c <= 0, err
}

// String renders v the way it would appear in a rendered rule or formula.
// Text values that aren't bare identifiers are quoted, the same rule the
// teacher applies to document keys. A text value that is a bare identifier
// made of digits renders the same as the number it spells (text "1" and
// integer 1 both render as 1).
func (v Value) String() string {
	switch v.typ {
	case TypeInteger:
		return fmt.Sprintf("%d", v.i)
	case TypeFloat:
		return fmt.Sprintf("%g", v.f)
	default:
		return stringutil.NormalizeIdentifier(v.s, '"')
	}
}
