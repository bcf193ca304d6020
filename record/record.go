// Package record implements the Attribute/Record data model: a record is an
// immutable mapping from Attribute to value.Value with no duplicate keys and
// no enforced ordering, generalized from the teacher's internal/row.Row and
// internal/row.ColumnBuffer (string-keyed columns of types.Value) to
// Attribute-keyed columns of value.Value.
package record

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/streampref/streampref/value"
)

// ErrAttributeNotFound is returned by Get when the attribute is absent.
var ErrAttributeNotFound = errors.New("record: attribute not found")

// Attribute identifies a record column, optionally qualified by a table name.
// Two attributes are equal iff their qualified Key matches.
type Attribute struct {
	Table string
	Name  string
}

// NewAttribute returns an unqualified attribute.
func NewAttribute(name string) Attribute {
	return Attribute{Name: name}
}

// NewQualifiedAttribute returns an attribute qualified by a table name.
func NewQualifiedAttribute(table, name string) Attribute {
	return Attribute{Table: table, Name: name}
}

// Key returns "table.name" when the attribute is qualified, otherwise "name".
func (a Attribute) Key() string {
	if a.Table == "" {
		return a.Name
	}
	return a.Table + "." + a.Name
}

// Equal reports whether a and other denote the same attribute.
func (a Attribute) Equal(other Attribute) bool {
	return a.Key() == other.Key()
}

func (a Attribute) String() string {
	return a.Key()
}

// Record is a mapping from Attribute to value.Value.
type Record interface {
	// Iterate calls fn for every attribute of the record, in declaration order.
	// Iteration stops at the first error returned by fn.
	Iterate(fn func(a Attribute, v value.Value) error) error

	// Get returns the value bound to a, or ErrAttributeNotFound.
	Get(a Attribute) (value.Value, error)

	// Attributes returns the declared attribute list, in declaration order.
	Attributes() []Attribute
}

// column is a single attribute/value pair, stored in declaration order.
type column struct {
	attr Attribute
	val  value.Value
}

// Buffer is an in-memory, ordered Record implementation. It is the concrete
// type produced by every operator in this module.
type Buffer struct {
	columns []column
}

var _ Record = (*Buffer)(nil)

// NewBuffer returns an empty record buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends an attribute/value pair. It does not check for duplicates;
// callers that build records from scratch should prefer Set for that.
func (b *Buffer) Add(a Attribute, v value.Value) *Buffer {
	b.columns = append(b.columns, column{a, v})
	return b
}

// Set replaces the value bound to a if present, or appends it otherwise.
func (b *Buffer) Set(a Attribute, v value.Value) {
	for i := range b.columns {
		if b.columns[i].attr.Equal(a) {
			b.columns[i].val = v
			return
		}
	}
	b.Add(a, v)
}

// Delete removes the column bound to a, if present.
func (b *Buffer) Delete(a Attribute) {
	for i := range b.columns {
		if b.columns[i].attr.Equal(a) {
			b.columns = append(b.columns[:i], b.columns[i+1:]...)
			return
		}
	}
}

// Get implements Record.
func (b *Buffer) Get(a Attribute) (value.Value, error) {
	for _, c := range b.columns {
		if c.attr.Equal(a) {
			return c.val, nil
		}
	}
	return value.Value{}, errors.Wrapf(ErrAttributeNotFound, "%s", a)
}

// Iterate implements Record.
func (b *Buffer) Iterate(fn func(a Attribute, v value.Value) error) error {
	for _, c := range b.columns {
		if err := fn(c.attr, c.val); err != nil {
			return err
		}
	}
	return nil
}

// Attributes implements Record.
func (b *Buffer) Attributes() []Attribute {
	attrs := make([]Attribute, len(b.columns))
	for i, c := range b.columns {
		attrs[i] = c.attr
	}
	return attrs
}

// Len returns the number of columns.
func (b *Buffer) Len() int {
	return len(b.columns)
}

// Clone returns an independent copy of b.
func (b *Buffer) Clone() *Buffer {
	cp := &Buffer{columns: make([]column, len(b.columns))}
	copy(cp.columns, b.columns)
	return cp
}

// Copy appends every column of r to b.
func (b *Buffer) Copy(r Record) error {
	return r.Iterate(func(a Attribute, v value.Value) error {
		b.Add(a, v)
		return nil
	})
}

// Equal reports whether r1 and r2 bind the same attributes to equal values.
func Equal(r1, r2 Record) (bool, error) {
	a1 := r1.Attributes()
	a2 := r2.Attributes()
	if len(a1) != len(a2) {
		return false, nil
	}

	for _, a := range a1 {
		v1, err := r1.Get(a)
		if err != nil {
			return false, err
		}
		v2, err := r2.Get(a)
		if errors.Is(err, ErrAttributeNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		ok, err := v1.EQ(v2)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// Fingerprint renders a stable string key for r restricted to attrs, used to
// group records sharing an identifier (sequence identifiers, hierarchy
// partition keys). Attributes must be provided in a stable, caller-chosen
// order; two records produce the same fingerprint iff they agree on every
// attribute in attrs.
func Fingerprint(r Record, attrs []Attribute) (string, error) {
	var sb strings.Builder
	for i, a := range attrs {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		v, err := r.Get(a)
		if err != nil {
			return "", err
		}
		sb.WriteString(v.String())
	}
	return sb.String(), nil
}
