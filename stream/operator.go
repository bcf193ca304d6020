// Package stream implements the framework glue shared by every operator in
// the engine: the record-list interface described in spec.md §6
// (get_current_list / get_inserted_list / get_deleted_list / get_timestamp /
// get_attribute_list / get_result_type / is_consistent / run(t)) and the tick
// propagation rule of spec.md §5 (an operator runs at t only if its own
// timestamp is below t and every operand's timestamp equals t). Grounded on
// the teacher's BaseOperator linked-list shape (internal/stream.BaseOperator:
// Prev/Next, Clone, String), repurposed from chai's expression/Iterate
// pipeline to StreamPref's tick-and-record-list pipeline.
package stream

import (
	"github.com/streampref/streampref/record"
)

// ResultType distinguishes a query whose output is a table (current
// snapshot matters) from one whose output is an append-only stream (only
// insertions matter), per spec.md §6.
type ResultType int

const (
	// Table results are read as "what holds now"; deletions matter.
	Table ResultType = iota
	// Stream results are read as "what arrived"; only insertions matter.
	Stream
)

func (rt ResultType) String() string {
	if rt == Stream {
		return "stream"
	}
	return "table"
}

// Operator is the record-list interface every operator in the engine
// exposes, per spec.md §6. It is intentionally narrow: the core packages
// (hierarchy, theory, seqtree, seqop) do not depend on it, since each has
// its own typed Run(t, ...) entry point tested directly against spec.md §8's
// literal scenarios. Operator exists for the generic tick loop
// (cmd/streampref, internal/httpapi) that must drive an arbitrary mix of
// operators without knowing their concrete result type.
type Operator interface {
	// GetCurrentList returns the records produced by the operator's most
	// recent Run.
	GetCurrentList() []record.Record
	// GetInsertedList returns the records present in the current list but
	// not the previous one, per the multiset difference of spec.md §5.
	GetInsertedList() []record.Record
	// GetDeletedList returns the records present in the previous list but
	// not the current one.
	GetDeletedList() []record.Record
	// GetTimestamp returns the logical tick this operator last ran at, or -1
	// if it has never run.
	GetTimestamp() int64
	// GetAttributeList returns the operator's declared output attributes,
	// in declaration order.
	GetAttributeList() []record.Attribute
	// GetResultType reports whether this operator produces a table or a
	// stream.
	GetResultType() ResultType
	// IsConsistent reports whether the operator passed its registration-time
	// consistency check. Per spec.md §7, this is checked once at
	// registration; Run never re-checks it.
	IsConsistent() bool
	// Run advances the operator to tick t, synchronously. Run must only be
	// called when CanRun(t) holds.
	Run(t int64) error
}

// Base implements the bookkeeping shared by every concrete Operator:
// operand tracking, previous/current list freezing, and the CanRun gate.
// Concrete operators embed Base and implement their own Run(t) that calls
// Base.Advance(t, newCurrent) once it has computed the tick's output list.
type Base struct {
	Operands  []Operator
	Attrs     []record.Attribute
	Result    ResultType
	Consistent bool

	timestamp    int64
	currentList  []record.Record
	previousList []record.Record
	inserted     []record.Record
	deleted      []record.Record
}

// NewBase builds a Base with timestamp -1 (never run), the given declared
// attributes, result type, and upstream operands used by CanRun.
func NewBase(attrs []record.Attribute, result ResultType, operands ...Operator) Base {
	return Base{Operands: operands, Attrs: attrs, Result: result, Consistent: true, timestamp: -1}
}

// CanRun reports whether the operator may run at tick t: its own timestamp
// must be below t, and every operand must already be at t. An operator with
// no operands (a source) may always run at a t greater than its own
// timestamp.
func (b *Base) CanRun(t int64) bool {
	if b.timestamp >= t {
		return false
	}
	for _, op := range b.Operands {
		if op.GetTimestamp() != t {
			return false
		}
	}
	return true
}

// Advance freezes the current list into the previous list, computes the
// inserted/deleted multiset difference per spec.md §5, and records t as the
// new timestamp. Concrete Run implementations call this once they have
// computed newCurrent.
func (b *Base) Advance(t int64, newCurrent []record.Record) error {
	b.previousList = b.currentList
	b.currentList = newCurrent
	inserted, deleted, err := record.Diff(b.previousList, b.currentList)
	if err != nil {
		return err
	}
	b.inserted = inserted
	b.deleted = deleted
	b.timestamp = t
	return nil
}

// GetCurrentList implements Operator.
func (b *Base) GetCurrentList() []record.Record { return b.currentList }

// GetInsertedList implements Operator.
func (b *Base) GetInsertedList() []record.Record { return b.inserted }

// GetDeletedList implements Operator.
func (b *Base) GetDeletedList() []record.Record { return b.deleted }

// GetTimestamp implements Operator.
func (b *Base) GetTimestamp() int64 { return b.timestamp }

// GetAttributeList implements Operator.
func (b *Base) GetAttributeList() []record.Attribute { return b.Attrs }

// GetResultType implements Operator.
func (b *Base) GetResultType() ResultType { return b.Result }

// IsConsistent implements Operator.
func (b *Base) IsConsistent() bool { return b.Consistent }
