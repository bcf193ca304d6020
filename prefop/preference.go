package prefop

import (
	"github.com/cockroachdb/errors"

	"github.com/streampref/streampref/hierarchy"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/theory"
)

// Algorithm selects which of the four strategies described in spec.md §2
// and §4.7 a PreferenceOp uses to compute best/top-k.
type Algorithm int

const (
	// AlgDepthSearch recomputes the dominant/dominated split from scratch
	// each tick via theory.CPTheory's depth-search dominance test.
	AlgDepthSearch Algorithm = iota
	// AlgPartition recomputes from scratch each tick via the theory's
	// synthesized essential-comparison set.
	AlgPartition
	// AlgIncAncestors maintains a hierarchy.Ancestors index incrementally.
	AlgIncAncestors
	// AlgIncPartition maintains a hierarchy.Partition index incrementally.
	AlgIncPartition
	// AlgIncGraph maintains a hierarchy.Graph index incrementally, using the
	// theory's transitive dominance test for edges.
	AlgIncGraph
	// AlgIncGraphNoTransitive maintains a hierarchy.Graph index using only
	// direct (single rule application) dominance for edges.
	AlgIncGraphNoTransitive
)

// ErrUnsupportedAlgorithm is returned by New when alg is not one of the
// Algorithm constants; per spec.md §7 this is a fatal programming error at
// construction, never a runtime failure.
var ErrUnsupportedAlgorithm = errors.New("prefop: unsupported algorithm")

// PreferenceOp drives one of the four best/top-k strategies over a stream
// of record-list ticks, per spec.md §4.7. It is not itself a stream.Operator
// source: callers feed it the operand's current record list (and, for the
// incremental algorithms, rely on the operand's own insert/delete deltas)
// each tick via Run.
type PreferenceOp struct {
	alg   Algorithm
	theory *theory.CPTheory
	hier  hierarchy.Hierarchy

	timestamp int64
}

// New builds a PreferenceOp. th must already be a consistent CPTheory built
// with the algorithm appropriate to alg (theory.AlgPartition for
// AlgPartition/AlgIncPartition, theory.AlgDirect for
// AlgIncGraphNoTransitive, theory.AlgDepthSearch otherwise); New does not
// re-derive th's algorithm, matching spec.md §4.7's "dispatch on algorithm"
// wording, where the theory and the operator agree on strategy by
// construction.
func New(alg Algorithm, th *theory.CPTheory) (*PreferenceOp, error) {
	op := &PreferenceOp{alg: alg, theory: th, timestamp: -1}
	switch alg {
	case AlgDepthSearch, AlgPartition:
		// Non-incremental: dominance is recomputed from the full list each
		// tick, no hierarchy needed.
	case AlgIncAncestors:
		op.hier = hierarchy.NewAncestors(th.Dominates)
	case AlgIncGraph, AlgIncGraphNoTransitive:
		op.hier = hierarchy.NewGraph(th.Dominates)
	case AlgIncPartition:
		op.hier = hierarchy.NewPartition(th.Comparisons())
	default:
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%d", alg)
	}
	return op, nil
}

// Run advances the operator to tick t given the operand's full current
// record list and (for incremental algorithms) the operand's
// inserted/deleted deltas since the last tick, per spec.md §5's "the only
// source of truth for get_inserted_list()/get_deleted_list()". top follows
// spec.md §4.7: top == 0 emits empty, top > 0 returns at most top records,
// top < 0 returns the full best (dominant) set.
func (op *PreferenceOp) Run(t int64, current, deleted, inserted []record.Record, top int) ([]record.Record, error) {
	op.timestamp = t
	if top == 0 {
		return nil, nil
	}

	if op.hier != nil {
		if err := op.hier.Update(deleted, inserted); err != nil {
			return nil, err
		}
		if top > 0 {
			return op.hier.TopK(top), nil
		}
		return op.hier.BestRecords(), nil
	}

	if top > 0 {
		return peelTopK[record.Record](op.theory.Dominates, current, top)
	}
	dominant, _, err := dominantAndDominated[record.Record](op.theory.Dominates, current)
	return dominant, err
}

// GetTimestamp returns the tick this operator last ran at, or -1 if it has
// never run.
func (op *PreferenceOp) GetTimestamp() int64 { return op.timestamp }
