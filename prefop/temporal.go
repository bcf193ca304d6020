package prefop

import (
	"github.com/cockroachdb/errors"

	"github.com/streampref/streampref/sequence"
	"github.com/streampref/streampref/seqtree"
	"github.com/streampref/streampref/theory"
)

// SeqAlgorithm selects the strategy a TemporalPreferenceOp uses to compute
// dominant/top-k sequences, per spec.md §4.8's "same dispatch ... between
// depth-search and SeqTree-based".
type SeqAlgorithm int

const (
	// SeqAlgDepthSearch recomputes dominance from scratch each tick via
	// theory.TCPTheory.DominatesBySearch.
	SeqAlgDepthSearch SeqAlgorithm = iota
	// SeqAlgSeqTree maintains a seqtree.Tree (SEQ_ALG_SEQTREE) incrementally.
	SeqAlgSeqTree
	// SeqAlgSeqTreePruning maintains a pruning seqtree.Tree
	// (SEQ_ALG_SEQTREE_PRUNING) incrementally.
	SeqAlgSeqTreePruning
)

// ErrUnsupportedSeqAlgorithm is returned by NewTemporal when alg is not one
// of the SeqAlgorithm constants.
var ErrUnsupportedSeqAlgorithm = errors.New("prefop: unsupported sequence algorithm")

// StatsSink receives one row per tick of comparison statistics, per
// spec.md §6's comparison-statistics file contract. statsfile.Writer
// satisfies this.
type StatsSink interface {
	WriteTick(t int64, in []int, comparisons int, out []int) error
}

// TemporalPreferenceOp drives dominant/top-k sequence selection over a
// stream of sequence-list ticks, per spec.md §4.8.
type TemporalPreferenceOp struct {
	alg  SeqAlgorithm
	tcp  *theory.TCPTheory
	tree *seqtree.Tree

	stats StatsSink

	timestamp   int64
	comparisons int
}

// NewTemporal builds a TemporalPreferenceOp over a consistent TCPTheory.
func NewTemporal(alg SeqAlgorithm, tcp *theory.TCPTheory) (*TemporalPreferenceOp, error) {
	op := &TemporalPreferenceOp{alg: alg, tcp: tcp, timestamp: -1}
	switch alg {
	case SeqAlgDepthSearch:
	case SeqAlgSeqTree:
		op.tree = seqtree.New(tcp, false)
	case SeqAlgSeqTreePruning:
		op.tree = seqtree.New(tcp, true)
	default:
		return nil, errors.Wrapf(ErrUnsupportedSeqAlgorithm, "%d", alg)
	}
	return op, nil
}

// WithStats attaches a comparison-statistics sink; every subsequent Run
// appends one row to it.
func (op *TemporalPreferenceOp) WithStats(sink StatsSink) *TemporalPreferenceOp {
	op.stats = sink
	return op
}

// Run advances the operator to tick t given the full current sequence list,
// per spec.md §4.8/§4.7's top semantics (0 -> empty, >0 -> top-k, <0 ->
// best/dominant set).
func (op *TemporalPreferenceOp) Run(t int64, seqs []*sequence.Sequence, top int) ([]*sequence.Sequence, error) {
	op.timestamp = t
	op.comparisons = 0

	var result []*sequence.Sequence
	var err error

	switch {
	case top == 0:
		result = nil
	case op.tree != nil:
		if err = op.tree.Update(seqs); err != nil {
			return nil, err
		}
		if top > 0 {
			result, err = op.tree.TopKSequences(top)
		} else {
			result = op.tree.BestSequences()
		}
	default:
		dom := func(s1, s2 *sequence.Sequence) (bool, error) {
			op.comparisons++
			return op.tcp.DominatesBySearch(s1, s2)
		}
		if top > 0 {
			result, err = peelTopK[*sequence.Sequence](dom, seqs, top)
		} else {
			var dominant []*sequence.Sequence
			dominant, _, err = dominantAndDominated[*sequence.Sequence](dom, seqs)
			result = dominant
		}
	}
	if err != nil {
		return nil, err
	}

	if op.stats != nil {
		if statErr := op.stats.WriteTick(t, seqLengths(seqs), op.comparisons, seqLengths(result)); statErr != nil {
			return nil, statErr
		}
	}
	return result, nil
}

// GetTimestamp returns the tick this operator last ran at, or -1 if it has
// never run.
func (op *TemporalPreferenceOp) GetTimestamp() int64 { return op.timestamp }

func seqLengths(seqs []*sequence.Sequence) []int {
	out := make([]int, len(seqs))
	for i, s := range seqs {
		out[i] = s.Len()
	}
	return out
}
