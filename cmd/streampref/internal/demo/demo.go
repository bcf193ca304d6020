// Package demo builds the single fixed query cmd/streampref ticks through,
// reproducing spec.md §8 scenario (a): rule "IF a=1 THEN b=2 BETTER b=3
// (c)" evaluated over a small scripted record stream across ticks, so the
// CLI and the HTTP/metrics surfaces have something real to drive without a
// CQL parser.
package demo

import (
	"github.com/streampref/streampref/formula"
	"github.com/streampref/streampref/interval"
	"github.com/streampref/streampref/prefop"
	"github.com/streampref/streampref/prefrule"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/stream"
	"github.com/streampref/streampref/theory"
	"github.com/streampref/streampref/value"
)

var (
	attrA = record.NewAttribute("a")
	attrB = record.NewAttribute("b")
	attrC = record.NewAttribute("c")
)

func rec(a, b, c int64) *record.Buffer {
	return record.NewBuffer().
		Add(attrA, value.NewInteger(a)).
		Add(attrB, value.NewInteger(b)).
		Add(attrC, value.NewInteger(c))
}

// script is the cumulative current list the query sees at each tick,
// mirroring how a source table's current snapshot grows and shrinks.
func script() [][]record.Record {
	r1 := rec(1, 2, 5)
	r2 := rec(1, 3, 9)
	r3 := rec(1, 2, 7)
	return [][]record.Record{
		{r1, r2},
		{r1, r2, r3},
		{r2, r3},
	}
}

func buildRule() prefrule.CPRule {
	cond := formula.New(map[record.Attribute]interval.Interval{
		attrA: interval.Equals(value.NewInteger(1)),
	})
	return prefrule.New(
		cond,
		attrB,
		interval.Equals(value.NewInteger(2)),
		interval.Equals(value.NewInteger(3)),
		[]record.Attribute{attrC},
	)
}

// Query wires stream.Base over a PreferenceOp, so it satisfies
// stream.Operator (and, via BestRecords, httpapi.BestSource) the same way a
// real preference operator over parsed query output would.
type Query struct {
	stream.Base

	topK        *prefop.PreferenceOp
	best        *prefop.PreferenceOp
	ticks       [][]record.Record
	topN        int
	bestOf      []record.Record
	prevOperand []record.Record
}

// New builds the demo query under the given PreferenceOp algorithm and
// theory dominance algorithm (they must agree, per prefop.New's contract).
func New(alg prefop.Algorithm, thAlg theory.Algorithm, topN int) (*Query, error) {
	rules := []prefrule.CPRule{buildRule()}

	th, err := theory.New(rules, thAlg)
	if err != nil {
		return nil, err
	}

	topK, err := prefop.New(alg, th)
	if err != nil {
		return nil, err
	}
	best, err := prefop.New(alg, th)
	if err != nil {
		return nil, err
	}

	return &Query{
		Base:  stream.NewBase([]record.Attribute{attrA, attrB, attrC}, stream.Table),
		topK:  topK,
		best:  best,
		ticks: script(),
		topN:  topN,
	}, nil
}

// Run implements stream.Operator: it is a source (no operands), so it may
// run at any t greater than its last timestamp, per spec.md §5.
func (q *Query) Run(t int64) error {
	if !q.CanRun(t) {
		return nil
	}
	idx := int(t)
	if idx >= len(q.ticks) {
		idx = len(q.ticks) - 1
	}
	current := q.ticks[idx]

	inserted, deleted, err := record.Diff(q.prevOperand, current)
	if err != nil {
		return err
	}
	q.prevOperand = current

	topKOut, err := q.topK.Run(t, current, deleted, inserted, q.topN)
	if err != nil {
		return err
	}
	bestOut, err := q.best.Run(t, current, deleted, inserted, -1)
	if err != nil {
		return err
	}
	q.bestOf = bestOut

	return q.Base.Advance(t, topKOut)
}

// BestRecords implements httpapi.BestSource.
func (q *Query) BestRecords() []record.Record {
	return q.bestOf
}

// TickCount returns how many distinct ticks the script defines.
func (q *Query) TickCount() int {
	return len(q.ticks)
}
