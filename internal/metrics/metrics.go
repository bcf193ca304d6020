// Package metrics exposes per-tick engine counters as Prometheus
// collectors, grounded on goProbe's pkg/capture/metrics.go and
// pkg/goprobe/writeout/metrics.go: package-level collectors registered
// once in init, updated by plain setter/adder methods, namespaced under a
// single service name and per-area subsystem.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const serviceName = "streampref"

const (
	tickSubsystem      = "tick"
	hierarchySubsystem = "hierarchy"
	seqtreeSubsystem   = "seqtree"
)

var recordsIn = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: tickSubsystem,
	Name:      "records_in_total",
	Help:      "Number of input records observed by a query's preference operator, aggregated across ticks.",
}, []string{"query"})

var recordsOut = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: tickSubsystem,
	Name:      "records_out_total",
	Help:      "Number of output records emitted by a query's preference operator, aggregated across ticks.",
}, []string{"query"})

var comparisonsEvaluated = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: tickSubsystem,
	Name:      "comparisons_evaluated_total",
	Help:      "Number of dominance comparisons evaluated while computing a tick's result.",
}, []string{"query"})

var tickDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: serviceName,
	Subsystem: tickSubsystem,
	Name:      "duration_seconds",
	Help:      "Wall-clock time spent running a query's operator tree for one tick.",
	Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"query"})

var hierarchySize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: serviceName,
	Subsystem: hierarchySubsystem,
	Name:      "size",
	Help:      "Current number of distinct record ids held by a query's hierarchy index.",
}, []string{"query"})

var seqtreeNodes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: serviceName,
	Subsystem: seqtreeSubsystem,
	Name:      "nodes",
	Help:      "Current number of nodes in a query's SeqTree index.",
}, []string{"query"})

func init() {
	prometheus.MustRegister(
		recordsIn,
		recordsOut,
		comparisonsEvaluated,
		tickDuration,
		hierarchySize,
		seqtreeNodes,
	)
}

// TickReport summarizes a single query's single-tick outcome, passed to
// Observe by the caller driving the tick loop.
type TickReport struct {
	Query       string
	In          int
	Out         int
	Comparisons int
	SecondsTook float64
	HierarchySize int
	SeqTreeNodes  int
}

// Observe records one tick's counters/gauges for rep.Query.
func Observe(rep TickReport) {
	recordsIn.WithLabelValues(rep.Query).Add(float64(rep.In))
	recordsOut.WithLabelValues(rep.Query).Add(float64(rep.Out))
	comparisonsEvaluated.WithLabelValues(rep.Query).Add(float64(rep.Comparisons))
	tickDuration.WithLabelValues(rep.Query).Observe(rep.SecondsTook)
	if rep.HierarchySize > 0 {
		hierarchySize.WithLabelValues(rep.Query).Set(float64(rep.HierarchySize))
	}
	if rep.SeqTreeNodes > 0 {
		seqtreeNodes.WithLabelValues(rep.Query).Set(float64(rep.SeqTreeNodes))
	}
}
