package metrics_test

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/streampref/streampref/internal/metrics"
)

func TestObserveIncrementsCounters(t *testing.T) {
	metrics.Observe(metrics.TickReport{
		Query:         "q1",
		In:            5,
		Out:           2,
		Comparisons:   7,
		SecondsTook:   0.01,
		HierarchySize: 3,
	})

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range mfs {
		if mf.GetName() != "streampref_tick_records_in_total" {
			continue
		}
		found = true
		var total float64
		for _, m := range mf.GetMetric() {
			if labelValue(m, "query") == "q1" {
				total = m.GetCounter().GetValue()
			}
		}
		require.GreaterOrEqual(t, total, float64(5))
	}
	require.True(t, found, "expected streampref_tick_records_in_total metric family")
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
