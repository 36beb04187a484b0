package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.ScanRunsTotal.WithLabelValues("done").Inc()
	m.ProviderOutcomes.WithLabelValues("goplus", "absent", "not_found").Inc()
	m.WSClients.Set(3)

	assert.InDelta(t, 1.0, value(t, m.ScanRunsTotal.WithLabelValues("done")), 1e-9)
	assert.InDelta(t, 3.0, value(t, m.WSClients), 1e-9)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_scan_runs_total")
	assert.Contains(t, names, "test_provider_outcomes_total")
}

func TestRecordHelpers(t *testing.T) {
	before := value(t, DefaultMetrics.LastScanTokenCount)
	RecordScan("failed", 1.5, 99, 0)
	assert.InDelta(t, before, value(t, DefaultMetrics.LastScanTokenCount), 1e-9)

	RecordScan("done", 2, 7, 1700000000)
	assert.InDelta(t, 7.0, value(t, DefaultMetrics.LastScanTokenCount), 1e-9)
	assert.InDelta(t, 1700000000.0, value(t, DefaultMetrics.LastSuccessfulScan), 1e-9)

	c := DefaultMetrics.HTTPRetries.WithLabelValues("unit")
	start := value(t, c)
	RecordHTTPRetry("unit")
	assert.InDelta(t, start+1, value(t, c), 1e-9)

	RecordHTTPAttempt("unit", 0.1, errors.New("boom"))
	RecordCacheLookup("hit")
	SetWSClients(2)
	assert.InDelta(t, 2.0, value(t, DefaultMetrics.WSClients), 1e-9)
}

// value reads the current value of a gauge or counter.
func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	case out.Counter != nil:
		return out.Counter.GetValue()
	default:
		t.Fatalf("metric %s is neither gauge nor counter", m.Desc())
		return 0
	}
}
