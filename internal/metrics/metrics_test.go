package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	r := NewRegistry()
	c := r.Counter("test_requests_total", "Test requests")

	c.Inc()
	c.Add(4)
	assert.Equal(t, int64(5), c.Value())

	// Same name returns the same counter
	again := r.Counter("test_requests_total", "Test requests")
	again.Inc()
	assert.Equal(t, int64(6), c.Value())
}

func TestGauge(t *testing.T) {
	r := NewRegistry()
	g := r.Gauge("test_active", "Active things")

	g.Set(2.5)
	g.Inc()
	g.Dec()
	g.Add(0.5)
	assert.InDelta(t, 3.0, g.Get(), 1e-9)
}

func TestHistogramBuckets(t *testing.T) {
	r := NewRegistry()
	h := r.Histogram("test_latency_seconds", "Latency", []float64{0.1, 1, 10})

	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)
	h.Observe(50)

	out := h.Export()
	assert.Contains(t, out, `test_latency_seconds_bucket{le="0.1"} 1`)
	assert.Contains(t, out, `test_latency_seconds_bucket{le="1"} 2`)
	assert.Contains(t, out, `test_latency_seconds_bucket{le="10"} 3`)
	assert.Contains(t, out, `test_latency_seconds_bucket{le="+Inf"} 4`)
	assert.Contains(t, out, "test_latency_seconds_count 4")
}

func TestExportFormat(t *testing.T) {
	r := NewRegistry()
	r.Counter("skytest_plans_total", "Total plans").Add(3)
	r.Gauge("skytest_streams", "Open streams").Set(1)

	out := r.Export()

	require.Contains(t, out, "# TYPE skytest_plans_total counter")
	assert.Contains(t, out, "skytest_plans_total 3")
	require.Contains(t, out, "# TYPE skytest_streams gauge")
	assert.Contains(t, out, "go_goroutines")
	assert.Contains(t, out, "process_uptime_seconds")

	// Every exposition line is either a comment or name value
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		assert.Len(t, strings.Fields(line), 2, "line %q", line)
	}
}
