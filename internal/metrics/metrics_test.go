package metrics

import (
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	reg := NewRegistry()
	c := reg.RegisterCounter("reqs_total", "total requests", nil)
	g := reg.RegisterGauge("alive", "liveness", nil)

	c.Inc()
	c.Add(2)
	g.Set(1)
	g.Dec()

	if c.Value() != 3 {
		t.Errorf("Counter.Value() = %d, want 3", c.Value())
	}
	if g.Value() != 0 {
		t.Errorf("Gauge.Value() = %d, want 0", g.Value())
	}
}

func TestHistogramBucketsAccumulate(t *testing.T) {
	reg := NewRegistry()
	h := reg.RegisterHistogram("latency_seconds", "request latency", nil, []float64{0.1, 0.5, 1})

	h.Observe(0.05)
	h.Observe(0.3)
	h.Observe(2.0)

	sum, count, counts := h.snapshot()
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if sum != 0.05+0.3+2.0 {
		t.Errorf("sum = %v, want %v", sum, 0.05+0.3+2.0)
	}
	// buckets: [<=0.1, <=0.5, <=1, +Inf]
	if counts[0] != 1 {
		t.Errorf("le=0.1 bucket = %d, want 1 (only 0.05 qualifies)", counts[0])
	}
	if counts[1] != 2 {
		t.Errorf("le=0.5 bucket = %d, want 2 (0.05 and 0.3 qualify)", counts[1])
	}
	if counts[3] != 3 {
		t.Errorf("+Inf bucket = %d, want 3 (all observations qualify)", counts[3])
	}
}

func TestWritePrometheusRendersRegisteredSeries(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCounter("axd_http_requests_total", "total requests", nil).Add(5)
	reg.RegisterGauge("axd_target_process_alive", "liveness", nil).Set(1)
	reg.RegisterHistogram("axd_http_request_duration_seconds", "latency", nil, DurationBuckets).Observe(0.02)

	var sb strings.Builder
	if err := reg.WritePrometheus(&sb); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"# TYPE axd_http_requests_total counter",
		"axd_http_requests_total 5",
		"# TYPE axd_target_process_alive gauge",
		"axd_target_process_alive 1",
		"# TYPE axd_http_request_duration_seconds histogram",
		"axd_http_request_duration_seconds_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WritePrometheus output missing %q:\n%s", want, out)
		}
	}
}

func TestSnapshotIncludesEveryMetricKind(t *testing.T) {
	m := NewRequestMetrics()
	m.RequestsTotal.Inc()
	m.ErrorsTotal.Inc()
	m.RequestDuration.ObserveDuration(0)
	m.TargetAlive.Set(1)

	snap := m.Registry.Snapshot()
	if snap["axd_http_requests_total"] != uint64(1) {
		t.Errorf("snapshot requests_total = %v, want 1", snap["axd_http_requests_total"])
	}
	if snap["axd_target_process_alive"] != int64(1) {
		t.Errorf("snapshot target_process_alive = %v, want 1", snap["axd_target_process_alive"])
	}
	hist, ok := snap["axd_http_request_duration_seconds"].(map[string]any)
	if !ok {
		t.Fatalf("snapshot duration histogram has wrong shape: %#v", snap["axd_http_request_duration_seconds"])
	}
	if hist["count"] != uint64(1) {
		t.Errorf("histogram snapshot count = %v, want 1", hist["count"])
	}
}
