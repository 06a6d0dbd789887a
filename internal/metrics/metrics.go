// Package metrics provides Prometheus-compatible counters, gauges, and
// histograms for axd's request surface, adapted from the teacher's
// general-purpose metrics registry down to the handful of series a
// single-target automation agent actually needs.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Labels are attached to a metric at registration time (e.g. method/path),
// not per-observation — axd's cardinality is small and fixed (one route
// table), so there's no need for the teacher's per-call label maps.
type Labels map[string]string

func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(l))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, l[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Counter is a monotonically increasing value.
type Counter struct {
	name, help string
	labels     Labels
	value      atomic.Uint64
}

func (c *Counter) Inc() { c.value.Add(1) }

func (c *Counter) Add(v uint64) { c.value.Add(v) }

func (c *Counter) Value() uint64 { return c.value.Load() }

// Gauge is a value that can move in either direction.
type Gauge struct {
	name, help string
	labels     Labels
	value      atomic.Int64
}

func (g *Gauge) Set(v int64) { g.value.Store(v) }

func (g *Gauge) Inc() { g.value.Add(1) }

func (g *Gauge) Dec() { g.value.Add(-1) }

func (g *Gauge) Value() int64 { return g.value.Load() }

// DurationBuckets are the histogram boundaries (seconds) axd's request
// latencies are bucketed into; input synthesis and accessibility-tree walks
// are fast, so the buckets skew lower than the teacher's wal/VDF-oriented
// defaults.
var DurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Histogram tracks a distribution of observed values against fixed buckets.
type Histogram struct {
	name, help string
	labels     Labels
	buckets    []float64

	mu     sync.Mutex
	counts []uint64
	sum    float64
	count  uint64
}

func newHistogram(name, help string, labels Labels, buckets []float64) *Histogram {
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &Histogram{name: name, help: help, labels: labels, buckets: b, counts: make([]uint64, len(b)+1)}
}

func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	idx := sort.SearchFloat64s(h.buckets, v)
	for i := idx; i < len(h.counts); i++ {
		h.counts[i]++
	}
}

func (h *Histogram) ObserveDuration(d time.Duration) { h.Observe(d.Seconds()) }

func (h *Histogram) snapshot() (sum float64, count uint64, counts []uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum, h.count, append([]uint64(nil), h.counts...)
}

// Registry holds every metric axd exposes. It is concurrency-safe: Inc/Set/
// Observe calls race freely with WritePrometheus.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	order      []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   map[string]*Counter{},
		gauges:     map[string]*Gauge{},
		histograms: map[string]*Histogram{},
	}
}

func (r *Registry) RegisterCounter(name, help string, labels Labels) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Counter{name: name, help: help, labels: labels}
	r.counters[name] = c
	r.order = append(r.order, name)
	return c
}

func (r *Registry) RegisterGauge(name, help string, labels Labels) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &Gauge{name: name, help: help, labels: labels}
	r.gauges[name] = g
	r.order = append(r.order, name)
	return g
}

func (r *Registry) RegisterHistogram(name, help string, labels Labels, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := newHistogram(name, help, labels, buckets)
	r.histograms[name] = h
	r.order = append(r.order, name)
	return h
}

// WritePrometheus renders every registered metric in Prometheus text
// exposition format.
func (r *Registry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if c, ok := r.counters[name]; ok {
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s%s %d\n", name, c.help, name, name, c.labels, c.Value())
		}
		if g, ok := r.gauges[name]; ok {
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s%s %d\n", name, g.help, name, name, g.labels, g.Value())
		}
		if h, ok := r.histograms[name]; ok {
			sum, count, counts := h.snapshot()
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", name, h.help, name)
			for i, bound := range h.buckets {
				fmt.Fprintf(w, "%s_bucket{le=\"%g\"} %d\n", name, bound, counts[i])
			}
			fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", name, counts[len(counts)-1])
			fmt.Fprintf(w, "%s_sum %g\n%s_count %d\n", name, sum, name, count)
		}
	}
	return nil
}

// Snapshot returns a JSON-friendly map for embedding in /status.
func (r *Registry) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]any{}
	for name, c := range r.counters {
		out[name] = c.Value()
	}
	for name, g := range r.gauges {
		out[name] = g.Value()
	}
	for name, h := range r.histograms {
		sum, count, _ := h.snapshot()
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		out[name] = map[string]any{"count": count, "sum": sum, "mean": mean}
	}
	return out
}

// RequestMetrics are the HTTP-facing series axd's middleware records.
type RequestMetrics struct {
	Registry        *Registry
	RequestsTotal   *Counter
	ErrorsTotal     *Counter
	RequestDuration *Histogram
	TargetAlive     *Gauge
}

// NewRequestMetrics registers the request-path series used by
// internal/dispatch's middleware and the /status and /metrics handlers.
func NewRequestMetrics() *RequestMetrics {
	reg := NewRegistry()
	return &RequestMetrics{
		Registry:        reg,
		RequestsTotal:   reg.RegisterCounter("axd_http_requests_total", "Total HTTP requests served", nil),
		ErrorsTotal:     reg.RegisterCounter("axd_http_errors_total", "Total HTTP requests answered with 4xx/5xx", nil),
		RequestDuration: reg.RegisterHistogram("axd_http_request_duration_seconds", "HTTP request latency", nil, DurationBuckets),
		TargetAlive:     reg.RegisterGauge("axd_target_process_alive", "1 if the bound target process is alive, 0 otherwise", nil),
	}
}
