// Package metric provides Prometheus metrics for GhostTape.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter is a cumulative metric that only increases.
type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

// Histogram samples observations and counts them in buckets.
type Histogram interface {
	Observe(float64)
}

// Load failure reason labels.
const (
	ReasonCorrupt           = "corrupt"
	ReasonUnsupportedSchema = "unsupported_schema"
	ReasonIO                = "io"
)

// Registry holds all daemon metrics.
type Registry struct {
	// Load metrics
	TraceLoads   Counter
	LoadFailures CounterVec // labeled by reason

	// Index metrics
	TracesIndexed     Gauge
	IndexScanDuration Histogram

	prom *prometheus.Registry
}

// promCounterVec adapts prometheus.CounterVec to the CounterVec interface.
type promCounterVec struct {
	vec *prometheus.CounterVec
}

func (v promCounterVec) WithLabelValues(lvs ...string) Counter {
	return v.vec.WithLabelValues(lvs...)
}

// NewRegistry creates a new metrics registry with all application
// metrics registered on a dedicated Prometheus registry.
func NewRegistry() *Registry {
	prom := prometheus.NewRegistry()

	traceLoads := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ghosttape",
		Name:      "trace_loads_total",
		Help:      "Number of trace files parsed successfully during indexing.",
	})
	loadFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghosttape",
		Name:      "trace_load_failures_total",
		Help:      "Number of trace load failures by reason.",
	}, []string{"reason"})
	tracesIndexed := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ghosttape",
		Name:      "traces_indexed",
		Help:      "Number of trace files currently in the ghost index.",
	})
	indexScanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ghosttape",
		Name:      "index_scan_duration_seconds",
		Help:      "Duration of full ghost directory scans.",
		Buckets:   prometheus.DefBuckets,
	})

	prom.MustRegister(
		traceLoads,
		loadFailures,
		tracesIndexed,
		indexScanDuration,
	)

	return &Registry{
		TraceLoads:        traceLoads,
		LoadFailures:      promCounterVec{vec: loadFailures},
		TracesIndexed:     tracesIndexed,
		IndexScanDuration: indexScanDuration,

		prom: prom,
	}
}

// MustRegister registers additional collectors on the underlying
// Prometheus registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.prom.MustRegister(cs...)
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{})
}
