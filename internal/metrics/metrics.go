// Package metrics exposes Prometheus instrumentation for the insights engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes
const (
	OutcomeOK          = "ok"
	OutcomeDenied      = "denied"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics holds the Prometheus collectors for the insights engine.
// A nil *Metrics is valid and records nothing.
//
// Metrics:
//   - moodtrack_reports_total{kind,outcome} - report requests by result
//   - moodtrack_narrative_cache_total{kind,result} - narrative cache hits and misses
//   - moodtrack_skipped_records_total{kind} - malformed check-ins skipped
//   - moodtrack_cache_write_failures_total{kind} - background insight writes that failed
//   - moodtrack_store_duration_seconds{op} - event store call latency
type Metrics struct {
	registry *prometheus.Registry

	ReportsTotal       *prometheus.CounterVec
	NarrativeCache     *prometheus.CounterVec
	SkippedRecords     *prometheus.CounterVec
	CacheWriteFailures *prometheus.CounterVec
	StoreDuration      *prometheus.HistogramVec
}

// New creates the collectors on their own registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ReportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtrack_reports_total",
				Help: "Total number of insight reports requested",
			},
			[]string{"kind", "outcome"},
		),
		NarrativeCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtrack_narrative_cache_total",
				Help: "Narrative cache lookups by result",
			},
			[]string{"kind", "result"}, // "hit" or "miss"
		),
		SkippedRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtrack_skipped_records_total",
				Help: "Total number of malformed check-ins skipped",
			},
			[]string{"kind"},
		),
		CacheWriteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtrack_cache_write_failures_total",
				Help: "Total number of insight cache writes that failed",
			},
			[]string{"kind"},
		),
		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moodtrack_store_duration_seconds",
				Help:    "Duration of event store calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
			},
			[]string{"op"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordReport counts one report request
func (m *Metrics) RecordReport(kind, outcome string) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordNarrativeCache counts a narrative cache hit or miss
func (m *Metrics) RecordNarrativeCache(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.NarrativeCache.WithLabelValues(kind, result).Inc()
}

// RecordSkipped counts malformed check-ins dropped from a report
func (m *Metrics) RecordSkipped(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.SkippedRecords.WithLabelValues(kind).Add(float64(n))
}

// RecordCacheWriteFailure counts a failed background insight write
func (m *Metrics) RecordCacheWriteFailure(kind string) {
	if m == nil {
		return
	}
	m.CacheWriteFailures.WithLabelValues(kind).Inc()
}

// ObserveStore records the latency of one store call
func (m *Metrics) ObserveStore(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(op).Observe(d.Seconds())
}
