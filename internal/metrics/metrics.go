// Package metrics exposes Prometheus instrumentation for the journal.
//
// A nil *Metrics is valid and records nothing, so services can be built
// without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tradejournal"

// Metrics holds every collector registered by the application.
type Metrics struct {
	Registry *prometheus.Registry

	QueryDuration  *prometheus.HistogramVec
	QueryErrors    *prometheus.CounterVec
	Rollups        *prometheus.CounterVec
	RollupDuration prometheus.Histogram
	TradeMutations *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "query_duration_seconds",
			Help:      "Latency of analytics aggregations by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		QueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "query_errors_total",
			Help:      "Failed analytics aggregations by operation.",
		}, []string{"operation"}),
		Rollups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "rollups_total",
			Help:      "Strategy snapshot recomputes by result.",
		}, []string{"result"}),
		RollupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "rollup_duration_seconds",
			Help:      "Latency of strategy snapshot recomputes.",
			Buckets:   prometheus.DefBuckets,
		}),
		TradeMutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "mutations_total",
			Help:      "Trade mutations by action.",
		}, []string{"action"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "cache_lookups_total",
			Help:      "Strategy list cache lookups by result.",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveQuery records the latency and outcome of an aggregation.
func (m *Metrics) ObserveQuery(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.QueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveRollup records a strategy snapshot recompute.
func (m *Metrics) ObserveRollup(start time.Time, err error) {
	if m == nil {
		return
	}
	m.RollupDuration.Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Rollups.WithLabelValues(result).Inc()
}

// TradeMutation counts a trade create, update or delete.
func (m *Metrics) TradeMutation(action string) {
	if m == nil {
		return
	}
	m.TradeMutations.WithLabelValues(action).Inc()
}

// CacheLookup counts a strategy list cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(route, method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
