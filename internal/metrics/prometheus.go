// Package metrics wraps Prometheus collectors for devops-mcps.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics wraps the collectors for tool and cache activity.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	upstreamDuration *prometheus.HistogramVec
}

// Default histogram buckets in milliseconds. Upstream calls dominate, so
// the buckets stretch well past typical API latencies.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

var promMetrics *PrometheusMetrics

// Init initializes the Prometheus metrics subsystem.
func Init(namespace string) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	pm := &PrometheusMetrics{
		registry: registry,

		toolInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_invocations_total",
				Help:      "Total number of MCP tool invocations",
			},
			[]string{"tool", "status"},
		),

		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_milliseconds",
				Help:      "Tool invocation duration in milliseconds",
				Buckets:   defaultBuckets,
			},
			[]string{"tool"},
		),

		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Cache hits by upstream service",
			},
			[]string{"service"},
		),

		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Cache misses by upstream service",
			},
			[]string{"service"},
		),

		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_milliseconds",
				Help:      "Upstream API request duration in milliseconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(
		pm.toolInvocations,
		pm.toolDuration,
		pm.cacheHits,
		pm.cacheMisses,
		pm.upstreamDuration,
	)

	promMetrics = pm
}

// Handler returns the HTTP handler serving the metrics endpoint, or nil
// when metrics are not initialized.
func Handler() http.Handler {
	if promMetrics == nil {
		return nil
	}
	return promhttp.HandlerFor(promMetrics.registry, promhttp.HandlerOpts{})
}

// RecordToolInvocation records one tool call with its outcome and duration.
func RecordToolInvocation(tool, status string, elapsed time.Duration) {
	if promMetrics == nil {
		return
	}
	promMetrics.toolInvocations.WithLabelValues(tool, status).Inc()
	promMetrics.toolDuration.WithLabelValues(tool).Observe(float64(elapsed.Milliseconds()))
}

// RecordCacheHit counts a memoization hit for the given service.
func RecordCacheHit(service string) {
	if promMetrics == nil {
		return
	}
	promMetrics.cacheHits.WithLabelValues(service).Inc()
}

// RecordCacheMiss counts a memoization miss for the given service.
func RecordCacheMiss(service string) {
	if promMetrics == nil {
		return
	}
	promMetrics.cacheMisses.WithLabelValues(service).Inc()
}

// RecordUpstreamRequest records the latency of one upstream API call.
func RecordUpstreamRequest(service string, elapsed time.Duration) {
	if promMetrics == nil {
		return
	}
	promMetrics.upstreamDuration.WithLabelValues(service).Observe(float64(elapsed.Milliseconds()))
}
