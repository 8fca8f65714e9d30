// Package metrics provides internal Prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the server's Prometheus metrics. A nil *Collector is
// valid and turns every Record method into a no-op, so callers never need
// to guard their instrumentation sites.
type Collector struct {
	// MCP tool surface
	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec

	// Vendor (Jimeng) API traffic
	vendorRequestsTotal   *prometheus.CounterVec
	vendorRequestDuration *prometheus.HistogramVec
	pollsTotal            prometheus.Counter

	// End-to-end generation cycles
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram

	// Task result cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a collector registered on the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, namespace, logger)
}

// NewCollectorWith creates a collector registered on reg, so tests can use
// an isolated registry.
func NewCollectorWith(reg prometheus.Registerer, namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.toolCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)

	c.toolCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "MCP tool call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"tool"},
	)

	c.vendorRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vendor_requests_total",
			Help:      "Total number of requests to the image generation vendor",
		},
		[]string{"action", "outcome"},
	)

	c.vendorRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vendor_request_duration_seconds",
			Help:      "Vendor request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	c.pollsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_polls_total",
			Help:      "Total number of task result polls",
		},
	)

	c.generationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of generation cycles",
		},
		[]string{"status"},
	)

	c.generationDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "End-to-end generation duration in seconds",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 90, 120, 180},
		},
	)

	c.cacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	c.cacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	return c
}

// RecordToolCall records one MCP tool invocation.
func (c *Collector) RecordToolCall(tool, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.toolCallsTotal.WithLabelValues(tool, status).Inc()
	c.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordVendorRequest records one outbound vendor API request.
func (c *Collector) RecordVendorRequest(action, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.vendorRequestsTotal.WithLabelValues(action, outcome).Inc()
	c.vendorRequestDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordPoll records one task result poll.
func (c *Collector) RecordPoll() {
	if c == nil {
		return
	}
	c.pollsTotal.Inc()
}

// RecordGeneration records the outcome of one submit-and-poll cycle.
func (c *Collector) RecordGeneration(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.generationsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		c.generationDuration.Observe(duration.Seconds())
	}
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheType string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheType string) {
	if c == nil {
		return
	}
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}
