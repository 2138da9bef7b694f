// Package metrics provides Prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector registers and records the service's Prometheus metrics.
type Collector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// cache
	cacheLookupsTotal  *prometheus.CounterVec
	memoryTierEntries  prometheus.GaugeFunc
	invalidationsTotal *prometheus.CounterVec

	// processing backend
	processingDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a Collector registered on the default registry.
// memoryLen reports the memory tier size for the gauge and may be nil.
func NewCollector(namespace string, memoryLen func() int, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups by operation and result",
		},
		[]string{"operation", "result"},
	)

	c.invalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Total number of cache invalidation requests",
		},
		[]string{"scope"},
	)

	if memoryLen != nil {
		c.memoryTierEntries = promauto.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_memory_entries",
				Help:      "Current number of entries in the memory tier",
			},
			func() float64 { return float64(memoryLen()) },
		)
	}

	c.processingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "Text processing backend duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// ObserveCacheLookup records one cache lookup outcome.
func (c *Collector) ObserveCacheLookup(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookupsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveInvalidation records one invalidation request.
func (c *Collector) ObserveInvalidation(scope string) {
	c.invalidationsTotal.WithLabelValues(scope).Inc()
}

// ObserveProcessing records one backend invocation duration.
func (c *Collector) ObserveProcessing(operation string, duration time.Duration) {
	c.processingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
