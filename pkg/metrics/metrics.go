// Package metrics exposes Prometheus metrics for the osmprint pipeline:
// external service traffic, conversion output, label deduplication and
// document export timings.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Service name for metrics
	ServiceName = "osmprint"
)

var (
	// External service metrics
	ExternalServiceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmprint_external_service_requests_total",
			Help: "Total number of external service requests",
		},
		[]string{"service", "operation", "status"},
	)

	ExternalServiceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmprint_external_service_request_duration_seconds",
			Help:    "External service request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 180.0},
		},
		[]string{"service", "operation"},
	)

	// Rate limiting metrics
	RateLimitWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmprint_rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for rate limits",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmprint_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmprint_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Conversion metrics
	FeaturesConvertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmprint_features_converted_total",
			Help: "Total number of OSM elements converted into features",
		},
		[]string{"category", "kind"},
	)

	ElementsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmprint_elements_skipped_total",
			Help: "Total number of OSM elements skipped as unconvertible",
		},
		[]string{"category", "reason"},
	)

	// Label metrics
	LabelsEmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "osmprint_labels_emitted_total",
			Help: "Total number of label texts emitted into documents",
		},
	)

	LabelsDedupedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "osmprint_labels_deduped_total",
			Help: "Total number of labels suppressed by the per-document registry",
		},
	)

	// Export metrics
	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmprint_export_duration_seconds",
			Help:    "Document export duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"paper_size"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmprint_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordExternalServiceRequest records an external service request
func RecordExternalServiceRequest(service, operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ExternalServiceRequestsTotal.WithLabelValues(service, operation, status).Inc()
	if duration > 0 {
		ExternalServiceRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
	}
}

// RecordRateLimitWait records time spent waiting on a rate limiter
func RecordRateLimitWait(service string, waitTime time.Duration) {
	RateLimitWaitTime.WithLabelValues(service).Observe(waitTime.Seconds())
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordFeatureConverted records one converted feature by geometry kind
func RecordFeatureConverted(category, kind string) {
	FeaturesConvertedTotal.WithLabelValues(category, kind).Inc()
}

// RecordElementSkipped records an unconvertible element
func RecordElementSkipped(category, reason string) {
	ElementsSkippedTotal.WithLabelValues(category, reason).Inc()
}

// RecordExport records a completed document export
func RecordExport(paperSize string, duration time.Duration) {
	ExportDuration.WithLabelValues(paperSize).Observe(duration.Seconds())
}

// RecordError records an error by component
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
