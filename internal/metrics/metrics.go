package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmailsIndexed counts records written to the search index.
	EmailsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onebox_emails_indexed_total",
			Help: "Total number of emails written to the search index",
		},
		[]string{"account", "phase"}, // phase: backfill, live
	)

	// ClassificationResults counts classifier outcomes by label.
	ClassificationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onebox_classification_results_total",
			Help: "Total number of classification outcomes by category",
		},
		[]string{"category"},
	)

	// NotificationFailures counts webhook deliveries that errored.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onebox_notification_failures_total",
			Help: "Total number of failed webhook notifications",
		},
	)

	// HTTPRequestDuration observes API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onebox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
