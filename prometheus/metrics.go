package prometheus

import (
	"time"

	"tutor-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Course lifecycle metrics
	CourseOperationsCounter prometheus.CounterVec

	// Billing metrics
	BillingOperationsCounter prometheus.CounterVec
	DocumentsSentCounter     prometheus.CounterVec
	DocumentRenderDuration   prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	// Use metric prefix from configuration
	prefix := cfg.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Course lifecycle metrics
	CourseOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_course_operations_total",
			Help: "Total number of course operations",
		},
		[]string{"operation"},
	)

	// Billing metrics: invoice and quote operations
	BillingOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_billing_operations_total",
			Help: "Total number of billing operations",
		},
		[]string{"document", "operation"},
	)

	DocumentsSentCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_documents_sent_total",
			Help: "Total number of billing documents emailed to clients",
		},
		[]string{"document"},
	)

	DocumentRenderDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_document_render_duration_seconds",
			Help:    "Duration of PDF document rendering in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"document"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCourseOperation increments the counter for course operations
func RecordCourseOperation(operation string) {
	CourseOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordBillingOperation increments the counter for invoice/quote operations
func RecordBillingOperation(document, operation string) {
	BillingOperationsCounter.WithLabelValues(document, operation).Inc()
}

// RecordDocumentSent increments the counter for emailed documents
func RecordDocumentSent(document string) {
	DocumentsSentCounter.WithLabelValues(document).Inc()
}

// RecordAuthError increments the counter for authentication errors
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// TrackDocumentRender returns a function that records PDF render duration
func TrackDocumentRender(document string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DocumentRenderDuration.WithLabelValues(document).Observe(duration)
	}
}
