package prometheus

import (
	"time"

	"tajeer-server/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity operation metrics, labelled by entity and operation
	EntityOperationsCounter prometheus.CounterVec

	// Wizard session metrics
	WizardSessionsGauge    prometheus.GaugeVec
	WizardSubmitsCounter   prometheus.CounterVec
	WizardCancelledCounter prometheus.Counter

	// Attachment flow metrics
	UploadsCounter       prometheus.CounterVec
	StagingSweepsCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

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

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Entity operation metrics
	EntityOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entity_operations_total",
			Help: "Total number of entity operations",
		},
		[]string{"entity", "operation"},
	)

	// Wizard session metrics
	WizardSessionsGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_wizard_sessions",
			Help: "Number of in-flight wizard sessions",
		},
		[]string{"kind"},
	)

	WizardSubmitsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_wizard_submits_total",
			Help: "Total number of wizard submissions",
		},
		[]string{"kind", "result"},
	)

	WizardCancelledCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_wizard_cancelled_total",
			Help: "Total number of cancelled wizard sessions",
		},
	)

	// Attachment flow metrics
	UploadsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_uploads_total",
			Help: "Total number of attachment uploads",
		},
		[]string{"phase", "result"},
	)

	StagingSweepsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_staging_sweeps_total",
			Help: "Total number of staged upload sweep runs",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordEntityOperation increments the counter for an entity operation
func RecordEntityOperation(entity, operation string) {
	EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordUpload increments the counter for an attachment flow phase
func RecordUpload(phase, result string) {
	UploadsCounter.WithLabelValues(phase, result).Inc()
}
