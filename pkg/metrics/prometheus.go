// Package metrics provides Prometheus metrics for the wardsight monitoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the wardsight service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingestion pipeline metrics
	readingsProcessed *prometheus.CounterVec
	parseFailures     prometheus.Counter
	alarmsRaised      *prometheus.CounterVec

	// Risk scoring metrics
	scoringLatency     prometheus.Histogram
	scoringErrors      prometheus.Counter
	scoringUnavailable prometheus.Counter

	// Broadcast metrics
	broadcastTicks        prometheus.Counter
	broadcastLatency      prometheus.Histogram
	broadcastPayloadBytes prometheus.Gauge
	connectedViewers      prometheus.Gauge
	viewerSendFailures    prometheus.Counter

	// Persistence pipeline metrics
	persistQueueDepth    prometheus.Gauge
	persistQueueCapacity prometheus.Gauge
	persistWrites        prometheus.Counter
	persistErrors        prometheus.Counter
	persistDropped       prometheus.Counter

	// Directory metrics
	monitoredPatients prometheus.Gauge
	heldDevices       prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wardsight",
		subsystem:        "monitor",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.readingsProcessed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "readings_processed_total",
			Help:      "Total number of device readings processed, by terminal status",
		},
		[]string{"status"},
	)

	m.parseFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vital_parse_failures_total",
		Help:      "Total number of raw vital values that could not be parsed to a number",
	})

	m.alarmsRaised = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "alarms_raised_total",
			Help:      "Total number of CRITICAL alarm events emitted, by vital",
		},
		[]string{"vital"},
	)

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of risk model scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of risk model prediction failures",
	})

	m.scoringUnavailable = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_unavailable_total",
		Help:      "Total number of evaluations performed without an available risk model",
	})

	m.broadcastTicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_ticks_total",
		Help:      "Total number of broadcast ticks emitted",
	})

	m.broadcastLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_latency_milliseconds",
		Help:      "Histogram of per-tick assemble+serialize+fan-out latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.broadcastPayloadBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_payload_bytes",
		Help:      "Size in bytes of the last broadcast payload",
	})

	m.connectedViewers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connected_viewers",
		Help:      "Current number of connected viewer websockets",
	})

	m.viewerSendFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "viewer_send_failures_total",
		Help:      "Total number of viewer sends dropped due to slow or dead connections",
	})

	m.persistQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_depth",
		Help:      "Current depth of the record-store write queue",
	})

	m.persistQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_capacity",
		Help:      "Maximum capacity of the record-store write queue",
	})

	m.persistWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_writes_total",
		Help:      "Total number of record-store writes completed",
	})

	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Total number of record-store write failures (swallowed, at-most-once)",
	})

	m.persistDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_dropped_total",
		Help:      "Total number of record-store writes dropped on a full queue",
	})

	m.monitoredPatients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "monitored_patients",
		Help:      "Current number of patients with an active device assignment",
	})

	m.heldDevices = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "held_devices",
		Help:      "Current number of unassigned devices in the holding area",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordReadingProcessed increments the readings counter for a terminal status.
func RecordReadingProcessed(status string) {
	globalManager.readingsProcessed.WithLabelValues(status).Inc()
}

// RecordParseFailure increments the vital parse failure counter.
func RecordParseFailure() {
	globalManager.parseFailures.Inc()
}

// RecordAlarmRaised increments the alarm counter for a vital.
func RecordAlarmRaised(vital string) {
	globalManager.alarmsRaised.WithLabelValues(vital).Inc()
}

// RecordScoringLatency records risk scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordScoringUnavailable increments the model-unavailable counter.
func RecordScoringUnavailable() {
	globalManager.scoringUnavailable.Inc()
}

// RecordBroadcastTick increments the broadcast tick counter.
func RecordBroadcastTick() {
	globalManager.broadcastTicks.Inc()
}

// RecordBroadcastLatency records per-tick broadcast latency in milliseconds.
func RecordBroadcastLatency(latencyMs float64) {
	globalManager.broadcastLatency.Observe(latencyMs)
}

// UpdateBroadcastPayloadBytes sets the size of the last broadcast payload.
func UpdateBroadcastPayloadBytes(size int) {
	globalManager.broadcastPayloadBytes.Set(float64(size))
}

// UpdateConnectedViewers sets the current viewer connection count.
func UpdateConnectedViewers(count int) {
	globalManager.connectedViewers.Set(float64(count))
}

// RecordViewerSendFailure increments the dropped viewer send counter.
func RecordViewerSendFailure() {
	globalManager.viewerSendFailures.Inc()
}

// UpdatePersistQueueDepth sets the current persist queue depth.
func UpdatePersistQueueDepth(depth int) {
	globalManager.persistQueueDepth.Set(float64(depth))
}

// UpdatePersistQueueCapacity sets the persist queue capacity.
func UpdatePersistQueueCapacity(capacity int) {
	globalManager.persistQueueCapacity.Set(float64(capacity))
}

// RecordPersistWrite increments the completed writes counter.
func RecordPersistWrite() {
	globalManager.persistWrites.Inc()
}

// RecordPersistError increments the failed writes counter.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// RecordPersistDropped increments the dropped writes counter.
func RecordPersistDropped() {
	globalManager.persistDropped.Inc()
}

// UpdateMonitoredPatients sets the monitored patient count.
func UpdateMonitoredPatients(count int) {
	globalManager.monitoredPatients.Set(float64(count))
}

// UpdateHeldDevices sets the held device count.
func UpdateHeldDevices(count int) {
	globalManager.heldDevices.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
