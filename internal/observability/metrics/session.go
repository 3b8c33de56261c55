package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics contains Prometheus metrics for recording, inspection and
// export sessions. All methods are safe on a nil receiver.
type SessionMetrics struct {
	registry *prometheus.Registry

	// Generic operation metrics
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec

	// Timeline metrics
	eventsRecorded   *prometheus.CounterVec
	selectionToggles *prometheus.CounterVec
	selectedEvents   prometheus.Gauge

	// Export metrics
	segmentsExported prometheus.Counter
	exportBytes      prometheus.Counter

	// Audio metrics
	bufferSeconds prometheus.Gauge
	captureLevel  prometheus.Gauge
}

var _ Recorder = (*SessionMetrics)(nil)

// NewSessionMetrics creates and registers new session metrics.
func NewSessionMetrics(registry *prometheus.Registry) (*SessionMetrics, error) {
	m := &SessionMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SessionMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyclip_operations_total",
			Help: "Total number of session operations",
		},
		[]string{"operation", "status"},
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyclip_operation_duration_seconds",
			Help:    "Time taken by session operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount14), // 100us to ~1.6s
		},
		[]string{"operation"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyclip_errors_total",
			Help: "Total number of failed operations by error category",
		},
		[]string{"operation", "error_type"},
	)

	m.eventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyclip_events_recorded_total",
			Help: "Total number of key events appended to the timeline",
		},
		[]string{"key_group"},
	)

	m.selectionToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyclip_selection_toggles_total",
			Help: "Total number of selection toggles",
		},
		[]string{"result"}, // result: selected, deselected
	)

	m.selectedEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "keyclip_selected_events",
		Help: "Number of currently selected events",
	})

	m.segmentsExported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keyclip_segments_exported_total",
		Help: "Total number of exported WAV segments",
	})

	m.exportBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keyclip_export_bytes_total",
		Help: "Total bytes of exported WAV data",
	})

	m.bufferSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "keyclip_buffer_duration_seconds",
		Help: "Duration of the current sample buffer",
	})

	m.captureLevel = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "keyclip_capture_level",
		Help: "Most recent capture input level on a 0-100 scale",
	})
}

func (m *SessionMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.errorsTotal,
		m.eventsRecorded,
		m.selectionToggles,
		m.selectedEvents,
		m.segmentsExported,
		m.exportBytes,
		m.bufferSeconds,
		m.captureLevel,
	}
}

// Describe implements prometheus.Collector.
func (m *SessionMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *SessionMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordOperation implements Recorder.
func (m *SessionMetrics) RecordOperation(operation, status string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *SessionMetrics) RecordDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *SessionMetrics) RecordError(operation, errorType string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
	m.operationsTotal.WithLabelValues(operation, StatusError).Inc()
}

// RecordEvent counts a key event appended to the timeline.
func (m *SessionMetrics) RecordEvent(group string) {
	if m == nil {
		return
	}
	m.eventsRecorded.WithLabelValues(group).Inc()
}

// RecordToggle counts a selection toggle and updates the selected gauge.
func (m *SessionMetrics) RecordToggle(selected bool, selectedCount int) {
	if m == nil {
		return
	}
	result := "deselected"
	if selected {
		result = "selected"
	}
	m.selectionToggles.WithLabelValues(result).Inc()
	m.selectedEvents.Set(float64(selectedCount))
}

// SetSelected sets the selected events gauge.
func (m *SessionMetrics) SetSelected(count int) {
	if m == nil {
		return
	}
	m.selectedEvents.Set(float64(count))
}

// RecordExport counts exported segments and their encoded size.
func (m *SessionMetrics) RecordExport(segments, bytes int) {
	if m == nil {
		return
	}
	m.segmentsExported.Add(float64(segments))
	m.exportBytes.Add(float64(bytes))
}

// SetBufferDuration sets the current buffer duration gauge.
func (m *SessionMetrics) SetBufferDuration(seconds float64) {
	if m == nil {
		return
	}
	m.bufferSeconds.Set(seconds)
}

// SetCaptureLevel sets the capture level gauge.
func (m *SessionMetrics) SetCaptureLevel(level int) {
	if m == nil {
		return
	}
	m.captureLevel.Set(float64(level))
}
