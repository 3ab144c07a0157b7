// Package metrics provides Prometheus metrics for the facecam client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by request counters.
const (
	OutcomeOK             = "ok"
	OutcomeRemoteError    = "remote_error"
	OutcomeTransportError = "transport_error"
	OutcomeInvalid        = "invalid"
)

// Manager manages all Prometheus metrics for the facecam client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Recognition loop
	recognitionRequests *prometheus.CounterVec
	recognitionLatency  prometheus.Histogram
	schedulerDecisions  *prometheus.CounterVec
	cyclePanics         prometheus.Counter
	facesInFrame        prometheus.Gauge
	facesLabeled        *prometheus.CounterVec

	// Camera
	cameraActive   prometheus.Gauge
	framesCaptured prometheus.Counter

	// Registry
	knownFaces   prometheus.Gauge
	registryOps  *prometheus.CounterVec
	uploadsBytes prometheus.Histogram

	// HTTP preview server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "facecam",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.recognitionRequests = auto.NewCounterVec(
		m.counterOpts("recognition_requests_total", "Recognition requests by outcome"),
		[]string{"outcome"},
	)
	m.recognitionLatency = auto.NewHistogram(
		m.histogramOpts("recognition_latency_milliseconds", "Round trip latency of recognition requests", m.histogramBuckets),
	)
	m.schedulerDecisions = auto.NewCounterVec(
		m.counterOpts("scheduler_decisions_total", "Refresh ticks by scheduler decision"),
		[]string{"decision"},
	)
	m.cyclePanics = auto.NewCounter(
		m.counterOpts("cycle_panics_total", "Recognition cycles that panicked and were recovered"),
	)
	m.facesInFrame = auto.NewGauge(
		m.gaugeOpts("faces_in_frame", "Faces in the most recent recognition result"),
	)
	m.facesLabeled = auto.NewCounterVec(
		m.counterOpts("faces_labeled_total", "Faces drawn on the overlay by kind"),
		[]string{"kind"},
	)

	m.cameraActive = auto.NewGauge(
		m.gaugeOpts("camera_active", "1 while a camera stream is open"),
	)
	m.framesCaptured = auto.NewCounter(
		m.counterOpts("frames_captured_total", "Frames drawn onto the render surface"),
	)

	m.knownFaces = auto.NewGauge(
		m.gaugeOpts("known_faces", "Faces in the registry as of the last listing"),
	)
	m.registryOps = auto.NewCounterVec(
		m.counterOpts("registry_operations_total", "Registry operations by kind and outcome"),
		[]string{"op", "outcome"},
	)
	m.uploadsBytes = auto.NewHistogram(
		m.histogramOpts("upload_size_bytes", "Size of accepted face uploads",
			prometheus.ExponentialBuckets(1024, 4, 8)),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
}

// RecordRecognition records one recognition request and its latency.
func (m *Manager) RecordRecognition(outcome string, latencyMs float64) {
	m.recognitionRequests.WithLabelValues(outcome).Inc()
	m.recognitionLatency.Observe(latencyMs)
}

// RecordSchedulerDecision counts a refresh tick by decision.
func (m *Manager) RecordSchedulerDecision(decision string) {
	m.schedulerDecisions.WithLabelValues(decision).Inc()
}

// RecordCyclePanic counts a recovered cycle panic.
func (m *Manager) RecordCyclePanic() { m.cyclePanics.Inc() }

// UpdateFacesInFrame sets the face count of the latest result.
func (m *Manager) UpdateFacesInFrame(n int) { m.facesInFrame.Set(float64(n)) }

// RecordFaceLabeled counts one drawn face.
func (m *Manager) RecordFaceLabeled(known bool) {
	kind := "unknown"
	if known {
		kind = "known"
	}
	m.facesLabeled.WithLabelValues(kind).Inc()
}

// UpdateCameraActive flips the camera gauge.
func (m *Manager) UpdateCameraActive(active bool) {
	if active {
		m.cameraActive.Set(1)
		return
	}
	m.cameraActive.Set(0)
}

// RecordFrameCaptured counts a drawn camera frame.
func (m *Manager) RecordFrameCaptured() { m.framesCaptured.Inc() }

// UpdateKnownFaces sets the registry size.
func (m *Manager) UpdateKnownFaces(n int) { m.knownFaces.Set(float64(n)) }

// RecordRegistryOp counts a registry call.
func (m *Manager) RecordRegistryOp(op, outcome string) {
	m.registryOps.WithLabelValues(op, outcome).Inc()
}

// RecordUploadSize observes the size of an accepted upload.
func (m *Manager) RecordUploadSize(bytes int64) { m.uploadsBytes.Observe(float64(bytes)) }

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError records an error with component and type labels.
func (m *Manager) RecordError(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Global helpers backed by the default manager.

// RecordRecognition records a recognition request on the global manager.
func RecordRecognition(outcome string, latencyMs float64) {
	globalManager.RecordRecognition(outcome, latencyMs)
}

// RecordSchedulerDecision counts a tick decision on the global manager.
func RecordSchedulerDecision(decision string) { globalManager.RecordSchedulerDecision(decision) }

// RecordCyclePanic counts a recovered panic on the global manager.
func RecordCyclePanic() { globalManager.RecordCyclePanic() }

// UpdateFacesInFrame sets the face gauge on the global manager.
func UpdateFacesInFrame(n int) { globalManager.UpdateFacesInFrame(n) }

// RecordFaceLabeled counts a drawn face on the global manager.
func RecordFaceLabeled(known bool) { globalManager.RecordFaceLabeled(known) }

// UpdateCameraActive sets the camera gauge on the global manager.
func UpdateCameraActive(active bool) { globalManager.UpdateCameraActive(active) }

// RecordFrameCaptured counts a frame on the global manager.
func RecordFrameCaptured() { globalManager.RecordFrameCaptured() }

// UpdateKnownFaces sets the registry gauge on the global manager.
func UpdateKnownFaces(n int) { globalManager.UpdateKnownFaces(n) }

// RecordRegistryOp counts a registry call on the global manager.
func RecordRegistryOp(op, outcome string) { globalManager.RecordRegistryOp(op, outcome) }

// RecordUploadSize observes an upload on the global manager.
func RecordUploadSize(bytes int64) { globalManager.RecordUploadSize(bytes) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an error on the global manager.
func RecordError(component, errorType string) { globalManager.RecordError(component, errorType) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
