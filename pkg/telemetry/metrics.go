package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "leafwire").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for call duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "leafwire",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the session collectors. Registering two Metrics on the same
// registry with the same namespace panics, as promauto does.
type Metrics struct {
	sessionsActive   prometheus.Gauge
	framesSent       *prometheus.CounterVec
	framesReceived   *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	heartbeats       prometheus.Counter
	callsTotal       *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	exportedDocument *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_active",
			Help:        "Number of open project sessions",
			ConstLabels: config.ConstLabels,
		}),

		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total frames written to the socket",
			ConstLabels: config.ConstLabels,
		}, []string{"opcode"}),

		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_received_total",
			Help:        "Total frames read from the socket",
			ConstLabels: config.ConstLabels,
		}, []string{"opcode"}),

		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_errors_total",
			Help:        "Total frames skipped because they failed to decode",
			ConstLabels: config.ConstLabels,
		}),

		heartbeats: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "heartbeats_total",
			Help:        "Total heartbeats echoed to the server",
			ConstLabels: config.ConstLabels,
		}),

		callsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "calls_total",
			Help:        "Total remote calls by method and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "outcome"}),

		callDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "call_duration_seconds",
			Help:        "Remote call latency in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		exportedDocument: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "exported_documents_total",
			Help:        "Total documents handled by export, by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),
	}
}

// SessionOpened records a new open session.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessionsActive.Inc()
	}
}

// SessionClosed records a session reaching the closed state.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessionsActive.Dec()
	}
}

// FrameSent records a frame written with the given opcode label.
func (m *Metrics) FrameSent(opcode string) {
	if m != nil {
		m.framesSent.WithLabelValues(opcode).Inc()
	}
}

// FrameReceived records a decoded frame with the given opcode label.
func (m *Metrics) FrameReceived(opcode string) {
	if m != nil {
		m.framesReceived.WithLabelValues(opcode).Inc()
	}
}

// DecodeError records a frame skipped as malformed.
func (m *Metrics) DecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

// HeartbeatEchoed records a heartbeat queued for echo.
func (m *Metrics) HeartbeatEchoed() {
	if m != nil {
		m.heartbeats.Inc()
	}
}

// ObserveCall records a finished remote call.
func (m *Metrics) ObserveCall(method, outcome string, d time.Duration) {
	if m != nil {
		m.callsTotal.WithLabelValues(method, outcome).Inc()
		m.callDuration.WithLabelValues(method).Observe(d.Seconds())
	}
}

// DocumentExported records the result of exporting one document.
func (m *Metrics) DocumentExported(result string) {
	if m != nil {
		m.exportedDocument.WithLabelValues(result).Inc()
	}
}
