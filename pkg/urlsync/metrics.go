package urlsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for a Controller.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "urlstate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics holds the Prometheus metrics recorded by a Controller. One
// Metrics value may be shared across Controllers; a nil *Metrics disables
// recording.
//
// Metrics collected:
//   - urlstate_url_writes_total: Counter of URL writes by history mode
//   - urlstate_writes_skipped_total: Counter of no-op patches short-circuited
//   - urlstate_debounce_rescheduled_total: Counter of coalesced debounce writes
//   - urlstate_navigation_resyncs_total: Counter of back/forward re-syncs
//   - urlstate_clears_total: Counter of full query-string clears
type Metrics struct {
	urlWrites           *prometheus.CounterVec
	writesSkipped       prometheus.Counter
	debounceRescheduled prometheus.Counter
	navigationResyncs   prometheus.Counter
	clears              prometheus.Counter
}

// NewMetrics registers and returns the Controller metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "urlstate",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		urlWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "url_writes_total",
			Help:        "Total number of URL writes by history mode",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		writesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_skipped_total",
			Help:        "Total number of mutations short-circuited because state did not change",
			ConstLabels: config.ConstLabels,
		}),

		debounceRescheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "debounce_rescheduled_total",
			Help:        "Total number of pending debounce writes cancelled by a newer mutation",
			ConstLabels: config.ConstLabels,
		}),

		navigationResyncs: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_resyncs_total",
			Help:        "Total number of back/forward navigation re-syncs",
			ConstLabels: config.ConstLabels,
		}),

		clears: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "clears_total",
			Help:        "Total number of full query-string clears",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordWrite(mode string) {
	if m != nil {
		m.urlWrites.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) recordSkip() {
	if m != nil {
		m.writesSkipped.Inc()
	}
}

func (m *Metrics) recordReschedule() {
	if m != nil {
		m.debounceRescheduled.Inc()
	}
}

func (m *Metrics) recordResync() {
	if m != nil {
		m.navigationResyncs.Inc()
	}
}

func (m *Metrics) recordClear() {
	if m != nil {
		m.clears.Inc()
	}
}
