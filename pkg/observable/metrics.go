package observable

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the membrane's Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "membrane").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the membrane metrics.
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

// WithRegisterer sets the Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
	}
}

// Metrics holds the membrane's Prometheus collectors.
type Metrics struct {
	proxiesCreated   prometheus.Counter
	cacheHits        prometheus.Counter
	trackedReads     prometheus.Counter
	notifications    prometheus.Counter
	purityViolations prometheus.Counter
	foreignReads     prometheus.Counter
}

// NewMetrics registers and returns the membrane collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := &MetricsConfig{
		Namespace: "membrane",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	factory := promauto.With(cfg.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		})
	}

	return &Metrics{
		proxiesCreated:   counter("proxies_created_total", "Membrane proxies constructed."),
		cacheHits:        counter("proxy_cache_hits_total", "Wrap calls satisfied by the identity cache."),
		trackedReads:     counter("tracked_reads_total", "Dependency recordings during render passes."),
		notifications:    counter("notifications_total", "Consumers scheduled for re-render."),
		purityViolations: counter("render_purity_violations_total", "Writes rejected during render passes."),
		foreignReads:     counter("foreign_value_reads_total", "Reads returning non-observable object values."),
	}
}
