// Package telemetry exposes Prometheus metrics for compilations, the
// compile cache, publishing and the dev server.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "jsxc").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for compile duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Gatherer serves the /metrics handler.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the compile duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry registers the collectors on reg and serves them from it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = reg
		c.Gatherer = reg
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "jsxc",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		Registry:  prometheus.DefaultRegisterer,
		Gatherer:  prometheus.DefaultGatherer,
	}
}

// Metrics holds the collectors. It implements compiler.Observer.
type Metrics struct {
	compiles    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	diagnostics prometheus.Counter
	cache       *prometheus.CounterVec
	published   *prometheus.CounterVec
	rebuilds    prometheus.Counter
	devClients  prometheus.Gauge
	gatherer    prometheus.Gatherer
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		compiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "compiles_total",
			Help:        "Total number of module compilations",
			ConstLabels: cfg.ConstLabels,
		}, []string{"mode", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "compile_duration_seconds",
			Help:        "Module compilation duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"mode"}),

		diagnostics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "diagnostics_total",
			Help:        "Total number of non-fatal diagnostics reported",
			ConstLabels: cfg.ConstLabels,
		}),

		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "cache_lookups_total",
			Help:        "Compile cache lookups by result",
			ConstLabels: cfg.ConstLabels,
		}, []string{"result"}),

		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "published_objects_total",
			Help:        "Objects uploaded to the artifact store",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),

		rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "dev_rebuilds_total",
			Help:        "Rebuilds triggered by the dev server watcher",
			ConstLabels: cfg.ConstLabels,
		}),

		devClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "dev_clients",
			Help:        "Connected dev server websocket clients",
			ConstLabels: cfg.ConstLabels,
		}),

		gatherer: cfg.Gatherer,
	}
}

// ObserveCompile records one compilation.
func (m *Metrics) ObserveCompile(mode string, elapsed time.Duration, diagnostics int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.compiles.WithLabelValues(mode, status).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.diagnostics.Add(float64(diagnostics))
}

// CacheLookup records a compile cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cache.WithLabelValues("hit").Inc()
	} else {
		m.cache.WithLabelValues("miss").Inc()
	}
}

// Published records one upload attempt.
func (m *Metrics) Published(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.published.WithLabelValues("error").Inc()
		return
	}
	m.published.WithLabelValues("ok").Inc()
}

// Rebuild records a watcher-triggered rebuild.
func (m *Metrics) Rebuild() {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
}

// ClientConnected adjusts the websocket client gauge by delta.
func (m *Metrics) ClientConnected(delta int) {
	if m == nil {
		return
	}
	m.devClients.Add(float64(delta))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
