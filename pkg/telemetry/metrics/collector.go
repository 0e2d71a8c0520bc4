package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Namespace is the metric name prefix.
	// Default: "vesper"
	Namespace string

	// Subsystem is the metric name subsystem.
	// Default: "server"
	Subsystem string

	// RequestDurationBuckets are the histogram buckets for request
	// durations in seconds.
	RequestDurationBuckets []float64
}

// Collector owns the Prometheus metrics for a server instance: lifecycle
// state, live connection count, admitted requests and admission
// rejections.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	up                prometheus.Gauge
	connectionsActive prometheus.Gauge
	requestsTotal     *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	rejectionsTotal   prometheus.Counter
}

// NewCollector creates a new metrics collector registered against the
// given registry. If registry is nil a fresh one is created.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &Config{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "vesper"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "server"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "up",
			Help:      "Whether the server is currently listening (1) or stopped (0)",
		}),

		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_active",
			Help:      "Number of live transport connections",
		}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of requests admitted to the pipeline",
		}, []string{"status"}),

		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of admitted requests in seconds",
			Buckets:   cfg.RequestDurationBuckets,
		}),

		rejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "admission_rejections_total",
			Help:      "Total number of requests rejected by the admission gate",
		}),
	}

	registry.MustRegister(
		c.up,
		c.connectionsActive,
		c.requestsTotal,
		c.requestDuration,
		c.rejectionsTotal,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ServerUp records the server lifecycle state.
func (c *Collector) ServerUp(listening bool) {
	if listening {
		c.up.Set(1)
	} else {
		c.up.Set(0)
	}
}

// ConnectionOpened records a new transport connection.
func (c *Collector) ConnectionOpened() {
	c.connectionsActive.Inc()
}

// ConnectionClosed records a closed transport connection.
func (c *Collector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// ObserveRequest records an admitted request with its response status and
// duration.
func (c *Collector) ObserveRequest(status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// RejectionObserved records an admission rejection.
func (c *Collector) RejectionObserved() {
	c.rejectionsTotal.Inc()
}
