package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for solvenv. A nil *Metrics is a
// valid no-op collector, so library code records unconditionally.
type Metrics struct {
	config MetricsConfig

	// Environment lifecycle metrics
	acquisitions *prometheus.CounterVec
	releases     prometheus.Counter
	liveModels   *prometheus.GaugeVec

	// Solve metrics
	solvesTotal   *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec

	// Probe metrics
	probesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op instance: collectors stay nil and Record* calls return early.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "env_acquisitions_total",
				Help:      "Environment acquisition attempts by outcome (acquired, contended, error)",
			},
			[]string{"outcome"},
		),
		releases: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "env_releases_total",
				Help:      "Environments released",
			},
		),
		liveModels: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_models",
				Help:      "Model handles currently attached to live environments",
			},
			[]string{"backend"},
		),
		solvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_total",
				Help:      "Solve calls by final model status",
			},
			[]string{"status"},
		),
		solveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve calls in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Availability probe results (available, unavailable)",
			},
			[]string{"result"},
		),
	}

	collectors := []prometheus.Collector{
		m.acquisitions, m.releases, m.liveModels,
		m.solvesTotal, m.solveDuration, m.probesTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// RecordAcquisition records an environment acquisition attempt.
func (m *Metrics) RecordAcquisition(outcome string) {
	if m == nil || m.acquisitions == nil {
		return
	}
	m.acquisitions.WithLabelValues(outcome).Inc()
}

// RecordRelease records an environment release.
func (m *Metrics) RecordRelease() {
	if m == nil || m.releases == nil {
		return
	}
	m.releases.Inc()
}

// SetLiveModels sets the number of live model handles for a backend.
func (m *Metrics) SetLiveModels(backend string, count int) {
	if m == nil || m.liveModels == nil {
		return
	}
	m.liveModels.WithLabelValues(backend).Set(float64(count))
}

// RecordSolve records a completed solve call.
func (m *Metrics) RecordSolve(status string, duration time.Duration) {
	if m == nil || m.solvesTotal == nil {
		return
	}
	m.solvesTotal.WithLabelValues(status).Inc()
	m.solveDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordProbe records an availability probe result.
func (m *Metrics) RecordProbe(result string) {
	if m == nil || m.probesTotal == nil {
		return
	}
	m.probesTotal.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer starts the metrics HTTP server in the background.
func (m *Metrics) StartMetricsServer() error {
	if m == nil || !m.config.Enabled {
		return nil
	}
	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	go func() {
		// Errors here are fatal only to the metrics endpoint, not the process.
		_ = http.ListenAndServe(m.config.ListenAddress, mux)
	}()
	return nil
}
