// Package metrics exposes Prometheus collectors for the reconciliation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "range_tracker"

// Metrics bundles every collector the service records into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetchDuration  *prometheus.HistogramVec
	snapshotStyles *prometheus.GaugeVec
	reconciles     *prometheus.CounterVec
	tokenRefreshes *prometheus.CounterVec
	catalogRows    *prometheus.GaugeVec
}

// New creates and registers all collectors on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "plm",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of outbound PLM requests.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation", "outcome"}),
		snapshotStyles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plm",
			Name:      "snapshot_styles",
			Help:      "Number of style records in the most recent snapshot.",
		}, []string{"kind"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Reconciliation runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plm",
			Name:      "token_refreshes_total",
			Help:      "OAuth token refresh attempts by outcome.",
		}, []string{"outcome"}),
		catalogRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "rows",
			Help:      "Plan rows currently loaded.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.fetchDuration,
		m.snapshotStyles,
		m.reconciles,
		m.tokenRefreshes,
		m.catalogRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFetch records the latency of one PLM call.
func (m *Metrics) ObserveFetch(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(operation, outcome(err)).Observe(time.Since(started).Seconds())
}

// SetSnapshotSize records how many styles a snapshot returned.
func (m *Metrics) SetSnapshotSize(kind string, n int) {
	if m == nil {
		return
	}
	m.snapshotStyles.WithLabelValues(kind).Set(float64(n))
}

// IncReconcile counts one reconciliation run.
func (m *Metrics) IncReconcile(kind string, err error) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(kind, outcome(err)).Inc()
}

// IncTokenRefresh counts one token refresh attempt.
func (m *Metrics) IncTokenRefresh(err error) {
	if m == nil {
		return
	}
	m.tokenRefreshes.WithLabelValues(outcome(err)).Inc()
}

// SetCatalogRows records the size of the loaded catalog.
func (m *Metrics) SetCatalogRows(kind string, n int) {
	if m == nil {
		return
	}
	m.catalogRows.WithLabelValues(kind).Set(float64(n))
}
