// Package metrics exposes Prometheus counters for imports and searches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sanjit42/naming-service/internal/domain"
)

const namespace = "roster"

// Import run outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics owns its registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	importRuns     *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importDuration prometheus.Histogram
	searches       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		importRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Import runs by outcome.",
		}, []string{"outcome"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Imported data rows by status.",
		}, []string{"status"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent on an import run.",
			Buckets:   prometheus.DefBuckets,
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search and filter requests by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.importRuns,
		m.importRows,
		m.importDuration,
		m.searches,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveImport records one finished import run.
func (m *Metrics) ObserveImport(res *domain.ImportResult, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.importDuration.Observe(took.Seconds())

	switch {
	case err != nil || res == nil:
		m.importRuns.WithLabelValues(OutcomeError).Inc()
		return
	case !res.HeaderAccepted:
		m.importRuns.WithLabelValues(OutcomeRejected).Inc()
		return
	}
	m.importRuns.WithLabelValues(OutcomeAccepted).Inc()
	m.importRows.WithLabelValues("success").Add(float64(res.SuccessRowsNumber))
	m.importRows.WithLabelValues("failed").Add(float64(res.FailedRowsNumber))
}

// ObserveSearch counts a search request; kind is "search", "filter" or "combined".
func (m *Metrics) ObserveSearch(kind string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind).Inc()
}
