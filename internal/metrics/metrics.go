// Package metrics exposes Prometheus instrumentation for audits, loads,
// cleaning operations and HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

const namespace = "crashaudit"

// Metrics holds every collector, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoadsTotal  *prometheus.CounterVec
	RowsLoaded  *prometheus.CounterVec
	ParseErrors *prometheus.CounterVec

	AuditsTotal    *prometheus.CounterVec
	AuditDuration  *prometheus.HistogramVec
	HealthScore    *prometheus.GaugeVec
	DimensionScore *prometheus.GaugeVec

	CleaningOpsTotal *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// New creates the collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		LoadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Tables loaded into sessions, by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		RowsLoaded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_loaded_total",
				Help:      "Rows loaded into sessions",
			},
			[]string{"dataset"},
		),
		ParseErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_failures_total",
				Help:      "Cells that failed to parse as their declared type",
			},
			[]string{"dataset", "column"},
		),

		AuditsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audits_total",
				Help:      "Audits run",
			},
			[]string{"dataset"},
		),
		AuditDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "audit_duration_seconds",
				Help:      "Time spent running all audit checks",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"dataset"},
		),
		HealthScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "health_score",
				Help:      "Health score of the most recent audit",
			},
			[]string{"dataset"},
		),
		DimensionScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dimension_score",
				Help:      "Per-dimension score of the most recent audit",
			},
			[]string{"dataset", "dimension"},
		),

		CleaningOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleaning_operations_total",
				Help:      "Cleaning operations applied, by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		ActiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions currently held in memory",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAudit records one audit of dataset.
func (m *Metrics) ObserveAudit(dataset string, r *core.AuditReport, elapsed time.Duration) {
	m.AuditsTotal.WithLabelValues(dataset).Inc()
	m.AuditDuration.WithLabelValues(dataset).Observe(elapsed.Seconds())
	m.HealthScore.WithLabelValues(dataset).Set(r.HealthScore)
	for _, d := range r.Dimensions {
		if d.Scored {
			m.DimensionScore.WithLabelValues(dataset, string(d.Dimension)).Set(d.Score)
		}
	}
}

// ObserveLoad records a load attempt. res is nil when the load failed.
func (m *Metrics) ObserveLoad(source, dataset string, res *core.LoadResult, err error) {
	if err != nil {
		m.LoadsTotal.WithLabelValues(source, "error").Inc()
		return
	}
	m.LoadsTotal.WithLabelValues(source, "ok").Inc()
	m.RowsLoaded.WithLabelValues(dataset).Add(float64(res.Table.RowCount()))
	for _, pf := range res.ParseFailures {
		m.ParseErrors.WithLabelValues(dataset, pf.Column).Add(float64(pf.Count))
	}
}

// ObserveCleaning records one cleaning operation.
func (m *Metrics) ObserveCleaning(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CleaningOpsTotal.WithLabelValues(operation, outcome).Inc()
}
