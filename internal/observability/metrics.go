package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "beach_hazard"

// Metrics holds the Prometheus counters, histograms, and gauges for the hazard ETL.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RefreshDuration prometheus.Histogram

	// Per-source report metrics.
	ReportsGenerated *prometheus.CounterVec // labels: source
	RefreshErrors    *prometheus.CounterVec // labels: source
	RowsDropped      *prometheus.CounterVec // labels: source
	ReportsPublished prometheus.Counter

	// Transformer memo cache.
	TransformCache *prometheus.CounterVec // labels: result={hit,miss}

	// Upstream fetches.
	SourceRequests      *prometheus.CounterVec   // labels: source, outcome={success,error}
	SourceFetchDuration *prometheus.HistogramVec // labels: source

	// Payload archive.
	ArchivedPayloads *prometheus.CounterVec // labels: result={inserted,duplicate}
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete refresh cycle over all sources.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ReportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Hazard reports generated by source.",
		}, []string{"source"}),
		RefreshErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Failed source refreshes by source.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for an unparsable timestamp, by source.",
		}, []string{"source"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Reports written to the sink.",
		}),
		TransformCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_cache_total",
			Help:      "Transformer memo cache lookups by result.",
		}, []string{"result"}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Upstream fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds, retries included.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		ArchivedPayloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archived_payloads_total",
			Help:      "Raw payloads offered to the archive by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.PipelineRunning,
		m.RefreshDuration,
		m.ReportsGenerated,
		m.RefreshErrors,
		m.RowsDropped,
		m.ReportsPublished,
		m.TransformCache,
		m.SourceRequests,
		m.SourceFetchDuration,
		m.ArchivedPayloads,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
