package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and reconciler.
type Metrics struct {
	PagesFetched        *prometheus.CounterVec // labels: source, outcome={success,error}
	CandidatesExtracted *prometheus.CounterVec // labels: source
	DuplicatesSkipped   *prometheus.CounterVec // labels: source
	EventsInserted      *prometheus.CounterVec // labels: source
	InsertErrors        prometheus.Counter
	IngestRunning       prometheus.Gauge
	RunDuration         prometheus.Histogram

	// Cleanup pass metrics.
	CleanupRuns         prometheus.Counter
	CleanupDeleted      prometheus.Counter
	CleanupDeleteErrors prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PagesFetched,
		m.CandidatesExtracted,
		m.DuplicatesSkipped,
		m.EventsInserted,
		m.InsertErrors,
		m.IngestRunning,
		m.RunDuration,
		m.CleanupRuns,
		m.CleanupDeleted,
		m.CleanupDeleteErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "pages_fetched_total",
			Help:      "Source page fetches by outcome.",
		}, []string{"source", "outcome"}),
		CandidatesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "candidates_extracted_total",
			Help:      "Candidates surviving extraction and batch dedupe, per source.",
		}, []string{"source"}),
		DuplicatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "duplicates_skipped_total",
			Help:      "Candidates skipped by the ingest-time duplicate check.",
		}, []string{"source"}),
		EventsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "events_inserted_total",
			Help:      "Event records persisted, per source.",
		}, []string{"source"}),
		InsertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "insert_errors_total",
			Help:      "Failed event inserts.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fireworks_ingest",
			Name:      "ingest_running",
			Help:      "1 while an ingestion run is in progress.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fireworks_ingest",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete all-sources ingestion run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CleanupRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "cleanup_runs_total",
			Help:      "Completed duplicate-cleanup passes.",
		}),
		CleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "cleanup_deleted_total",
			Help:      "Duplicate records removed by cleanup passes.",
		}),
		CleanupDeleteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireworks_ingest",
			Name:      "cleanup_delete_errors_total",
			Help:      "Failed deletes during cleanup passes.",
		}),
	}
}
