// Package pipeline orchestrates ingestion runs: every configured source is
// fetched, segmented, extracted, batch-deduplicated, and reconciled against
// the store, with failures isolated per source.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/mnskies/fireworks-ingest/internal/domain"
	"github.com/mnskies/fireworks-ingest/internal/observability"
	"github.com/mnskies/fireworks-ingest/internal/scrape"
	"github.com/mnskies/fireworks-ingest/internal/store"
)

// DuplicateChecker decides whether a candidate already exists in the store.
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, c domain.ExtractionCandidate) bool
}

// EventPublisher receives each newly persisted record, e.g. a change feed.
type EventPublisher interface {
	Publish(ctx context.Context, rec domain.EventRecord) error
}

// SourceResult reports one source's contribution to a run.
type SourceResult struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// Runner executes ingestion runs over the configured sources.
type Runner struct {
	fetcher scrape.PageFetcher
	sources []scrape.Source
	gaz     *domain.Gazetteer
	store   store.EventStore
	checker DuplicateChecker
	feed    EventPublisher // nil when no change feed is configured
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Runner. feed may be nil.
func New(
	fetcher scrape.PageFetcher,
	sources []scrape.Source,
	gaz *domain.Gazetteer,
	s store.EventStore,
	checker DuplicateChecker,
	feed EventPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Runner {
	return &Runner{
		fetcher: fetcher,
		sources: sources,
		gaz:     gaz,
		store:   s,
		checker: checker,
		feed:    feed,
		logger:  logger,
		metrics: metrics,
	}
}

// RunAll runs ingestion for every configured source and returns per-source
// results. A fetch or strategy failure contributes zero candidates for that
// source; the other sources proceed. Within a run, candidates are processed
// strictly sequentially — the duplicate check only means something if the
// previous insert committed before the next check reads.
func (r *Runner) RunAll(ctx context.Context) []SourceResult {
	start := time.Now()
	r.metrics.IngestRunning.Set(1)
	defer func() {
		r.metrics.IngestRunning.Set(0)
		r.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	results := make([]SourceResult, 0, len(r.sources))
	for _, src := range r.sources {
		results = append(results, r.runSource(ctx, src))
	}
	return results
}

func (r *Runner) runSource(ctx context.Context, src scrape.Source) SourceResult {
	candidates, err := src.Scrape(ctx, r.fetcher, r.gaz, r.logger)
	if err != nil {
		r.logger.Warn("source scrape failed", "source", src.Name, "error", err)
		r.metrics.PagesFetched.WithLabelValues(src.Name, "error").Inc()
		return SourceResult{Source: src.Name, Error: err.Error()}
	}
	r.metrics.PagesFetched.WithLabelValues(src.Name, "success").Inc()
	r.metrics.CandidatesExtracted.WithLabelValues(src.Name).Add(float64(len(candidates)))

	inserted := 0
	for _, c := range candidates {
		if r.checker.IsDuplicate(ctx, c) {
			r.logger.Debug("skipping duplicate candidate",
				"source", src.Name, "location", c.LocationName, "date", c.EventDate)
			r.metrics.DuplicatesSkipped.WithLabelValues(src.Name).Inc()
			continue
		}

		rec, err := r.store.Insert(ctx, c)
		if err != nil {
			r.logger.Warn("insert failed, skipping candidate",
				"source", src.Name, "name", c.Name, "error", err)
			r.metrics.InsertErrors.Inc()
			continue
		}
		inserted++
		r.metrics.EventsInserted.WithLabelValues(src.Name).Inc()

		if r.feed != nil {
			if err := r.feed.Publish(ctx, rec); err != nil {
				r.logger.Warn("change feed publish failed", "id", rec.ID, "error", err)
			}
		}
	}

	r.logger.Info("source ingested",
		"source", src.Name, "candidates", len(candidates), "inserted", inserted)
	return SourceResult{Source: src.Name, Count: inserted}
}
