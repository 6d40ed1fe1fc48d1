// Package reconcile enforces at-most-one-record-per-event semantics: a
// duplicate check at ingestion time and a periodic cleanup pass over the
// whole store.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/mnskies/fireworks-ingest/internal/domain"
	"github.com/mnskies/fireworks-ingest/internal/observability"
	"github.com/mnskies/fireworks-ingest/internal/store"
)

// Reconciler detects and removes duplicate persisted records.
type Reconciler struct {
	store   store.EventStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Reconciler over the given store.
func New(s store.EventStore, logger *slog.Logger, metrics *observability.Metrics) *Reconciler {
	return &Reconciler{store: s, logger: logger, metrics: metrics}
}

// IsDuplicate checks a candidate against the store before insert: an exact
// name match OR a (location, date) match counts as a duplicate. The second
// check catches the same event announced under a different name by another
// source. A failed store read is logged and treated as "not a duplicate" —
// an extra insert beats blocking ingestion on a transient store error.
func (r *Reconciler) IsDuplicate(ctx context.Context, c domain.ExtractionCandidate) bool {
	byName, err := r.store.FindByName(ctx, c.Name)
	if err != nil {
		r.logger.Warn("duplicate check by name failed, assuming not duplicate",
			"name", c.Name, "error", err)
	} else if len(byName) > 0 {
		return true
	}

	byKey, err := r.store.FindByLocationDate(ctx, c.LocationName, c.EventDate)
	if err != nil {
		r.logger.Warn("duplicate check by location and date failed, assuming not duplicate",
			"location", c.LocationName, "date", c.EventDate, "error", err)
		return false
	}
	return len(byKey) > 0
}

// Result summarizes one cleanup pass.
type Result struct {
	Found   int `json:"found"`   // records examined
	Deleted int `json:"deleted"` // duplicates removed
}

// Cleanup scans the whole store and prunes duplicate groups, keeping the
// earliest-created member of each (location, date) group. Per-record delete
// failures are logged and counted; the pass never aborts on one bad record.
// Safe to run concurrently with ingestion: it only removes strict duplicates,
// never a group's sole representative.
func (r *Reconciler) Cleanup(ctx context.Context) (Result, error) {
	records, err := r.store.ListByCreation(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Found: len(records)}

	// Records arrive in creation order, so the first member seen in each
	// group is the keeper.
	keeper := make(map[string]bool)
	for _, rec := range records {
		key := rec.DuplicateKey()
		if !keeper[key] {
			keeper[key] = true
			continue
		}

		if err := r.store.Delete(ctx, rec.ID); err != nil {
			r.logger.Warn("cleanup delete failed",
				"id", rec.ID, "location", rec.LocationName, "date", rec.EventDate, "error", err)
			r.metrics.CleanupDeleteErrors.Inc()
			continue
		}
		res.Deleted++
	}

	r.metrics.CleanupRuns.Inc()
	r.metrics.CleanupDeleted.Add(float64(res.Deleted))
	r.logger.Info("cleanup pass complete", "found", res.Found, "deleted", res.Deleted)
	return res, nil
}
