package store

import (
	"context"

	"github.com/mnskies/fireworks-ingest/internal/domain"
)

// EventStore is the generic record store the pipeline and routing layer
// consume. Implementations provide no transactional guarantees across the
// read-then-write duplicate check; the reconciler's cleanup pass is the
// convergence backstop.
type EventStore interface {
	// FindByName returns records whose display name matches exactly.
	FindByName(ctx context.Context, name string) ([]domain.EventRecord, error)

	// FindByLocationDate returns records matching the (location, date) pair.
	FindByLocationDate(ctx context.Context, location, date string) ([]domain.EventRecord, error)

	// ListByCreation returns all records ordered by creation time ascending.
	ListByCreation(ctx context.Context) ([]domain.EventRecord, error)

	// Insert persists a candidate and returns the stored record with its
	// store-assigned ID and creation timestamp.
	Insert(ctx context.Context, c domain.ExtractionCandidate) (domain.EventRecord, error)

	// Delete removes one record by ID.
	Delete(ctx context.Context, id string) error

	// Query surface for the routing layer.
	ListVerified(ctx context.Context) ([]domain.EventRecord, error)
	ListUpcoming(ctx context.Context, from, to string) ([]domain.EventRecord, error)
	Search(ctx context.Context, query string) ([]domain.EventRecord, error)
}

// ReportStore persists user-submitted live sighting reports.
type ReportStore interface {
	InsertReport(ctx context.Context, r domain.LiveReport) (domain.LiveReport, error)

	// ListRecentReports returns reports submitted at or after the given unix
	// millisecond timestamp, newest first.
	ListRecentReports(ctx context.Context, sinceMillis int64) ([]domain.LiveReport, error)
}
