package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnskies/fireworks-ingest/internal/domain"
	"github.com/mnskies/fireworks-ingest/internal/observability"
)

// fakeStore is an in-memory EventStore. Records keep insertion order, which
// doubles as creation order.
type fakeStore struct {
	records []domain.EventRecord
	nextID  int

	findByNameErr error
	findByKeyErr  error
	listErr       error
	deleteErrIDs  map[string]bool
}

func (f *fakeStore) FindByName(_ context.Context, name string) ([]domain.EventRecord, error) {
	if f.findByNameErr != nil {
		return nil, f.findByNameErr
	}
	var out []domain.EventRecord
	for _, r := range f.records {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByLocationDate(_ context.Context, location, date string) ([]domain.EventRecord, error) {
	if f.findByKeyErr != nil {
		return nil, f.findByKeyErr
	}
	var out []domain.EventRecord
	for _, r := range f.records {
		if r.LocationName == location && r.EventDate == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByCreation(_ context.Context) ([]domain.EventRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.EventRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, c domain.ExtractionCandidate) (domain.EventRecord, error) {
	f.nextID++
	rec := domain.EventRecord{
		ID:                  fmt.Sprintf("id-%d", f.nextID),
		ExtractionCandidate: c,
		CreatedAt:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Minute),
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if f.deleteErrIDs[id] {
		return errors.New("delete rejected")
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) ListVerified(_ context.Context) ([]domain.EventRecord, error) {
	return nil, nil
}

func (f *fakeStore) ListUpcoming(_ context.Context, _, _ string) ([]domain.EventRecord, error) {
	return nil, nil
}

func (f *fakeStore) Search(_ context.Context, _ string) ([]domain.EventRecord, error) {
	return nil, nil
}

func newTestReconciler(s *fakeStore) *Reconciler {
	return New(s, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func candidate(name, location, date string) domain.ExtractionCandidate {
	return domain.ExtractionCandidate{Name: name, LocationName: location, EventDate: date}
}

func TestIsDuplicate(t *testing.T) {
	ctx := context.Background()

	seed := func() *fakeStore {
		s := &fakeStore{}
		_, err := s.Insert(ctx, candidate("Edina Independence Day Fireworks", "Edina", "2025-07-04"))
		require.NoError(t, err)
		return s
	}

	t.Run("exact name match is a duplicate", func(t *testing.T) {
		r := newTestReconciler(seed())
		c := candidate("Edina Independence Day Fireworks", "Somewhere Else", "2025-07-05")
		assert.True(t, r.IsDuplicate(ctx, c))
	})

	t.Run("location and date match is a duplicate", func(t *testing.T) {
		r := newTestReconciler(seed())
		c := candidate("Edina July 4th Celebration", "Edina", "2025-07-04")
		assert.True(t, r.IsDuplicate(ctx, c))
	})

	t.Run("same location on another date is not a duplicate", func(t *testing.T) {
		r := newTestReconciler(seed())
		c := candidate("Edina July 5th Encore", "Edina", "2025-07-05")
		assert.False(t, r.IsDuplicate(ctx, c))
	})

	t.Run("empty store is never a duplicate", func(t *testing.T) {
		r := newTestReconciler(&fakeStore{})
		assert.False(t, r.IsDuplicate(ctx, candidate("Anything", "Duluth", "2025-07-04")))
	})

	t.Run("name check failure falls through to the key check", func(t *testing.T) {
		s := seed()
		s.findByNameErr = errors.New("timeout")
		r := newTestReconciler(s)

		c := candidate("Edina Independence Day Fireworks", "Edina", "2025-07-04")
		assert.True(t, r.IsDuplicate(ctx, c), "the key check still sees the stored record")
	})

	t.Run("both checks failing means not duplicate", func(t *testing.T) {
		s := seed()
		s.findByNameErr = errors.New("timeout")
		s.findByKeyErr = errors.New("timeout")
		r := newTestReconciler(s)

		c := candidate("Edina Independence Day Fireworks", "Edina", "2025-07-04")
		assert.False(t, r.IsDuplicate(ctx, c), "store errors never block ingestion")
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the earliest record per location and date", func(t *testing.T) {
		s := &fakeStore{}
		first, err := s.Insert(ctx, candidate("Edina Independence Day Fireworks", "Edina", "2025-07-04"))
		require.NoError(t, err)
		_, err = s.Insert(ctx, candidate("Edina July 4th Celebration", "Edina", "2025-07-04"))
		require.NoError(t, err)
		_, err = s.Insert(ctx, candidate("Edina Fireworks Spectacular", "Edina", "2025-07-04"))
		require.NoError(t, err)
		_, err = s.Insert(ctx, candidate("Duluth July 4th Fireworks", "Duluth", "2025-07-04"))
		require.NoError(t, err)

		res, err := newTestReconciler(s).Cleanup(ctx)
		require.NoError(t, err)
		assert.Equal(t, Result{Found: 4, Deleted: 2}, res)

		require.Len(t, s.records, 2)
		assert.Equal(t, first.ID, s.records[0].ID)
		assert.Equal(t, "Duluth", s.records[1].LocationName)
	})

	t.Run("no duplicates deletes nothing", func(t *testing.T) {
		s := &fakeStore{}
		_, err := s.Insert(ctx, candidate("Edina Independence Day Fireworks", "Edina", "2025-07-04"))
		require.NoError(t, err)
		_, err = s.Insert(ctx, candidate("Edina July 5th Encore", "Edina", "2025-07-05"))
		require.NoError(t, err)

		res, err := newTestReconciler(s).Cleanup(ctx)
		require.NoError(t, err)
		assert.Equal(t, Result{Found: 2, Deleted: 0}, res)
		assert.Len(t, s.records, 2)
	})

	t.Run("idempotent", func(t *testing.T) {
		s := &fakeStore{}
		for i := 0; i < 3; i++ {
			_, err := s.Insert(ctx, candidate(fmt.Sprintf("Edina Listing %d", i), "Edina", "2025-07-04"))
			require.NoError(t, err)
		}
		r := newTestReconciler(s)

		res, err := r.Cleanup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Deleted)

		res, err = r.Cleanup(ctx)
		require.NoError(t, err)
		assert.Equal(t, Result{Found: 1, Deleted: 0}, res)
	})

	t.Run("delete failure skips the record and continues", func(t *testing.T) {
		s := &fakeStore{}
		_, err := s.Insert(ctx, candidate("Edina Listing A", "Edina", "2025-07-04"))
		require.NoError(t, err)
		stuck, err := s.Insert(ctx, candidate("Edina Listing B", "Edina", "2025-07-04"))
		require.NoError(t, err)
		_, err = s.Insert(ctx, candidate("Edina Listing C", "Edina", "2025-07-04"))
		require.NoError(t, err)
		s.deleteErrIDs = map[string]bool{stuck.ID: true}

		res, err := newTestReconciler(s).Cleanup(ctx)
		require.NoError(t, err)
		assert.Equal(t, Result{Found: 3, Deleted: 1}, res)
		assert.Len(t, s.records, 2, "the stuck record survives this pass")
	})

	t.Run("list failure aborts the pass", func(t *testing.T) {
		s := &fakeStore{listErr: errors.New("cursor lost")}
		_, err := newTestReconciler(s).Cleanup(ctx)
		require.Error(t, err)
	})
}
