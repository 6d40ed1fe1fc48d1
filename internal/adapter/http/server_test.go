package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnskies/fireworks-ingest/internal/domain"
	"github.com/mnskies/fireworks-ingest/internal/pipeline"
	"github.com/mnskies/fireworks-ingest/internal/reconcile"
)

type stubEventStore struct {
	verified []domain.EventRecord
	upcoming []domain.EventRecord
	searched []domain.EventRecord
	inserted []domain.ExtractionCandidate
	err      error

	gotFrom, gotTo, gotQuery string
}

func (s *stubEventStore) FindByName(_ context.Context, _ string) ([]domain.EventRecord, error) {
	return nil, nil
}

func (s *stubEventStore) FindByLocationDate(_ context.Context, _, _ string) ([]domain.EventRecord, error) {
	return nil, nil
}

func (s *stubEventStore) ListByCreation(_ context.Context) ([]domain.EventRecord, error) {
	return nil, nil
}

func (s *stubEventStore) Insert(_ context.Context, c domain.ExtractionCandidate) (domain.EventRecord, error) {
	if s.err != nil {
		return domain.EventRecord{}, s.err
	}
	s.inserted = append(s.inserted, c)
	return domain.EventRecord{ID: "id-1", ExtractionCandidate: c, CreatedAt: domain.Now().UTC()}, nil
}

func (s *stubEventStore) Delete(_ context.Context, _ string) error { return nil }

func (s *stubEventStore) ListVerified(_ context.Context) ([]domain.EventRecord, error) {
	return s.verified, s.err
}

func (s *stubEventStore) ListUpcoming(_ context.Context, from, to string) ([]domain.EventRecord, error) {
	s.gotFrom, s.gotTo = from, to
	return s.upcoming, s.err
}

func (s *stubEventStore) Search(_ context.Context, query string) ([]domain.EventRecord, error) {
	s.gotQuery = query
	return s.searched, s.err
}

type stubReportStore struct {
	reports   []domain.LiveReport
	gotSince  int64
	lastSaved domain.LiveReport
}

func (s *stubReportStore) InsertReport(_ context.Context, r domain.LiveReport) (domain.LiveReport, error) {
	r.ID = "report-1"
	s.lastSaved = r
	return r, nil
}

func (s *stubReportStore) ListRecentReports(_ context.Context, sinceMillis int64) ([]domain.LiveReport, error) {
	s.gotSince = sinceMillis
	return s.reports, nil
}

type stubRunner struct {
	results []pipeline.SourceResult
	calls   int
}

func (s *stubRunner) RunAll(_ context.Context) []pipeline.SourceResult {
	s.calls++
	return s.results
}

type stubCleaner struct {
	result reconcile.Result
	err    error
}

func (s *stubCleaner) Cleanup(_ context.Context) (reconcile.Result, error) {
	return s.result, s.err
}

func newTestServer(events *stubEventStore, reports *stubReportStore, runner *stubRunner, cleaner *stubCleaner) *Server {
	if events == nil {
		events = &stubEventStore{}
	}
	if reports == nil {
		reports = &stubReportStore{}
	}
	if runner == nil {
		runner = &stubRunner{}
	}
	if cleaner == nil {
		cleaner = &stubCleaner{}
	}
	return NewServer(":0", events, reports, runner, cleaner, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func sampleRecord(name, location string, lat, lng float64) domain.EventRecord {
	return domain.EventRecord{
		ID: "id-" + location,
		ExtractionCandidate: domain.ExtractionCandidate{
			Name:         name,
			LocationName: location,
			Lat:          lat,
			Lng:          lng,
			EventDate:    "2025-07-04",
			EventTime:    "dusk",
			Cost:         "Free",
			Source:       "familyfuntwincities.com",
			Verified:     true,
		},
		CreatedAt: time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestHealthz(t *testing.T) {
	w := doRequest(t, newTestServer(nil, nil, nil, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestListEvents(t *testing.T) {
	events := &stubEventStore{verified: []domain.EventRecord{
		sampleRecord("Minneapolis Independence Day Fireworks", "Minneapolis", 44.9778, -93.2650),
		sampleRecord("Duluth July 4th Fireworks", "Duluth", 46.7867, -92.1005),
	}}
	srv := newTestServer(events, nil, nil, nil)

	t.Run("without coordinates returns plain records", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/events", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.NotContains(t, got[0], "distance")
	})

	t.Run("with coordinates decorates each record with distance", func(t *testing.T) {
		// Caller positioned at Minneapolis city hall.
		w := doRequest(t, srv, http.MethodGet, "/api/events?lat=44.9778&lng=-93.2650", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []struct {
			LocationName string   `json:"location_name"`
			Distance     *float64 `json:"distance"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)

		require.NotNil(t, got[0].Distance)
		assert.InDelta(t, 0, *got[0].Distance, 0.01)

		require.NotNil(t, got[1].Distance)
		assert.InDelta(t, 137, *got[1].Distance, 5, "Duluth is about 137 miles out")
	})

	t.Run("partial coordinates are ignored", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/events?lat=44.9778", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "distance")
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		broken := newTestServer(&stubEventStore{err: errors.New("down")}, nil, nil, nil)
		w := doRequest(t, broken, http.MethodGet, "/api/events", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestUpcomingEvents(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clk)
	defer domain.SetClock(nil)

	events := &stubEventStore{}
	w := doRequest(t, newTestServer(events, nil, nil, nil), http.MethodGet, "/api/events/upcoming", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "2025-06-20", events.gotFrom)
	assert.Equal(t, "2025-07-20", events.gotTo)
}

func TestSearchEvents(t *testing.T) {
	t.Run("missing query is a 400", func(t *testing.T) {
		w := doRequest(t, newTestServer(nil, nil, nil, nil), http.MethodGet, "/api/events/search", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("query is forwarded to the store", func(t *testing.T) {
		events := &stubEventStore{searched: []domain.EventRecord{
			sampleRecord("Edina Independence Day Fireworks", "Edina", 44.8897, -93.3498),
		}}
		w := doRequest(t, newTestServer(events, nil, nil, nil), http.MethodGet, "/api/events/search?q=edina", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "edina", events.gotQuery)
		assert.Contains(t, w.Body.String(), "Edina")
	})
}

func TestCreateEvent(t *testing.T) {
	t.Run("valid payload is persisted", func(t *testing.T) {
		events := &stubEventStore{}
		body := `{"name":"Backyard Show","location_name":"Edina","lat":44.88,"lng":-93.34,"event_date":"2025-07-04"}`
		w := doRequest(t, newTestServer(events, nil, nil, nil), http.MethodPost, "/api/events", body)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, events.inserted, 1)
		assert.Equal(t, "Backyard Show", events.inserted[0].Name)
	})

	t.Run("missing required fields is a 400", func(t *testing.T) {
		events := &stubEventStore{}
		w := doRequest(t, newTestServer(events, nil, nil, nil), http.MethodPost, "/api/events", `{"name":"No Location"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, events.inserted)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		w := doRequest(t, newTestServer(nil, nil, nil, nil), http.MethodPost, "/api/events", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReports(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2025, 7, 4, 22, 0, 0, 0, time.UTC))
	domain.SetClock(clk)
	defer domain.SetClock(nil)

	t.Run("create stamps the server-side timestamp", func(t *testing.T) {
		reports := &stubReportStore{}
		body := `{"lat":44.95,"lng":-93.33,"intensity":"big","report_timestamp":12345}`
		w := doRequest(t, newTestServer(nil, reports, nil, nil), http.MethodPost, "/api/reports", body)

		require.Equal(t, http.StatusCreated, w.Code)
		want := clk.Now().UnixMilli()
		assert.Equal(t, want, reports.lastSaved.ReportTimestamp, "client timestamps are overwritten")
	})

	t.Run("listing uses a 30 minute cutoff", func(t *testing.T) {
		reports := &stubReportStore{}
		w := doRequest(t, newTestServer(nil, reports, nil, nil), http.MethodGet, "/api/reports", "")

		require.Equal(t, http.StatusOK, w.Code)
		want := clk.Now().Add(-30 * time.Minute).UnixMilli()
		assert.Equal(t, want, reports.gotSince)
	})
}

func TestScrapeRun(t *testing.T) {
	runner := &stubRunner{results: []pipeline.SourceResult{
		{Source: "fox9.com", Count: 12},
		{Source: "twincitiesfamily.com", Error: "503 from upstream"},
	}}
	w := doRequest(t, newTestServer(nil, nil, runner, nil), http.MethodPost, "/api/scrape/run", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, w.Body.String(), `"count":12`)
	assert.Contains(t, w.Body.String(), "503 from upstream")
}

func TestCleanupEndpoint(t *testing.T) {
	t.Run("returns the pass summary", func(t *testing.T) {
		cleaner := &stubCleaner{result: reconcile.Result{Found: 10, Deleted: 3}}
		w := doRequest(t, newTestServer(nil, nil, nil, cleaner), http.MethodPost, "/api/scrape/cleanup", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"found":10,"deleted":3}`, w.Body.String())
	})

	t.Run("failure is a 500", func(t *testing.T) {
		cleaner := &stubCleaner{err: errors.New("cursor lost")}
		w := doRequest(t, newTestServer(nil, nil, nil, cleaner), http.MethodPost, "/api/scrape/cleanup", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHaversineMiles(t *testing.T) {
	// Minneapolis to St. Paul is roughly 8.5 miles.
	d := haversineMiles(44.9778, -93.2650, 44.9537, -93.0900)
	assert.InDelta(t, 8.7, d, 1)

	assert.Zero(t, haversineMiles(44.9778, -93.2650, 44.9778, -93.2650))
}
