// Package http exposes the routing layer: event queries, live reports, the
// scrape/cleanup trigger surface, health, and metrics.
package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mnskies/fireworks-ingest/internal/domain"
	"github.com/mnskies/fireworks-ingest/internal/pipeline"
	"github.com/mnskies/fireworks-ingest/internal/reconcile"
	"github.com/mnskies/fireworks-ingest/internal/store"
)

// IngestionRunner triggers an ingestion run over all configured sources.
// Safe to re-invoke: duplicate candidates are skipped, not re-inserted.
type IngestionRunner interface {
	RunAll(ctx context.Context) []pipeline.SourceResult
}

// CleanupRunner triggers a duplicate-cleanup pass. Idempotent.
type CleanupRunner interface {
	Cleanup(ctx context.Context) (reconcile.Result, error)
}

// reportWindow bounds how far back the live-report listing reaches.
const reportWindow = 30 * time.Minute

// upcomingWindow bounds the /events/upcoming date range.
const upcomingWindow = 30 * 24 * time.Hour

// Server exposes the HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the gin router and wraps it in an http.Server.
func NewServer(addr string, events store.EventStore, reports store.ReportStore, runner IngestionRunner, cleaner CleanupRunner, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second, // scrape runs block until every source finishes
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	router.GET("/healthz", handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/events", handleListEvents(events))
		api.GET("/events/upcoming", handleUpcomingEvents(events))
		api.GET("/events/search", handleSearchEvents(events))
		api.POST("/events", handleCreateEvent(events))

		api.GET("/reports", handleListReports(reports))
		api.POST("/reports", handleCreateReport(reports))

		api.POST("/scrape/run", handleScrapeRun(runner))
		api.POST("/scrape/cleanup", handleCleanup(cleaner, logger))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// eventWithDistance decorates a record with the distance in miles from the
// caller's position, when one was supplied.
type eventWithDistance struct {
	domain.EventRecord
	Distance *float64 `json:"distance,omitempty"`
}

func handleListEvents(events store.EventStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := events.ListVerified(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
			return
		}

		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusOK, records)
			return
		}

		out := make([]eventWithDistance, len(records))
		for i, rec := range records {
			d := haversineMiles(lat, lng, rec.Lat, rec.Lng)
			out[i] = eventWithDistance{EventRecord: rec, Distance: &d}
		}
		c.JSON(http.StatusOK, out)
	}
}

func handleUpcomingEvents(events store.EventStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := domain.Now().UTC()
		from := now.Format("2006-01-02")
		to := now.Add(upcomingWindow).Format("2006-01-02")

		records, err := events.ListUpcoming(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch upcoming events"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func handleSearchEvents(events store.EventStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}

		records, err := events.Search(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search events"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func handleCreateEvent(events store.EventStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cand domain.ExtractionCandidate
		if err := c.ShouldBindJSON(&cand); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
			return
		}
		if cand.Name == "" || cand.LocationName == "" || cand.EventDate == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, location_name, and event_date are required"})
			return
		}

		rec, err := events.Insert(c.Request.Context(), cand)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create event"})
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

func handleListReports(reports store.ReportStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		since := domain.Now().Add(-reportWindow).UnixMilli()
		out, err := reports.ListRecentReports(c.Request.Context(), since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch live reports"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func handleCreateReport(reports store.ReportStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var report domain.LiveReport
		if err := c.ShouldBindJSON(&report); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report payload"})
			return
		}
		report.ReportTimestamp = domain.Now().UnixMilli()

		saved, err := reports.InsertReport(c.Request.Context(), report)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create live report"})
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

func handleScrapeRun(runner IngestionRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := runner.RunAll(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func handleCleanup(cleaner CleanupRunner, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := cleaner.Cleanup(c.Request.Context())
		if err != nil {
			logger.Error("cleanup pass failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// haversineMiles returns the great-circle distance between two coordinates
// in miles.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusMiles = 3959

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
