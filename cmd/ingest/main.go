package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/mnskies/fireworks-ingest/internal/adapter/http"
	kafkaadapter "github.com/mnskies/fireworks-ingest/internal/adapter/kafka"
	"github.com/mnskies/fireworks-ingest/internal/config"
	"github.com/mnskies/fireworks-ingest/internal/domain"
	"github.com/mnskies/fireworks-ingest/internal/observability"
	"github.com/mnskies/fireworks-ingest/internal/pipeline"
	"github.com/mnskies/fireworks-ingest/internal/reconcile"
	"github.com/mnskies/fireworks-ingest/internal/scrape"
	"github.com/mnskies/fireworks-ingest/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}

	// Change feed is optional; the pipeline takes a nil publisher when no
	// brokers are configured.
	var feed pipeline.EventPublisher
	var feedWriter *kafkaadapter.Writer
	if cfg.FeedEnabled {
		feedWriter = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaFeedTopic, logger)
		feed = feedWriter
		logger.Info("change feed enabled", "topic", cfg.KafkaFeedTopic)
	}

	gaz := domain.NewGazetteer()
	fetcher := scrape.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)
	sources := scrape.DefaultSources(cfg.DefaultEventDate)
	reconciler := reconcile.New(db, logger, metrics)
	runner := pipeline.New(fetcher, sources, gaz, db, reconciler, feed, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, db, db, runner, reconciler, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.CleanupInterval > 0 {
		go runCleanupLoop(ctx, reconciler, cfg.CleanupInterval, logger)
	}

	logger.Info("service started",
		"addr", cfg.HTTPAddr, "sources", len(sources), "default_date", cfg.DefaultEventDate)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if feedWriter != nil {
		if err := feedWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// runCleanupLoop periodically prunes duplicate groups. The pass is idempotent
// and safe alongside ingestion, so the loop needs no coordination.
func runCleanupLoop(ctx context.Context, reconciler *reconcile.Reconciler, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := reconciler.Cleanup(ctx); err != nil {
				logger.Error("scheduled cleanup failed", "error", err)
			}
		}
	}
}
