package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	MongoURI      string
	MongoDatabase string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	FetchTimeout time.Duration
	UserAgent    string

	// DefaultEventDate is the holiday date applied when a block carries no
	// date pattern. One value per run, not a literal scattered across
	// extractors.
	DefaultEventDate string

	// CleanupInterval drives the background duplicate-cleanup loop.
	// Zero disables the loop; cleanup stays reachable via the trigger API.
	CleanupInterval time.Duration

	// Kafka change feed, enabled when brokers are set.
	KafkaBrokers   []string
	KafkaFeedTopic string
	FeedEnabled    bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cleanupInterval, err := parseDuration("CLEANUP_INTERVAL", "6h")
	if err != nil || cleanupInterval < 0 {
		return nil, errors.New("invalid CLEANUP_INTERVAL")
	}

	defaultDate := envOrDefault("DEFAULT_EVENT_DATE", "2025-07-04")
	if _, err := time.Parse("2006-01-02", defaultDate); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_EVENT_DATE %q: expected YYYY-MM-DD", defaultDate)
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		MongoURI:      envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: envOrDefault("MONGO_DATABASE", "fireworks"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FetchTimeout: fetchTimeout,
		UserAgent:    envOrDefault("USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),

		DefaultEventDate: defaultDate,
		CleanupInterval:  cleanupInterval,

		KafkaBrokers:   brokers,
		KafkaFeedTopic: envOrDefault("KAFKA_FEED_TOPIC", "fireworks-events"),
		FeedEnabled:    len(brokers) > 0,
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.MongoDatabase == "" {
		return nil, errors.New("MONGO_DATABASE is required")
	}
	if cfg.FeedEnabled && cfg.KafkaFeedTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_FEED_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
