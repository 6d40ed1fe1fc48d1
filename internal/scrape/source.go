package scrape

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mnskies/fireworks-ingest/internal/domain"
)

// PageFetcher retrieves raw markup for one URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Strategy couples a segmentation rule and an extraction rule. Running it
// over a document yields zero or more candidates.
type Strategy struct {
	Name    string
	Segment SegmentConfig
	Extract ExtractConfig
}

// Run segments the markup and extracts a candidate from each block.
func (s Strategy) Run(markup string, gaz *domain.Gazetteer) ([]domain.ExtractionCandidate, error) {
	blocks, err := Segment(markup, s.Segment)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", s.Name, err)
	}

	var candidates []domain.ExtractionCandidate
	for _, block := range blocks {
		if c, ok := Extract(block, s.Extract, gaz); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// Source is one configured announcement page with its extraction strategies.
// When the primary strategy yields nothing — page markup is unstable and
// change-prone — the looser fallback strategy trades precision for recall.
type Source struct {
	Name      string
	URL       string
	Primary   Strategy
	Fallback  *Strategy
	DedupeKey DedupeKey
}

// Scrape fetches the source page once and runs the primary strategy over it,
// falling back when the primary yields no candidates. The returned batch is
// already deduplicated.
func (s Source) Scrape(ctx context.Context, fetcher PageFetcher, gaz *domain.Gazetteer, logger *slog.Logger) ([]domain.ExtractionCandidate, error) {
	markup, err := fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.Name, err)
	}

	candidates, err := s.Primary.Run(markup, gaz)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && s.Fallback != nil {
		logger.Info("primary strategy found no candidates, trying fallback",
			"source", s.Name, "strategy", s.Fallback.Name)
		candidates, err = s.Fallback.Run(markup, gaz)
		if err != nil {
			return nil, err
		}
	}

	return Dedupe(candidates, s.DedupeKey), nil
}
