package scrape

import "github.com/mnskies/fireworks-ingest/internal/domain"

// DedupeKey selects which field identifies a duplicate within one batch.
type DedupeKey int

const (
	// DedupeByLocation keeps the first candidate per location name. Source
	// pages repeat the same city across sidebar mentions and table rows.
	DedupeByLocation DedupeKey = iota

	// DedupeByName keeps the first candidate per display name.
	DedupeByName
)

// Dedupe removes intra-batch duplicates, keeping the first occurrence of each
// key. Order-preserving and idempotent: running it over its own output is a
// no-op.
func Dedupe(candidates []domain.ExtractionCandidate, key DedupeKey) []domain.ExtractionCandidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]domain.ExtractionCandidate, 0, len(candidates))
	for _, c := range candidates {
		k := c.LocationName
		if key == DedupeByName {
			k = c.Name
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}
