package domain

import "time"

// TextBlock is one candidate chunk of page text produced by a segmenter.
// Blocks are consumed once by the field extractor and never persisted.
type TextBlock struct {
	Text   string
	Origin string // "paragraph", "header+sibling", or "line-pair"
	Index  int

	// Anchor carries the city name that promoted this block when the
	// segmentation rule matched an exact anchor line. Empty for rules that
	// leave location matching entirely to the extractor.
	Anchor string

	// Hints recorded by the header-follow rule from sibling elements.
	LocationHint string
	TimeHint     string
}

// ExtractionCandidate is an unpersisted event guess produced by the field
// extractor. LocationName and EventDate are always non-empty, and Lat/Lng are
// always populated from the gazetteer or its default coordinate.
type ExtractionCandidate struct {
	Name         string  `json:"name" bson:"name"`
	LocationName string  `json:"location_name" bson:"location_name"`
	Lat          float64 `json:"lat" bson:"lat"`
	Lng          float64 `json:"lng" bson:"lng"`
	EventDate    string  `json:"event_date" bson:"event_date"` // ISO date, e.g. "2025-07-04"
	EventTime    string  `json:"event_time" bson:"event_time"` // free text: "dusk", "10:00 pm", "Evening"
	Cost         string  `json:"cost" bson:"cost"`
	Source       string  `json:"source" bson:"source"`
	Verified     bool    `json:"verified" bson:"verified"`
	Description  string  `json:"description" bson:"description"`
}

// DuplicateKey returns the (location, date) pair used for cross-source
// duplicate grouping.
func (c ExtractionCandidate) DuplicateKey() string {
	return c.LocationName + "|" + c.EventDate
}

// EventRecord is a persisted candidate plus the store-assigned identity.
// The pipeline only inserts and deletes records, never mutates them in place.
type EventRecord struct {
	ID string `json:"id"`
	ExtractionCandidate
	CreatedAt time.Time `json:"created_at"`
}

// LiveReport is a user-submitted fireworks sighting. Reports age out of the
// listing surface after 30 minutes; they are never reconciled against events.
type LiveReport struct {
	ID              string  `json:"id"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	Intensity       string  `json:"intensity,omitempty"`
	Note            string  `json:"note,omitempty"`
	ReportTimestamp int64   `json:"report_timestamp"` // unix milliseconds
}
