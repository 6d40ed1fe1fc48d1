package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mnskies/fireworks-ingest/internal/domain"
)

var (
	// timeRe captures clock times ("7:30 pm", "10 pm", with or without
	// periods) and the dusk/evening/nightfall literals. First match wins.
	timeRe = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*[ap]\.?m\.?|\d{1,2}\s*[ap]\.?m\.?|dusk|evening|nightfall`)

	// julyDayRe matches "july <day>" mentions, e.g. "July 5th" -> "5".
	julyDayRe = regexp.MustCompile(`july\s*(\d{1,2})`)
)

// DateMode selects how a source's blocks yield an event date.
type DateMode int

const (
	// DateModeRegex extracts "july <day>" and combines the zero-padded day
	// with the run's fixed year and month.
	DateModeRegex DateMode = iota

	// DateModeLiteral checks for the literal substrings "july 3/5/6" only.
	// Some listing pages never spell out other days.
	DateModeLiteral
)

// NameStyle selects how a candidate's display name is synthesized.
type NameStyle int

const (
	// NameByKeyword picks "July 4th Celebration" when the block mentions a
	// celebration, otherwise "Independence Day Fireworks".
	NameByKeyword NameStyle = iota

	// NameFixedFireworks always appends "July 4th Fireworks".
	NameFixedFireworks
)

// ExtractConfig holds one source's field-extraction rules. The vocabulary is
// an explicitly ordered list: scan order decides which city wins when one
// name is a substring of another, so order it carefully.
type ExtractConfig struct {
	Source           string
	Keywords         []string // relevance gate, lower-case substrings
	Vocabulary       []string // ordered location vocabulary
	UppercaseScan    bool     // match vocabulary against upper-cased block text
	DateMode         DateMode
	DefaultDate      string // ISO date applied when no date pattern matches
	Cost             string
	DescriptionLimit int
	NameStyle        NameStyle
}

// defaultEventTime is used when a block mentions no recognizable time.
const defaultEventTime = "Evening"

// Extract applies keyword gating, location matching, and date/time pattern
// extraction to one text block. Any failing gate yields ok=false — the
// absence of a usable candidate is expected and common, not an error.
func Extract(block domain.TextBlock, cfg ExtractConfig, gaz *domain.Gazetteer) (domain.ExtractionCandidate, bool) {
	if !matchesKeyword(block.Text, cfg.Keywords) {
		return domain.ExtractionCandidate{}, false
	}

	location := matchLocation(block, cfg)
	if location == "" {
		return domain.ExtractionCandidate{}, false
	}
	location = gaz.Canonical(location)

	coord := gaz.Resolve(location)

	return domain.ExtractionCandidate{
		Name:         synthesizeName(location, block.Text, cfg.NameStyle),
		LocationName: location,
		Lat:          coord.Lat,
		Lng:          coord.Lng,
		EventDate:    extractDate(block.Text, cfg),
		EventTime:    extractTime(block),
		Cost:         cfg.Cost,
		Source:       cfg.Source,
		Verified:     false,
		Description:  truncate(block.Text, cfg.DescriptionLimit),
	}, true
}

// matchesKeyword reports whether the lower-cased block mentions at least one
// relevance keyword. Rejects off-topic prose before costlier matching. An
// empty keyword set disables the gate; anchor-based strategies establish
// relevance structurally instead.
func matchesKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// matchLocation finds the block's city. An anchor set by the segmenter wins
// outright; otherwise the source vocabulary is scanned in declared order and
// the first substring hit wins.
func matchLocation(block domain.TextBlock, cfg ExtractConfig) string {
	if block.Anchor != "" {
		return block.Anchor
	}

	if cfg.UppercaseScan {
		upper := strings.ToUpper(block.Text)
		for _, city := range cfg.Vocabulary {
			if strings.Contains(upper, city) {
				return titleCase(city)
			}
		}
		return ""
	}

	lower := strings.ToLower(block.Text)
	for _, city := range cfg.Vocabulary {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}
	return ""
}

// extractTime returns the first clock time or dusk/evening/nightfall literal
// in the block, falling back to the segmenter's time hint and then to the
// "Evening" default.
func extractTime(block domain.TextBlock) string {
	if m := firstTimeMatch(block.Text); m != "" {
		return m
	}
	if block.TimeHint != "" {
		return block.TimeHint
	}
	return defaultEventTime
}

func firstTimeMatch(text string) string {
	return timeRe.FindString(text)
}

// extractDate derives the event date from the block per the source's date
// mode, defaulting to the run's configured holiday date.
func extractDate(text string, cfg ExtractConfig) string {
	lower := strings.ToLower(text)

	switch cfg.DateMode {
	case DateModeLiteral:
		for _, day := range []string{"3", "5", "6"} {
			if strings.Contains(lower, "july "+day) {
				return julyDate(cfg.DefaultDate, day)
			}
		}
	default:
		if m := julyDayRe.FindStringSubmatch(lower); m != nil {
			return julyDate(cfg.DefaultDate, m[1])
		}
	}
	return cfg.DefaultDate
}

// julyDate combines the run's fixed year with July and a zero-padded day.
func julyDate(defaultDate, day string) string {
	year := "2025"
	if len(defaultDate) >= 4 {
		year = defaultDate[:4]
	}
	if n, err := strconv.Atoi(day); err == nil {
		return fmt.Sprintf("%s-07-%02d", year, n)
	}
	return defaultDate
}

// synthesizeName composes a display name from the resolved location.
func synthesizeName(location, text string, style NameStyle) string {
	if style == NameFixedFireworks {
		return location + " July 4th Fireworks"
	}
	if strings.Contains(strings.ToLower(text), "celebration") {
		return location + " July 4th Celebration"
	}
	return location + " Independence Day Fireworks"
}

// titleCase normalizes an upper-cased vocabulary entry to display form,
// e.g. "ST. PAUL" -> "St. Paul".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// truncate bounds the description length for storage and payload size.
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit]
}
