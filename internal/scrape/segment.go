package scrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mnskies/fireworks-ingest/internal/domain"
)

// Rule selects how a fetched document is split into candidate text blocks.
type Rule string

const (
	// RuleScan turns every paragraph/container element into one block,
	// bounded by block length limits.
	RuleScan Rule = "scan"

	// RuleHeaderFollow anchors on event-title-looking headings and
	// concatenates the next few sibling elements into the block.
	RuleHeaderFollow Rule = "header-follow"

	// RuleLinePair anchors on lines that exactly match a known city name and
	// pairs each with the immediately following line.
	RuleLinePair Rule = "line-pair"
)

// Block length bounds for the scan rule. Shorter blocks lack context; longer
// ones are page chrome, not event copy.
const (
	defaultMinBlockLen = 50
	defaultMaxBlockLen = 1000
)

// defaultMinPairLen rejects line-pair anchors whose following line is too
// short to describe an event. Anchors are discarded, not retried.
const defaultMinPairLen = 20

// headerSiblingCount bounds how many siblings follow a header anchor.
const headerSiblingCount = 3

var whitespaceRe = regexp.MustCompile(`\s+`)

// SegmentConfig couples a segmentation rule with its per-source parameters.
type SegmentConfig struct {
	Rule Rule

	// Scan rule bounds; zero values take the defaults.
	MinBlockLen int
	MaxBlockLen int

	// TitleKeywords gate which headings anchor a header-follow block.
	TitleKeywords []string

	// AnchorCities are matched exactly against lines for the line-pair rule,
	// in declared order.
	AnchorCities []string
}

// Segment splits raw page markup into candidate text blocks per the
// configured rule. A fresh document must be re-segmented; blocks are consumed
// once downstream.
func Segment(markup string, cfg SegmentConfig) ([]domain.TextBlock, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	switch cfg.Rule {
	case RuleScan:
		return scanBlocks(doc, cfg), nil
	case RuleHeaderFollow:
		return headerFollowBlocks(doc, cfg), nil
	case RuleLinePair:
		return linePairBlocks(doc, cfg), nil
	default:
		return nil, fmt.Errorf("unknown segmentation rule %q", cfg.Rule)
	}
}

// scanBlocks emits one block per paragraph/container element, dropping blocks
// outside the length bounds regardless of content.
func scanBlocks(doc *goquery.Document, cfg SegmentConfig) []domain.TextBlock {
	minLen, maxLen := cfg.MinBlockLen, cfg.MaxBlockLen
	if minLen == 0 {
		minLen = defaultMinBlockLen
	}
	if maxLen == 0 {
		maxLen = defaultMaxBlockLen
	}

	var blocks []domain.TextBlock
	doc.Find("p, div").Each(func(_ int, sel *goquery.Selection) {
		text := normalizeSpace(sel.Text())
		if len(text) < minLen || len(text) > maxLen {
			return
		}
		blocks = append(blocks, domain.TextBlock{
			Text:   text,
			Origin: "paragraph",
			Index:  len(blocks),
		})
	})
	return blocks
}

// headerFollowBlocks anchors on headings that pass the title keyword gate and
// concatenates the next few sibling elements into each anchor's block. The
// first sibling mentioning a venue word becomes the location hint; the first
// clock-pattern match becomes the time hint.
func headerFollowBlocks(doc *goquery.Document, cfg SegmentConfig) []domain.TextBlock {
	var blocks []domain.TextBlock
	doc.Find("h1, h2, h3, h4, h5").Each(func(_ int, header *goquery.Selection) {
		title := normalizeSpace(header.Text())
		if !looksLikeEventTitle(title, cfg.TitleKeywords) {
			return
		}

		var parts []string
		var locationHint string
		header.NextAll().EachWithBreak(func(i int, sib *goquery.Selection) bool {
			if i >= headerSiblingCount || isHeading(sib) {
				return false
			}
			text := normalizeSpace(sib.Text())
			if text == "" {
				return true
			}
			parts = append(parts, text)
			if locationHint == "" && mentionsVenue(text) {
				locationHint = text
			}
			return true
		})
		if len(parts) == 0 {
			return
		}

		body := strings.Join(parts, " ")
		blocks = append(blocks, domain.TextBlock{
			Text:         title + " " + body,
			Origin:       "header+sibling",
			Index:        len(blocks),
			LocationHint: locationHint,
			TimeHint:     firstTimeMatch(body),
		})
	})
	return blocks
}

// linePairBlocks splits the document body into non-empty lines and promotes a
// line to an anchor when it exactly matches a known city name. The block is
// the immediately following line, paired only when that line carries enough
// trailing content.
func linePairBlocks(doc *goquery.Document, cfg SegmentConfig) []domain.TextBlock {
	lines := strings.Split(doc.Find("body").Text(), "\n")

	var blocks []domain.TextBlock
	for i := 0; i < len(lines)-1; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		city := matchAnchorCity(line, cfg.AnchorCities)
		if city == "" {
			continue
		}

		next := strings.TrimSpace(lines[i+1])
		if len(next) <= defaultMinPairLen {
			continue
		}

		blocks = append(blocks, domain.TextBlock{
			Text:   next,
			Origin: "line-pair",
			Index:  len(blocks),
			Anchor: city,
		})
	}
	return blocks
}

// isHeading reports whether a sibling starts the next listing entry.
func isHeading(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "h1", "h2", "h3", "h4", "h5":
		return true
	}
	return false
}

// looksLikeEventTitle reports whether a heading passes the title keyword gate.
func looksLikeEventTitle(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mentionsVenue reports whether text names a typical fireworks venue.
func mentionsVenue(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "park") ||
		strings.Contains(lower, "lake") ||
		strings.Contains(lower, "downtown")
}

// matchAnchorCity returns the first configured city that equals the line
// exactly. Containment is not enough: news pages mention cities mid-sentence
// constantly, and only standalone header lines mark a listing entry.
func matchAnchorCity(line string, cities []string) string {
	for _, city := range cities {
		if line == city {
			return city
		}
	}
	return ""
}

func normalizeSpace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
