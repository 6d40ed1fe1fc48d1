package scrape

// Configured sources. Vocabulary and anchor lists are ordered: the first
// match wins, so a city whose name contains another's must come first.

// relevanceKeywords is the shared keyword gate for prose-scanning strategies.
var relevanceKeywords = []string{"firework", "celebration", "july", "4th", "independence", "display", "festival"}

// familyFunVocabulary is scanned against upper-cased block text, in this order.
var familyFunVocabulary = []string{
	"COLUMBIA HEIGHTS", "HAM LAKE", "DULUTH", "WOODBURY", "CHANHASSEN",
	"EDEN PRAIRIE", "EDINA", "BLAINE", "MINNEAPOLIS", "ST. PAUL",
	"BLOOMINGTON", "PLYMOUTH", "BURNSVILLE", "EAGAN", "MINNETONKA",
	"LAKEVILLE", "MAPLE GROVE", "BROOKLYN PARK", "STILLWATER", "ANOKA",
	"ST LOUIS PARK", "RICHFIELD", "EXCELSIOR", "SHAKOPEE",
}

// fox9Cities appear as standalone header lines in the Fox9 listing.
var fox9Cities = []string{
	"Albert Lea", "Austin", "Bemidji", "Bloomington", "Cannon Falls",
	"Coon Rapids", "Crosby", "Crosslake", "Delano", "Detroit Lakes",
	"Duluth", "Eagan", "Edina", "Excelsior", "Ely", "Eveleth",
	"Lake City", "Mankato", "Minneapolis", "Nisswa", "Pequot Lakes",
	"Richfield", "Shakopee", "Spicer", "St. Louis Park", "Tofte",
	"Waconia", "Warroad",
}

// eventTitleKeywords gate which headings anchor a header-follow block.
var eventTitleKeywords = []string{"firework", "july", "4th", "independence", "celebration"}

// DefaultSources returns the configured announcement pages. defaultDate is
// the run's holiday date, applied when a block carries no date pattern.
func DefaultSources(defaultDate string) []Source {
	return []Source{
		familyFunTwinCities(defaultDate),
		fox9(defaultDate),
		twinCitiesFamily(defaultDate),
	}
}

// familyFunTwinCities publishes long prose paragraphs, one suburb per
// paragraph. The scan rule with the upper-cased vocabulary works on every
// layout revision the page has gone through so far.
func familyFunTwinCities(defaultDate string) Source {
	return Source{
		Name: "familyfuntwincities.com",
		URL:  "https://www.familyfuntwincities.com/twin-cities-independence-day-activities/",
		Primary: Strategy{
			Name:    "paragraph-scan",
			Segment: SegmentConfig{Rule: RuleScan},
			Extract: ExtractConfig{
				Source:           "familyfuntwincities.com",
				Keywords:         []string{"firework", "celebration", "july", "4th"},
				Vocabulary:       familyFunVocabulary,
				UppercaseScan:    true,
				DateMode:         DateModeRegex,
				DefaultDate:      defaultDate,
				Cost:             "Free",
				DescriptionLimit: 400,
				NameStyle:        NameByKeyword,
			},
		},
		DedupeKey: DedupeByLocation,
	}
}

// fox9 uses a structured list: a standalone city-name line followed by a
// one-line description. The line-pair rule anchors on the city line; the
// fallback scans all blocks when the list format changes.
func fox9(defaultDate string) Source {
	extract := ExtractConfig{
		Source: "fox9.com",
		// No keyword gate: the exact city anchor already establishes relevance.
		Keywords:         nil,
		DateMode:         DateModeLiteral,
		DefaultDate:      defaultDate,
		Cost:             "Check local details",
		DescriptionLimit: 300,
		NameStyle:        NameFixedFireworks,
	}

	fallback := extract
	fallback.Keywords = relevanceKeywords
	fallback.Vocabulary = fox9Cities

	return Source{
		Name: "fox9.com",
		URL:  "https://www.fox9.com/news/july-4th-fireworks-minnesota-2025-list",
		Primary: Strategy{
			Name:    "city-line-pair",
			Segment: SegmentConfig{Rule: RuleLinePair, AnchorCities: fox9Cities},
			Extract: extract,
		},
		Fallback: &Strategy{
			Name:    "loose-scan",
			Segment: SegmentConfig{Rule: RuleScan},
			Extract: fallback,
		},
		DedupeKey: DedupeByName,
	}
}

// twinCitiesFamily lists each event under its own heading, details in the
// next couple of elements. Falls back to a loose scan like fox9.
func twinCitiesFamily(defaultDate string) Source {
	extract := ExtractConfig{
		Source:           "twincitiesfamily.com",
		Keywords:         relevanceKeywords,
		Vocabulary:       fox9Cities,
		DateMode:         DateModeRegex,
		DefaultDate:      defaultDate,
		Cost:             "Free",
		DescriptionLimit: 400,
		NameStyle:        NameByKeyword,
	}

	return Source{
		Name: "twincitiesfamily.com",
		URL:  "https://twincitiesfamily.com/4th-of-july-events-fireworks/",
		Primary: Strategy{
			Name:    "header-follow",
			Segment: SegmentConfig{Rule: RuleHeaderFollow, TitleKeywords: eventTitleKeywords},
			Extract: extract,
		},
		Fallback: &Strategy{
			Name:    "loose-scan",
			Segment: SegmentConfig{Rule: RuleScan},
			Extract: extract,
		},
		DedupeKey: DedupeByLocation,
	}
}
