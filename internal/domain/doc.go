// Package domain models scraped Independence Day fireworks events for the
// Minnesota metro area.
//
// # Data Sources
//
// Events are extracted from loosely structured announcement pages (city
// listings, local news roundups). Page markup is unstable, so extraction is
// heuristic: keyword gates, ordered city-vocabulary scans, and a small set of
// date/time patterns. A missed extraction is expected and harmless; the worst
// outcome is reduced recall, never a crash.
//
// # Field Conventions
//
// Event date:
//
//	ISO calendar date, e.g. "2025-07-05". Pages rarely spell out full dates;
//	a "July <day>" mention sets the day, otherwise the run's configured
//	default holiday date applies.
//
// Event time:
//
//	Free text, preserved as matched: a clock time ("10:00 pm", "10 pm") or
//	one of the literals "dusk", "evening", "nightfall". Blocks with no time
//	mention default to "Evening".
//
// Coordinates:
//
//	Resolved through a fixed gazetteer of ~40 Minnesota cities. Unknown
//	locations fall back to the Minneapolis coordinate rather than blocking
//	event creation. Lat/Lng are therefore never null.
//
// # Duplicate Semantics
//
// Two independent checks, OR-ed: an exact name match, and a
// (location_name, event_date) match. The second catches the same underlying
// event announced under different names by different sources. The store
// converges to at most one record per (location, date) pair after a cleanup
// pass; transient duplicates between passes are tolerated.
package domain
