package webmark

import "time"

// CrawlEventType identifies a phase of the crawl stream.
type CrawlEventType string

// Crawl event types.
const (
	CrawlEventMapping  CrawlEventType = "mapping"
	CrawlEventPage     CrawlEventType = "page"
	CrawlEventError    CrawlEventType = "page-error"
	CrawlEventProgress CrawlEventType = "progress"
	CrawlEventDone     CrawlEventType = "done"
)

// CrawlEvent reports per-URL and aggregate crawl progress. Every event
// carries the session correlation ID so failures can be traced across
// components.
type CrawlEvent struct {
	Type          CrawlEventType
	URL           string
	Completed     int
	Total         int
	Err           error
	CorrelationID string
}

// OutputFormat selects what the writer persists per page.
type OutputFormat string

// Output formats.
const (
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
	FormatJSON     OutputFormat = "json"
)

// CrawlOptions configures a crawl session.
type CrawlOptions struct {
	// Limit caps the number of successfully processed pages. Zero means
	// the default (100). Failed pages do not count against the limit.
	Limit int

	// MaxDepth caps URL discovery depth. Zero means the default (3).
	MaxDepth int

	// Include and Exclude are URL glob patterns applied after the resume
	// check, include first.
	Include []string
	Exclude []string

	// Resume skips URLs already recorded in the manifest.
	Resume bool

	// DedupeSimilar collapses URLs that normalize to the same form after
	// stripping tracking parameters and fragments.
	DedupeSimilar bool

	// TrackingParams overrides the tracking-parameter deny list used by
	// similarity deduplication. Nil selects DefaultTrackingParams.
	TrackingParams []string

	// CacheMaxAge admits cached results younger than this age, skipping
	// the fetch. Zero disables cache reads.
	CacheMaxAge time.Duration

	// Formats selects what the writer persists. Empty means markdown.
	Formats []OutputFormat

	// AllowExternal admits discovered links on any host.
	AllowExternal bool
}

// Manifest tracks URLs already successfully processed so an interrupted
// crawl can resume without re-fetching. Implementations must provide
// mutually-exclusive check-and-update semantics.
type Manifest interface {
	// Contains reports whether the URL was already processed.
	Contains(url string) bool

	// Add records a successfully processed URL. Implementations persist
	// periodically so progress survives interruption.
	Add(url string) error

	// Flush forces pending additions to durable storage.
	Flush() error
}
