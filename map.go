package webmark

import "context"

// SitemapMode controls how sitemap discovery combines with link traversal.
type SitemapMode string

// Sitemap handling modes.
const (
	SitemapInclude SitemapMode = "include" // sitemap plus BFS traversal
	SitemapSkip    SitemapMode = "skip"    // BFS traversal only
	SitemapOnly    SitemapMode = "only"    // sitemap only, no traversal
)

// LinkOrigin records how a URL entered the map result.
type LinkOrigin string

// Link origins.
const (
	OriginSitemap LinkOrigin = "sitemap"
	OriginLink    LinkOrigin = "link"
)

// MapLink is a single discovered URL record. Identity is the normalized URL
// string; no two records in a MapResult share one.
type MapLink struct {
	URL         string     `json:"url"`
	Depth       int        `json:"depth"`
	Origin      LinkOrigin `json:"origin"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
}

// MapResult is the ordered outcome of URL discovery. Order is discovery
// order, which is deterministic for a fixed site and configuration.
type MapResult struct {
	Links []MapLink `json:"links"`
}

// MapEventType identifies a phase of the discovery stream.
type MapEventType string

// Map event types.
const (
	MapEventSitemap  MapEventType = "sitemap-fetched"
	MapEventURL      MapEventType = "url-discovered"
	MapEventMetadata MapEventType = "metadata-extracted"
	MapEventDone     MapEventType = "done"
	MapEventError    MapEventType = "error"
)

// MapEvent reports discovery progress. The stream is finite and terminates
// with exactly one done or error event carrying the final result.
type MapEvent struct {
	Type       MapEventType
	URL        string
	Discovered int
	Total      int
	Err        error
	Result     *MapResult
}

// MapOptions bounds and shapes URL discovery.
type MapOptions struct {
	// Limit caps the number of returned URL records. Zero means the
	// default (200).
	Limit int

	// MaxDepth caps BFS traversal depth. Zero means the default (3).
	MaxDepth int

	// Sitemap selects the sitemap handling mode. Empty means include.
	Sitemap SitemapMode

	// IncludeSubdomains admits links on subdomains of the seed host.
	IncludeSubdomains bool

	// AllowExternal admits links on any host.
	AllowExternal bool

	// Search keeps only URLs containing this substring, case-insensitive.
	Search string

	// IgnoreQueryParams strips query strings before deduplication.
	IgnoreQueryParams bool

	// WithMetadata fetches each discovered URL once more to annotate
	// title and description.
	WithMetadata bool
}

// Mapper discovers the reachable URL set from one or more seed URLs.
type Mapper interface {
	// Map streams discovery progress and terminates with a done event
	// carrying the final MapResult. The returned channel is closed after
	// the terminal event. Cancel the context to stop early.
	Map(ctx context.Context, seeds []string, opts MapOptions) <-chan MapEvent
}

// SitemapService discovers URLs from a site's sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from the origin's sitemaps. It checks
	// robots.txt Sitemap directives first, then falls back to
	// /sitemap.xml. Sitemap indexes are resolved recursively.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
