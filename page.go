package webmark

import (
	"context"
	"time"
)

// WaitPolicy controls how long a fetcher waits for a page to render before
// capturing its HTML.
type WaitPolicy string

// Supported wait policies. Static fetchers ignore the policy.
const (
	WaitLoad        WaitPolicy = "load"
	WaitDOMContent  WaitPolicy = "domcontentloaded"
	WaitNetworkIdle WaitPolicy = "networkidle"
)

// FetchResult holds the outcome of fetching a single page.
type FetchResult struct {
	// HTML is the page content, post-rendering for browser fetchers.
	HTML string

	// StatusCode is the HTTP status of the final response, when known.
	StatusCode int
}

// Fetcher retrieves HTML from URLs. Implementations may use plain HTTP or
// browser automation for JavaScript-rendered content, and must classify
// failures as transient (EUNAVAILABLE) or fatal so the retry policy can
// decide whether another attempt is worthwhile.
type Fetcher interface {
	// Fetch retrieves the page at url. The context controls timeout and
	// cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Close releases fetcher resources.
	Close() error
}

// Document represents one successfully crawled page, ready for persistence.
type Document struct {
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Markdown    string    `json:"markdown"`
	HTML        string    `json:"html,omitempty"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.SourceURL == "" {
		return Errorf(EINVALID, "document source URL required")
	}
	if d.Markdown == "" {
		return Errorf(EINVALID, "document markdown required")
	}
	return nil
}

// DocumentWriter persists documents to an output target.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *Document) error
}

// DocumentIndex records crawled documents for later querying.
type DocumentIndex interface {
	// RecordDocument inserts or replaces the index row for doc.SourceURL.
	RecordDocument(ctx context.Context, doc *Document) error

	// ListDocuments returns index rows in fetch order.
	ListDocuments(ctx context.Context) ([]*Document, error)
}
