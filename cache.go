package webmark

import (
	"time"
)

// CacheEntry is a stored fetch+convert result, keyed by the content-addressed
// hash of its normalized URL.
type CacheEntry struct {
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
	Markdown    string    `json:"markdown"`
	HTML        string    `json:"html,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
}

// CacheStats summarizes cache storage.
type CacheStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"totalSize"`
}

// CacheStore is a content-addressed, TTL-aware store of converted results.
// Entries never self-expire; storage grows until Prune or Clear is called
// explicitly. Implementations are safe for concurrent use across independent
// keys but provide no cross-key transactions, and must write entries
// atomically so a crash cannot leave a partial entry visible.
type CacheStore interface {
	// Get returns the entry for the URL if one exists and is younger than
	// maxAge. A maxAge <= 0 always misses. Returns ENOTFOUND on miss.
	Get(url string, maxAge time.Duration) (*CacheEntry, error)

	// Put stores the entry under the URL's cache key, replacing any
	// previous entry.
	Put(url string, entry *CacheEntry) error

	// Prune removes entries older than maxAge and returns the count.
	Prune(maxAge time.Duration) (int, error)

	// Clear removes the entry for the URL, or every entry when url is
	// empty, returning the count removed.
	Clear(url string) (int, error)

	// Stats reports entry count and total stored bytes.
	Stats() (*CacheStats, error)
}
