package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/webmark/webmark"
)

// Ensure Cache implements webmark.CacheStore at compile time.
var _ webmark.CacheStore = (*Cache)(nil)

// Cache stores converted results as one JSON file per entry, named by the
// cache key of the normalized URL. Entries never self-expire; freshness is
// decided at read time against the caller's maxAge.
type Cache struct {
	dir string
	now func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheClock overrides the time source. Used by tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache rooted at dir, creating the directory if needed.
func NewCache(dir string, opts ...CacheOption) (*Cache, error) {
	c := &Cache{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) entryPath(url string) string {
	return filepath.Join(c.dir, webmark.CacheKey(url)+".json")
}

// Get returns the cached entry for the URL if it is younger than maxAge.
// A maxAge <= 0 always misses. Unreadable or corrupt entries count as misses.
func (c *Cache) Get(url string, maxAge time.Duration) (*webmark.CacheEntry, error) {
	if maxAge <= 0 {
		return nil, webmark.Errorf(webmark.ENOTFOUND, "cache disabled for this lookup")
	}

	data, err := os.ReadFile(c.entryPath(url))
	if err != nil {
		return nil, webmark.Errorf(webmark.ENOTFOUND, "no cache entry for %s", url)
	}

	var entry webmark.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, webmark.Errorf(webmark.ENOTFOUND, "unreadable cache entry for %s", url)
	}

	if c.now().Sub(entry.CreatedAt) > maxAge {
		return nil, webmark.Errorf(webmark.ENOTFOUND, "cache entry expired for %s", url)
	}

	return &entry, nil
}

// Put stores the entry under the URL's cache key, replacing any previous
// entry. The write is atomic.
func (c *Cache) Put(url string, entry *webmark.CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return webmark.Errorf(webmark.EINTERNAL, "encoding cache entry: %v", err)
	}
	return writeFileAtomic(c.entryPath(url), data)
}

// Prune removes entries older than maxAge and returns the count removed.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, err
	}

	pruned := 0
	now := c.now()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry webmark.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if now.Sub(entry.CreatedAt) > maxAge {
			if err := os.Remove(path); err == nil {
				pruned++
			}
		}
	}
	return pruned, nil
}

// Clear removes the entry for the URL, or every entry when url is empty,
// returning the count removed.
func (c *Cache) Clear(url string) (int, error) {
	if url != "" {
		err := os.Remove(c.entryPath(url))
		if err != nil {
			if os.IsNotExist(err) {
				return 0, nil
			}
			return 0, err
		}
		return 1, nil
	}

	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, path := range paths {
		if err := os.Remove(path); err == nil {
			cleared++
		}
	}
	return cleared, nil
}

// Stats reports entry count and total stored bytes.
func (c *Cache) Stats() (*webmark.CacheStats, error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	stats := &webmark.CacheStats{}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalSize += info.Size()
	}
	return stats, nil
}
