package slog

import (
	"log/slog"
	"time"

	"github.com/webmark/webmark"
)

// Ensure LoggingCacheStore implements webmark.CacheStore.
var _ webmark.CacheStore = (*LoggingCacheStore)(nil)

// LoggingCacheStore wraps a CacheStore with hit/miss logging.
type LoggingCacheStore struct {
	next   webmark.CacheStore
	logger *slog.Logger
}

// NewLoggingCacheStore creates a new LoggingCacheStore.
func NewLoggingCacheStore(next webmark.CacheStore, logger *slog.Logger) *LoggingCacheStore {
	return &LoggingCacheStore{next: next, logger: logger}
}

// Get delegates to the wrapped store and logs the hit or miss.
func (c *LoggingCacheStore) Get(url string, maxAge time.Duration) (entry *webmark.CacheEntry, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache lookup",
			"url", url,
			"hit", err == nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.Get(url, maxAge)
}

// Put delegates to the wrapped store and logs the write.
func (c *LoggingCacheStore) Put(url string, entry *webmark.CacheEntry) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache write",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Put(url, entry)
}

// Prune delegates to the wrapped store and logs the removal count.
func (c *LoggingCacheStore) Prune(maxAge time.Duration) (removed int, err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache prune",
			"removed", removed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Prune(maxAge)
}

// Clear delegates to the wrapped store and logs the removal count.
func (c *LoggingCacheStore) Clear(url string) (removed int, err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache clear",
			"url", url,
			"removed", removed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Clear(url)
}

// Stats delegates to the wrapped store.
func (c *LoggingCacheStore) Stats() (*webmark.CacheStats, error) {
	return c.next.Stats()
}
