package mock

import (
	"time"

	"github.com/webmark/webmark"
)

var _ webmark.CacheStore = (*CacheStore)(nil)

// CacheStore is a mock implementation of webmark.CacheStore.
type CacheStore struct {
	GetFn   func(url string, maxAge time.Duration) (*webmark.CacheEntry, error)
	PutFn   func(url string, entry *webmark.CacheEntry) error
	PruneFn func(maxAge time.Duration) (int, error)
	ClearFn func(url string) (int, error)
	StatsFn func() (*webmark.CacheStats, error)
}

func (c *CacheStore) Get(url string, maxAge time.Duration) (*webmark.CacheEntry, error) {
	return c.GetFn(url, maxAge)
}

func (c *CacheStore) Put(url string, entry *webmark.CacheEntry) error {
	return c.PutFn(url, entry)
}

func (c *CacheStore) Prune(maxAge time.Duration) (int, error) {
	return c.PruneFn(maxAge)
}

func (c *CacheStore) Clear(url string) (int, error) {
	return c.ClearFn(url)
}

func (c *CacheStore) Stats() (*webmark.CacheStats, error) {
	return c.StatsFn()
}
