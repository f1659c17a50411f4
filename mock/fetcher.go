// Package mock provides function-field mock implementations of the domain
// interfaces for use in tests.
package mock

import (
	"context"

	"github.com/webmark/webmark"
)

var _ webmark.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webmark.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*webmark.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*webmark.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
