// Package slog provides logging decorators for webmark services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/webmark/webmark"
)

// Ensure LoggingFetcher implements webmark.Fetcher.
var _ webmark.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   webmark.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webmark.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (result *webmark.FetchResult, err error) {
	defer func(begin time.Time) {
		status := 0
		size := 0
		if result != nil {
			status = result.StatusCode
			size = len(result.HTML)
		}
		f.logger.Info("page fetch",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
