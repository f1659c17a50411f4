// Package http provides HTTP-based implementations of webmark.Fetcher and
// webmark.SitemapService for static sites that don't require JavaScript
// rendering.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/webmark/webmark"
)

// DefaultFetchTimeout is the default timeout for HTTP requests. Lower than
// the browser fetcher's budget since no rendering happens here.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements webmark.Fetcher at compile time.
var _ webmark.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for static sites only.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient sets the HTTP client, overriding the timeout-derived default.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// Fetch retrieves the HTML content from the given URL. Failures are
// classified per the retry taxonomy: network errors, timeouts, 5xx, and 429
// are transient (EUNAVAILABLE); other 4xx are fatal.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*webmark.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, webmark.Errorf(webmark.EINVALID, "invalid request for %s: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(url, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, webmark.Errorf(webmark.EUNAVAILABLE, "reading body for %s: %v", url, err)
	}

	return &webmark.FetchResult{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
	}, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// classifyTransportError maps connection-level failures to the transient
// error class.
func classifyTransportError(url string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return webmark.Errorf(webmark.EUNAVAILABLE, "timeout fetching %s", url)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return webmark.Errorf(webmark.EUNAVAILABLE, "timeout fetching %s", url)
	}
	return webmark.Errorf(webmark.EUNAVAILABLE, "fetching %s: %v", url, err)
}

// classifyStatus maps HTTP status codes to the error taxonomy. 429 carries
// the Retry-After hint when the server provides one in seconds.
func classifyStatus(url string, resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusTooManyRequests:
		e := webmark.Errorf(webmark.EUNAVAILABLE, "rate limited fetching %s (HTTP 429)", url)
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
		return e
	case code >= 500:
		return webmark.Errorf(webmark.EUNAVAILABLE, "HTTP %d for %s", code, url)
	case code == http.StatusNotFound || code == http.StatusGone:
		return webmark.Errorf(webmark.ENOTFOUND, "HTTP %d for %s", code, url)
	default:
		return webmark.Errorf(webmark.EINVALID, "HTTP %d for %s", code, url)
	}
}
