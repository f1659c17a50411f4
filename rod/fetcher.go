// Package rod fetches rendered HTML through a headless Chrome browser.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/webmark/webmark"
)

// Ensure Fetcher implements webmark.Fetcher at compile time.
var _ webmark.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxPages is the number of pages fetched before the browser is
// recycled. Chrome accumulates memory under load and the baseline never
// returns to initial levels even with proper page cleanup.
const DefaultMaxPages = 75

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The browser is recycled after maxPages fetches. Fetcher is safe for
// concurrent use by multiple goroutines.
type Fetcher struct {
	wait     webmark.WaitPolicy
	timeout  time.Duration
	maxPages int64

	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	closed    bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithWaitPolicy sets the page readiness condition to wait for before
// capturing HTML. Defaults to webmark.WaitLoad.
func WithWaitPolicy(p webmark.WaitPolicy) Option {
	return func(f *Fetcher) {
		f.wait = p
	}
}

// WithTimeout sets the per-fetch timeout. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxPages sets the number of pages before browser recycling.
func WithMaxPages(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		wait:     webmark.WaitLoad,
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.launchBrowser(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to the URL, waits for the configured readiness condition,
// and returns the rendered HTML with the document response status.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*webmark.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, err := f.acquireBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, webmark.Errorf(webmark.EUNAVAILABLE, "opening page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	// Subscribe before navigating so the document response is not missed.
	var resp proto.NetworkResponseReceived
	waitResp := page.WaitEvent(&resp)
	waitNav := page.WaitNavigation(lifecycleEvent(f.wait))

	if err := page.Navigate(url); err != nil {
		return nil, classifyFetchErr(ctx, err, url)
	}
	waitNav()
	waitResp()

	if err := ctx.Err(); err != nil {
		return nil, classifyFetchErr(ctx, err, url)
	}

	status := 0
	if resp.Response != nil {
		status = resp.Response.Status
	}
	if err := statusError(status, url); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, classifyFetchErr(ctx, err, url)
	}

	f.recordPage()

	return &webmark.FetchResult{HTML: html, StatusCode: status}, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.closeBrowserLocked()
}

// LauncherPID returns the process ID of the browser launcher. Used by tests
// to verify cleanup.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}

// acquireBrowser returns the current browser, recycling it first when the
// page count has reached maxPages.
func (f *Fetcher) acquireBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, webmark.Errorf(webmark.EINTERNAL, "fetcher is closed")
	}
	if f.pageCount >= f.maxPages {
		f.recycleBrowserLocked()
	}
	return f.browser, nil
}

func (f *Fetcher) recordPage() {
	f.mu.Lock()
	f.pageCount++
	f.mu.Unlock()
}

// launchBrowser starts a new browser instance with stability flags.
func (f *Fetcher) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = lnchr
	return nil
}

// closeBrowserLocked shuts down the current browser and launcher.
// Must be called with mu held.
func (f *Fetcher) closeBrowserLocked() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// recycleBrowserLocked starts a fresh browser and closes the old one. The
// old browser is kept when the new launch fails. Must be called with mu held.
func (f *Fetcher) recycleBrowserLocked() {
	oldBrowser := f.browser
	oldLauncher := f.launcher
	f.browser = nil
	f.launcher = nil

	if err := f.launchBrowser(); err != nil {
		f.browser = oldBrowser
		f.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	f.pageCount = 0
}

// lifecycleEvent maps a wait policy to the Chrome lifecycle event to wait
// for after navigation.
func lifecycleEvent(p webmark.WaitPolicy) proto.PageLifecycleEventName {
	switch p {
	case webmark.WaitDOMContent:
		return proto.PageLifecycleEventNameDOMContentLoaded
	case webmark.WaitNetworkIdle:
		return proto.PageLifecycleEventNameNetworkIdle
	default:
		return proto.PageLifecycleEventNameLoad
	}
}

// classifyFetchErr maps navigation failures to application error codes.
// Context errors pass through unchanged so callers can distinguish
// cancellation; deadline expiry inside the fetch window is a transient
// failure.
func classifyFetchErr(ctx context.Context, err error, url string) error {
	switch ctx.Err() {
	case context.Canceled:
		return context.Canceled
	case context.DeadlineExceeded:
		e := webmark.Errorf(webmark.EUNAVAILABLE, "fetch timed out: %s", url)
		return e
	}
	return webmark.Errorf(webmark.EUNAVAILABLE, "fetching %s: %v", url, err)
}

// statusError maps a document response status to an application error.
// A zero status means no response event was observed; the rendered page is
// used as-is in that case.
func statusError(status int, url string) error {
	switch {
	case status == 0:
		return nil
	case status == 404 || status == 410:
		return webmark.Errorf(webmark.ENOTFOUND, "page not found: %s", url)
	case status == 429:
		return webmark.Errorf(webmark.EUNAVAILABLE, "rate limited: %s", url)
	case status >= 500:
		return webmark.Errorf(webmark.EUNAVAILABLE, "server error %d: %s", status, url)
	case status >= 400:
		return webmark.Errorf(webmark.EINVALID, "request failed with status %d: %s", status, url)
	}
	return nil
}
