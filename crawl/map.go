// Package crawl implements URL discovery and the crawl orchestration core:
// the map engine, the page pipeline, retry policy, and per-domain rate
// limiting.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/webmark/webmark"
	"golang.org/x/sync/errgroup"
)

// Map engine defaults.
const (
	DefaultMapLimit       = 200
	DefaultMapDepth       = 3
	DefaultMapConcurrency = 5
)

// Ensure Mapper implements webmark.Mapper at compile time.
var _ webmark.Mapper = (*Mapper)(nil)

// Mapper discovers the reachable URL set from seed URLs via sitemap
// ingestion and breadth-first link traversal under bounded concurrency.
type Mapper struct {
	// Fetcher retrieves pages during traversal and metadata annotation.
	Fetcher webmark.Fetcher

	// Sitemaps discovers sitemap URLs. Optional; nil skips the sitemap
	// phase regardless of mode.
	Sitemaps webmark.SitemapService

	// Links extracts outbound links from fetched pages.
	Links webmark.LinkExtractor

	// Extractor annotates metadata when MapOptions.WithMetadata is set.
	// Optional.
	Extractor webmark.Extractor

	// Concurrency bounds the traversal worker pool. Zero means the
	// default (5).
	Concurrency int

	// Logger receives per-URL diagnostics. Optional.
	Logger *slog.Logger
}

// mapSession carries the mutable state of one discovery run. All admission
// happens on the coordinator goroutine; only the frontier is shared with
// workers.
type mapSession struct {
	opts     webmark.MapOptions
	events   chan<- webmark.MapEvent
	frontier *Frontier
	seedHost string
	links    []webmark.MapLink
	full     bool
}

// mapFetchResult is one traversal worker's outcome.
type mapFetchResult struct {
	item       frontierItem
	discovered []string
	err        error
}

// Map streams discovery progress and terminates with a done event carrying
// the final result. The channel is closed after the terminal event; callers
// must drain it.
func (m *Mapper) Map(ctx context.Context, seeds []string, opts webmark.MapOptions) <-chan webmark.MapEvent {
	events := make(chan webmark.MapEvent, 64)
	go m.run(ctx, seeds, opts, events)
	return events
}

func (m *Mapper) run(ctx context.Context, seeds []string, opts webmark.MapOptions, events chan webmark.MapEvent) {
	defer close(events)

	if opts.Limit <= 0 {
		opts.Limit = DefaultMapLimit
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMapDepth
	}
	if opts.Sitemap == "" {
		opts.Sitemap = webmark.SitemapInclude
	}

	if len(seeds) == 0 {
		events <- webmark.MapEvent{Type: webmark.MapEventError, Err: webmark.Errorf(webmark.EINVALID, "at least one seed URL required")}
		return
	}

	normalized := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		n, err := webmark.NormalizeURL(seed)
		if err != nil {
			events <- webmark.MapEvent{Type: webmark.MapEventError, Err: err}
			return
		}
		normalized = append(normalized, n)
	}
	seedHost := hostOf(normalized[0])

	s := &mapSession{
		opts:     opts,
		events:   events,
		frontier: NewFrontier(),
		seedHost: seedHost,
	}

	// Seeds are the first records; a sitemap listing the same URLs
	// deduplicates against them.
	for _, seed := range normalized {
		s.admit(ctx, seed, 0, webmark.OriginLink)
	}

	if opts.Sitemap != webmark.SitemapSkip && m.Sitemaps != nil {
		m.sitemapPhase(ctx, s, normalized)
	}

	if opts.Sitemap != webmark.SitemapOnly {
		m.traverse(ctx, s)
	}

	if opts.WithMetadata && m.Extractor != nil && ctx.Err() == nil {
		m.annotateMetadata(ctx, s)
	}

	result := &webmark.MapResult{Links: s.links}
	if err := ctx.Err(); err != nil {
		events <- webmark.MapEvent{Type: webmark.MapEventError, Err: err, Result: result}
		return
	}
	events <- webmark.MapEvent{Type: webmark.MapEventDone, Total: len(s.links), Result: result}
}

// sitemapPhase ingests sitemap URLs at depth 0. A sitemap failure falls back
// silently to link-only traversal.
func (m *Mapper) sitemapPhase(ctx context.Context, s *mapSession, seeds []string) {
	for _, seed := range seeds {
		if ctx.Err() != nil {
			return
		}
		urls, err := m.Sitemaps.DiscoverURLs(ctx, seed)
		if err != nil {
			m.logger().Warn("sitemap discovery failed, falling back to link traversal", "seed", seed, "err", err)
			continue
		}
		for _, u := range urls {
			s.admit(ctx, u, 0, webmark.OriginSitemap)
		}
		m.emit(ctx, s.events, webmark.MapEvent{
			Type:       webmark.MapEventSitemap,
			URL:        seed,
			Discovered: len(urls),
			Total:      len(s.links),
		})
	}
}

// traverse runs breadth-first link traversal over the frontier with a
// bounded worker pool. Workers fetch and extract links; all admission and
// depth assignment happens on the coordinator, so discovery order is the
// queue's processing order, not worker completion order.
func (m *Mapper) traverse(ctx context.Context, s *mapSession) {
	concurrency := m.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultMapConcurrency
	}

	workCh := make(chan frontierItem, concurrency)
	resultCh := make(chan mapFetchResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				result := m.fetchLinks(ctx, item)
				select {
				case resultCh <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	pending := 0
	next := m.nextExpandable(s)

	for {
		if next == nil && pending == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if next != nil && !s.full {
			select {
			case <-ctx.Done():
			case workCh <- *next:
				pending++
				next = nil
			case result, ok := <-resultCh:
				if !ok {
					pending = 0
					next = nil
					continue
				}
				pending--
				m.handleDiscovered(ctx, s, result)
			}
		} else {
			select {
			case <-ctx.Done():
			case result, ok := <-resultCh:
				if !ok {
					pending = 0
					next = nil
					continue
				}
				pending--
				m.handleDiscovered(ctx, s, result)
			}
		}

		if ctx.Err() != nil {
			break
		}
		if next == nil && !s.full {
			next = m.nextExpandable(s)
		}
	}

	close(workCh)
	for range resultCh {
		// Workers already in flight; their results cannot admit past the
		// limit, and the coordinator is done.
	}
}

// nextExpandable pops frontier items until one worth fetching appears.
// Items at the depth bound are never fetched; their children would exceed
// it.
func (m *Mapper) nextExpandable(s *mapSession) *frontierItem {
	for {
		item, ok := s.frontier.Pop()
		if !ok {
			return nil
		}
		if item.depth >= s.opts.MaxDepth {
			continue
		}
		return &item
	}
}

// fetchLinks fetches one page and extracts its outbound links.
func (m *Mapper) fetchLinks(ctx context.Context, item frontierItem) mapFetchResult {
	result := mapFetchResult{item: item}

	fetched, err := m.Fetcher.Fetch(ctx, item.url)
	if err != nil {
		result.err = err
		return result
	}

	links, err := m.Links.ExtractLinks(fetched.HTML, item.url)
	if err != nil {
		result.err = err
		return result
	}
	result.discovered = links
	return result
}

// handleDiscovered admits a worker's discovered links at depth+1. A fetch
// failure drops the URL from further expansion without aborting the map.
func (m *Mapper) handleDiscovered(ctx context.Context, s *mapSession, result mapFetchResult) {
	if result.err != nil {
		m.logger().Warn("fetch failed during mapping", "url", result.item.url, "err", result.err)
		return
	}
	for _, link := range result.discovered {
		if !s.opts.AllowExternal && !webmark.SameHost(link, s.seedHost, s.opts.IncludeSubdomains) {
			continue
		}
		s.admit(ctx, link, result.item.depth+1, webmark.OriginLink)
	}
}

// annotateMetadata fetches each discovered URL once more and annotates
// title and description. Failures leave the record unannotated.
func (m *Mapper) annotateMetadata(ctx context.Context, s *mapSession) {
	concurrency := m.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultMapConcurrency
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range s.links {
		g.Go(func() error {
			link := s.links[i]
			fetched, err := m.Fetcher.Fetch(ctx, link.URL)
			if err != nil {
				m.logger().Warn("metadata fetch failed", "url", link.URL, "err", err)
				return nil
			}
			extracted, err := m.Extractor.Extract(fetched.HTML, link.URL)
			if err != nil {
				return nil
			}
			mu.Lock()
			s.links[i].Title = extracted.Metadata.Title
			s.links[i].Description = extracted.Metadata.Description
			mu.Unlock()
			m.emit(ctx, s.events, webmark.MapEvent{
				Type:  webmark.MapEventMetadata,
				URL:   link.URL,
				Total: len(s.links),
			})
			return nil
		})
	}
	_ = g.Wait()
}

// admit normalizes, filters, deduplicates, and records one URL. Returns
// false when the URL is rejected or already known. Admission past the limit
// never happens; hitting the limit stops the session exactly.
func (s *mapSession) admit(ctx context.Context, rawURL string, depth int, origin webmark.LinkOrigin) bool {
	if s.full {
		return false
	}

	normalized, err := webmark.NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	if s.opts.IgnoreQueryParams {
		normalized = stripQuery(normalized)
	}
	if s.opts.Search != "" && !strings.Contains(strings.ToLower(normalized), strings.ToLower(s.opts.Search)) {
		return false
	}
	if !s.frontier.Push(normalized, depth, origin) {
		return false
	}

	s.links = append(s.links, webmark.MapLink{URL: normalized, Depth: depth, Origin: origin})
	if len(s.links) >= s.opts.Limit {
		s.full = true
	}

	select {
	case s.events <- webmark.MapEvent{
		Type:       webmark.MapEventURL,
		URL:        normalized,
		Discovered: len(s.links),
	}:
	case <-ctx.Done():
	}
	return true
}

func (m *Mapper) emit(ctx context.Context, events chan<- webmark.MapEvent, ev webmark.MapEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func (m *Mapper) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func stripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
