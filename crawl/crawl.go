package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/webmark/webmark"
)

// Orchestrator defaults.
const (
	DefaultCrawlLimit       = 100
	DefaultCrawlConcurrency = 10
)

// Crawler processes every admitted URL exactly once: cache lookup, fetch
// with retry and rate limiting, extraction, markdown conversion, and
// persistence. Per-URL failures are isolated and reported as events.
type Crawler struct {
	// Mapper discovers the URL set to crawl.
	Mapper webmark.Mapper

	// Fetcher retrieves pages on cache misses.
	Fetcher webmark.Fetcher

	// Extractor locates main content; Converter turns it into markdown.
	Extractor webmark.Extractor
	Converter webmark.Converter

	// Cache short-circuits fetching when a fresh entry exists. Optional.
	Cache webmark.CacheStore

	// Writer persists documents.
	Writer webmark.DocumentWriter

	// Manifest records completed URLs for resume. Optional.
	Manifest webmark.Manifest

	// Index records documents for later querying. Optional.
	Index webmark.DocumentIndex

	// Limiter paces fetches per domain. Optional.
	Limiter *DomainLimiter

	// Retry wraps fetches. Nil uses defaults.
	Retry *Retry

	// Concurrency bounds the page worker pool. Zero means the default (10).
	Concurrency int

	// Logger receives per-URL diagnostics. Optional.
	Logger *slog.Logger

	// Now is the time source for FetchedAt stamps. Nil uses time.Now.
	Now func() time.Time
}

// pageResult is one worker's outcome for a single URL.
type pageResult struct {
	url string
	err error
}

// Crawl maps the seeds, filters the result, and processes admitted URLs
// under bounded concurrency. The stream terminates with a done event and the
// channel is closed after it; callers must drain. Failed pages do not count
// against the limit and are retried on the next resumed run.
func (c *Crawler) Crawl(ctx context.Context, seeds []string, opts webmark.CrawlOptions) <-chan webmark.CrawlEvent {
	events := make(chan webmark.CrawlEvent, 64)
	go c.run(ctx, seeds, opts, events)
	return events
}

func (c *Crawler) run(ctx context.Context, seeds []string, opts webmark.CrawlOptions, events chan webmark.CrawlEvent) {
	defer close(events)

	if opts.Limit <= 0 {
		opts.Limit = DefaultCrawlLimit
	}
	correlationID := webmark.NewCorrelationID()

	filter, err := webmark.NewURLFilter(opts.Include, opts.Exclude)
	if err != nil {
		events <- webmark.CrawlEvent{Type: webmark.CrawlEventError, Err: err, CorrelationID: correlationID}
		events <- webmark.CrawlEvent{Type: webmark.CrawlEventDone, CorrelationID: correlationID}
		return
	}

	mapped, err := c.mapPhase(ctx, seeds, opts, events, correlationID)
	if err != nil {
		events <- webmark.CrawlEvent{Type: webmark.CrawlEventError, Err: err, CorrelationID: correlationID}
		events <- webmark.CrawlEvent{Type: webmark.CrawlEventDone, CorrelationID: correlationID}
		return
	}

	admitted := c.admit(mapped, filter, opts)
	c.emit(ctx, events, webmark.CrawlEvent{
		Type:          webmark.CrawlEventProgress,
		Total:         len(admitted),
		CorrelationID: correlationID,
	})

	completed := c.dispatch(ctx, admitted, opts, events, correlationID)

	if c.Manifest != nil {
		if err := c.Manifest.Flush(); err != nil {
			c.logger().Warn("manifest flush failed", "err", err)
		}
	}

	events <- webmark.CrawlEvent{
		Type:          webmark.CrawlEventDone,
		Completed:     completed,
		Total:         len(admitted),
		CorrelationID: correlationID,
	}
}

// mapPhase runs discovery and forwards progress as mapping events.
func (c *Crawler) mapPhase(ctx context.Context, seeds []string, opts webmark.CrawlOptions, events chan webmark.CrawlEvent, correlationID string) ([]webmark.MapLink, error) {
	// Discovery must yield at least as many records as the crawl limit,
	// otherwise a limit above the mapper's default could never be reached.
	mapEvents := c.Mapper.Map(ctx, seeds, webmark.MapOptions{
		Limit:         opts.Limit,
		MaxDepth:      opts.MaxDepth,
		AllowExternal: opts.AllowExternal,
	})

	var result *webmark.MapResult
	var terminalErr error
	for ev := range mapEvents {
		switch ev.Type {
		case webmark.MapEventURL:
			c.emit(ctx, events, webmark.CrawlEvent{
				Type:          webmark.CrawlEventMapping,
				URL:           ev.URL,
				Total:         ev.Discovered,
				CorrelationID: correlationID,
			})
		case webmark.MapEventDone:
			result = ev.Result
		case webmark.MapEventError:
			result = ev.Result
			terminalErr = ev.Err
		}
	}

	if terminalErr != nil {
		return nil, terminalErr
	}
	if result == nil {
		return nil, webmark.Errorf(webmark.EINTERNAL, "map stream ended without a result")
	}
	return result.Links, nil
}

// admit applies the admission pipeline in order: resume check, include
// patterns, exclude patterns, similarity deduplication.
func (c *Crawler) admit(links []webmark.MapLink, filter *webmark.URLFilter, opts webmark.CrawlOptions) []string {
	var admitted []string
	similar := make(map[string]bool)

	for _, link := range links {
		if opts.Resume && c.Manifest != nil && c.Manifest.Contains(link.URL) {
			continue
		}
		if !filter.Match(link.URL) {
			continue
		}
		if opts.DedupeSimilar {
			canonical, err := webmark.NormalizeSimilar(link.URL, opts.TrackingParams)
			if err == nil {
				if similar[canonical] {
					continue
				}
				similar[canonical] = true
			}
		}
		admitted = append(admitted, link.URL)
	}
	return admitted
}

// dispatch processes admitted URLs with a bounded worker pool. New work is
// dispatched only while successes plus in-flight pages stay under the limit,
// so the success count stops at the limit exactly.
func (c *Crawler) dispatch(ctx context.Context, admitted []string, opts webmark.CrawlOptions, events chan webmark.CrawlEvent, correlationID string) int {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultCrawlConcurrency
	}

	workCh := make(chan string)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range workCh {
				result := pageResult{url: url, err: c.processPage(ctx, url, opts)}
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

	successes := 0
	pending := 0
	idx := 0
	total := len(admitted)

	handle := func(result pageResult) {
		pending--
		if result.err != nil {
			c.logger().Warn("page failed", "url", result.url, "err", result.err)
			c.emit(ctx, events, webmark.CrawlEvent{
				Type:          webmark.CrawlEventError,
				URL:           result.url,
				Completed:     successes,
				Total:         total,
				Err:           result.err,
				CorrelationID: correlationID,
			})
			return
		}
		successes++
		c.emit(ctx, events, webmark.CrawlEvent{
			Type:          webmark.CrawlEventPage,
			URL:           result.url,
			Completed:     successes,
			Total:         total,
			CorrelationID: correlationID,
		})
	}

	for {
		done := idx >= total || successes >= opts.Limit
		if done && pending == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if !done && successes+pending < opts.Limit {
			select {
			case <-ctx.Done():
			case workCh <- admitted[idx]:
				idx++
				pending++
			case result, ok := <-resultCh:
				if !ok {
					pending = 0
					continue
				}
				handle(result)
			}
		} else {
			select {
			case <-ctx.Done():
			case result, ok := <-resultCh:
				if !ok {
					pending = 0
					continue
				}
				handle(result)
			}
		}
	}

	close(workCh)
	for result := range resultCh {
		handle(result)
	}

	return successes
}

// processPage runs the per-URL pipeline: cache lookup, rate-limited fetch
// with retry, extraction, conversion, cache write, persistence. Each URL's
// lifecycle is strictly sequential; workers share no extraction state.
func (c *Crawler) processPage(ctx context.Context, url string, opts webmark.CrawlOptions) error {
	if c.Cache != nil && opts.CacheMaxAge > 0 {
		if entry, err := c.Cache.Get(url, opts.CacheMaxAge); err == nil {
			return c.persist(ctx, &webmark.Document{
				SourceURL:   url,
				Title:       entry.Title,
				Description: entry.Description,
				Markdown:    entry.Markdown,
				HTML:        entry.HTML,
				ContentHash: contentHash(entry.Markdown),
				FetchedAt:   entry.CreatedAt,
			})
		}
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx, hostOf(url)); err != nil {
			return err
		}
	}

	retry := c.Retry
	if retry == nil {
		retry = &Retry{}
	}
	var fetched *webmark.FetchResult
	err := retry.Do(ctx, func(ctx context.Context) error {
		var ferr error
		fetched, ferr = c.Fetcher.Fetch(ctx, url)
		return ferr
	})
	if err != nil {
		return err
	}

	extracted, err := c.Extractor.Extract(fetched.HTML, url)
	if err != nil {
		return err
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return err
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	if c.Cache != nil {
		entry := &webmark.CacheEntry{
			URL:         url,
			CreatedAt:   now,
			Markdown:    markdown,
			HTML:        extracted.ContentHTML,
			Title:       extracted.Metadata.Title,
			Description: extracted.Metadata.Description,
		}
		if err := c.Cache.Put(url, entry); err != nil {
			c.logger().Warn("cache write failed", "url", url, "err", err)
		}
	}

	return c.persist(ctx, &webmark.Document{
		SourceURL:   url,
		Title:       extracted.Metadata.Title,
		Description: extracted.Metadata.Description,
		Markdown:    markdown,
		HTML:        extracted.ContentHTML,
		ContentHash: contentHash(markdown),
		FetchedAt:   now,
	})
}

// persist writes the document and records completion. A manifest entry is
// added only after a successful write, so interrupted pages are retried on
// resume.
func (c *Crawler) persist(ctx context.Context, doc *webmark.Document) error {
	if err := c.Writer.WriteDocument(ctx, doc); err != nil {
		return err
	}
	if c.Manifest != nil {
		if err := c.Manifest.Add(doc.SourceURL); err != nil {
			return err
		}
	}
	if c.Index != nil {
		if err := c.Index.RecordDocument(ctx, doc); err != nil {
			c.logger().Warn("index write failed", "url", doc.SourceURL, "err", err)
		}
	}
	return nil
}

func (c *Crawler) emit(ctx context.Context, events chan webmark.CrawlEvent, ev webmark.CrawlEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// contentHash fingerprints converted markdown for change detection.
func contentHash(markdown string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(markdown))
}
