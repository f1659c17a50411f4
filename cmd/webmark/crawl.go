package main

import (
	"fmt"

	"github.com/webmark/webmark"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	events := deps.Crawler.Crawl(deps.Ctx, c.URL, webmark.CrawlOptions{
		Limit:         c.Limit,
		MaxDepth:      c.Depth,
		Include:       c.Include,
		Exclude:       c.Exclude,
		Resume:        c.Resume,
		DedupeSimilar: c.DedupeSimilar,
		CacheMaxAge:   c.CacheMaxAge,
		Formats:       outputFormats(c.Format),
		AllowExternal: c.External,
	})

	var failed int
	var done webmark.CrawlEvent
	for ev := range events {
		switch ev.Type {
		case webmark.CrawlEventProgress:
			fmt.Fprintf(deps.Stdout, "Found %d URLs\n", ev.Total)
		case webmark.CrawlEventPage:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", ev.Completed, ev.Total, ev.URL)
		case webmark.CrawlEventError:
			if ev.URL == "" {
				fmt.Fprintf(deps.Stderr, "error: %s (id %s)\n", webmark.ErrorMessage(ev.Err), ev.CorrelationID)
				continue
			}
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", ev.URL, webmark.ErrorMessage(ev.Err))
		case webmark.CrawlEventDone:
			done = ev
		}
	}

	fmt.Fprintf(deps.Stdout, "Saved %d pages to %s", done.Completed, c.Output)
	if failed > 0 {
		fmt.Fprintf(deps.Stdout, " (%d failed)", failed)
	}
	fmt.Fprintln(deps.Stdout)

	if deps.Ctx.Err() != nil {
		return fmt.Errorf("crawl interrupted: %w", deps.Ctx.Err())
	}
	return nil
}
