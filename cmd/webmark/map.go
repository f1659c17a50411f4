package main

import (
	"fmt"

	"github.com/webmark/webmark"
)

// Run executes the map command.
func (c *MapCmd) Run(deps *Dependencies) error {
	events := deps.Mapper.Map(deps.Ctx, c.URL, webmark.MapOptions{
		Limit:             c.Limit,
		MaxDepth:          c.Depth,
		Sitemap:           webmark.SitemapMode(c.Sitemap),
		IncludeSubdomains: c.Subdomains,
		AllowExternal:     c.External,
		Search:            c.Search,
		IgnoreQueryParams: c.IgnoreQueryParams,
		WithMetadata:      c.Metadata,
	})

	var result *webmark.MapResult
	var terminalErr error
	for ev := range events {
		switch ev.Type {
		case webmark.MapEventSitemap:
			fmt.Fprintf(deps.Stderr, "  sitemap: %d URLs from %s\n", ev.Discovered, ev.URL)
		case webmark.MapEventDone:
			result = ev.Result
		case webmark.MapEventError:
			result = ev.Result
			terminalErr = ev.Err
		}
	}

	if terminalErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmark.ErrorMessage(terminalErr))
		return terminalErr
	}

	for _, link := range result.Links {
		if link.Title != "" {
			fmt.Fprintf(deps.Stdout, "%s\t%s\n", link.URL, link.Title)
			continue
		}
		fmt.Fprintln(deps.Stdout, link.URL)
	}
	fmt.Fprintf(deps.Stderr, "Found %d URLs\n", len(result.Links))

	return nil
}
