package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/webmark/webmark"
	"github.com/webmark/webmark/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Mapper  webmark.Mapper
	Crawler *crawl.Crawler
	Cache   webmark.CacheStore
	Index   webmark.DocumentIndex
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Map   MapCmd   `cmd:"" help:"Discover the URL set reachable from a seed URL"`
	Crawl CrawlCmd `cmd:"" help:"Crawl a site and save its pages as markdown"`
	Cache CacheCmd `cmd:"" help:"Inspect and maintain the page cache"`
	Docs  DocsCmd  `cmd:"" help:"List documents recorded in the crawl index"`

	Verbose bool `short:"v" help:"Enable debug logging on stderr"`
}

// MapCmd is the "map" subcommand.
type MapCmd struct {
	URL []string `arg:"" help:"Seed URL(s)"`

	Limit             int    `short:"l" default:"200" help:"Maximum number of URLs to return"`
	Depth             int    `short:"d" default:"3" help:"Maximum traversal depth"`
	Sitemap           string `enum:"include,skip,only" default:"include" help:"Sitemap handling: include, skip, or only"`
	Subdomains        bool   `help:"Admit links on subdomains of the seed host"`
	External          bool   `help:"Admit links on any host"`
	Search            string `short:"s" help:"Keep only URLs containing this substring"`
	IgnoreQueryParams bool   `help:"Strip query strings before deduplication"`
	Metadata          bool   `short:"m" help:"Annotate each URL with title and description"`
	Browser           bool   `short:"b" help:"Fetch pages with a headless browser"`
	Concurrency       int    `short:"c" default:"5" help:"Concurrent fetch limit"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL []string `arg:"" help:"Seed URL(s)"`

	Output        string        `short:"o" default:"crawl" help:"Output directory"`
	Limit         int           `short:"l" default:"100" help:"Maximum number of pages to save"`
	Depth         int           `short:"d" default:"3" help:"Maximum discovery depth"`
	Include       []string      `short:"i" help:"Only crawl URLs matching these glob patterns (repeatable)"`
	Exclude       []string      `short:"x" help:"Skip URLs matching these glob patterns (repeatable)"`
	Resume        bool          `short:"r" help:"Skip URLs recorded by a previous run in the output directory"`
	DedupeSimilar bool          `help:"Collapse URLs that differ only in tracking parameters"`
	External      bool          `help:"Admit discovered links on any host"`
	CacheMaxAge   time.Duration `help:"Reuse cached pages younger than this age (0 disables cache reads)"`
	Format        []string      `short:"f" enum:"markdown,html,json" default:"markdown" help:"Output format (repeatable)"`
	Browser       bool          `short:"b" help:"Fetch pages with a headless browser"`
	Readability   bool          `help:"Use generic article extraction instead of the selector pipeline"`
	RawContent    bool          `help:"Convert whole pages instead of the detected main content"`
	Concurrency   int           `short:"c" default:"10" help:"Concurrent page limit"`
	RPS           float64       `default:"2" help:"Per-domain request rate limit"`
	Index         bool          `help:"Record crawled documents in the SQLite index"`
}

// CacheCmd is the "cache" subcommand.
type CacheCmd struct {
	Stats CacheStatsCmd `cmd:"" help:"Show cache entry count and size"`
	Prune CachePruneCmd `cmd:"" help:"Remove cache entries older than a maximum age"`
	Clear CacheClearCmd `cmd:"" help:"Remove cache entries"`
}

// CacheStatsCmd is the "cache stats" subcommand.
type CacheStatsCmd struct{}

// CachePruneCmd is the "cache prune" subcommand.
type CachePruneCmd struct {
	MaxAge time.Duration `arg:"" help:"Remove entries older than this age (e.g. 24h)"`
}

// CacheClearCmd is the "cache clear" subcommand.
type CacheClearCmd struct {
	URL string `arg:"" optional:"" help:"Clear only this URL's entry (default: all entries)"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Full bool `help:"Show full markdown content"`
}
