// Command webmark maps, crawls, and converts documentation sites to markdown.
package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/webmark/webmark"
	"github.com/webmark/webmark/crawl"
	"github.com/webmark/webmark/fs"
	"github.com/webmark/webmark/goquery"
	"github.com/webmark/webmark/htmltomarkdown"
	webhttp "github.com/webmark/webmark/http"
	"github.com/webmark/webmark/rod"
	webslog "github.com/webmark/webmark/slog"
	"github.com/webmark/webmark/sqlite"
	"github.com/webmark/webmark/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache directory. Set before calling Run().
	CacheDir string

	// Index database path. Set before calling Run().
	DBPath string

	// SQLite database, opened only for commands that need the index.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		CacheDir: defaultCacheDir(),
		DBPath:   defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webmark"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webmark --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose)
	defer m.Close()

	switch cmd {
	case "map":
		fetcher, err := m.newFetcher(cli.Map.Browser, deps.Logger, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		extractor := goquery.NewExtractor()
		deps.Mapper = &crawl.Mapper{
			Fetcher:     fetcher,
			Sitemaps:    webslog.NewLoggingSitemapService(webhttp.NewSitemapService(nil), deps.Logger),
			Links:       extractor,
			Extractor:   extractor,
			Concurrency: cli.Map.Concurrency,
			Logger:      deps.Logger,
		}

	case "crawl":
		fetcher, err := m.newFetcher(cli.Crawl.Browser, deps.Logger, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		cache, err := m.newCache(deps.Logger)
		if err != nil {
			return err
		}

		manifest, err := fs.NewManifest(filepath.Join(cli.Crawl.Output, "manifest.json"))
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		defer manifest.Close()

		linkExtractor := goquery.NewExtractor()
		var extractor webmark.Extractor = goquery.NewExtractor(
			goquery.WithOnlyMainContent(!cli.Crawl.RawContent),
		)
		if cli.Crawl.Readability {
			extractor = trafilatura.NewExtractor()
		}

		var index webmark.DocumentIndex
		if cli.Crawl.Index {
			if err := m.openDB(stderr); err != nil {
				return err
			}
			index = sqlite.NewIndex(m.DB)
		}

		deps.Crawler = &crawl.Crawler{
			Mapper: &crawl.Mapper{
				Fetcher:     fetcher,
				Sitemaps:    webslog.NewLoggingSitemapService(webhttp.NewSitemapService(nil), deps.Logger),
				Links:       linkExtractor,
				Extractor:   linkExtractor,
				Concurrency: cli.Crawl.Concurrency,
				Logger:      deps.Logger,
			},
			Fetcher:     fetcher,
			Extractor:   extractor,
			Converter:   htmltomarkdown.NewConverter(),
			Cache:       cache,
			Writer:      fs.NewWriter(cli.Crawl.Output, fs.WithFormats(outputFormats(cli.Crawl.Format))),
			Manifest:    manifest,
			Index:       index,
			Limiter:     crawl.NewDomainLimiter(cli.Crawl.RPS),
			Concurrency: cli.Crawl.Concurrency,
			Logger:      deps.Logger,
		}

	case "cache":
		cache, err := m.newCache(deps.Logger)
		if err != nil {
			return err
		}
		deps.Cache = cache

	case "docs":
		if err := m.openDB(stderr); err != nil {
			return err
		}
		deps.Index = sqlite.NewIndex(m.DB)
	}

	return kongCtx.Run(deps)
}

// newFetcher selects between the plain HTTP fetcher and the headless browser.
func (m *Main) newFetcher(browser bool, logger *stdlog.Logger, stderr io.Writer) (webmark.Fetcher, error) {
	if !browser {
		return webslog.NewLoggingFetcher(webhttp.NewFetcher(), logger), nil
	}
	fetcher, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return webslog.NewLoggingFetcher(fetcher, logger), nil
}

func (m *Main) newCache(logger *stdlog.Logger) (webmark.CacheStore, error) {
	cache, err := fs.NewCache(m.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %q: %w", m.CacheDir, err)
	}
	return webslog.NewLoggingCacheStore(cache, logger), nil
}

func (m *Main) openDB(stderr io.Writer) error {
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set WEBMARK_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	return nil
}

func newLogger(stderr io.Writer, verbose bool) *stdlog.Logger {
	if !verbose {
		return stdlog.New(stdlog.DiscardHandler)
	}
	return stdlog.New(stdlog.NewTextHandler(stderr, &stdlog.HandlerOptions{
		Level: stdlog.LevelDebug,
	}))
}

func outputFormats(names []string) []webmark.OutputFormat {
	formats := make([]webmark.OutputFormat, 0, len(names))
	for _, n := range names {
		formats = append(formats, webmark.OutputFormat(n))
	}
	return formats
}

func defaultCacheDir() string {
	if dir := os.Getenv("WEBMARK_CACHE"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webmark-cache"
	}
	return filepath.Join(home, ".webmark", "cache")
}

func defaultDBPath() string {
	if path := os.Getenv("WEBMARK_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webmark.db"
	}
	dir := filepath.Join(home, ".webmark")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webmark.db")
}
