package fs

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/webmark/webmark"
)

// Ensure Manifest implements webmark.Manifest at compile time.
var _ webmark.Manifest = (*Manifest)(nil)

// DefaultFlushInterval is the number of additions between automatic flushes.
const DefaultFlushInterval = 10

type manifestFile struct {
	ScrapedURLs []string `json:"scraped_urls"`
}

// Manifest tracks successfully processed URLs in a JSON file so an
// interrupted crawl can resume. Additions accumulate in memory and flush to
// disk every flushEvery additions and on Close. Manifest is safe for
// concurrent use.
type Manifest struct {
	path       string
	flushEvery int

	mu      sync.Mutex
	seen    map[string]bool
	order   []string
	pending int
}

// ManifestOption configures a Manifest.
type ManifestOption func(*Manifest)

// WithFlushInterval sets the number of additions between automatic flushes.
func WithFlushInterval(n int) ManifestOption {
	return func(m *Manifest) {
		m.flushEvery = n
	}
}

// NewManifest opens the manifest at path, loading any existing entries so a
// resumed crawl sees prior progress.
func NewManifest(path string, opts ...ManifestOption) (*Manifest, error) {
	m := &Manifest{
		path:       path,
		flushEvery: DefaultFlushInterval,
		seen:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}

	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, webmark.Errorf(webmark.EINTERNAL, "corrupt manifest at %s: %v", path, err)
	}
	for _, u := range mf.ScrapedURLs {
		if !m.seen[u] {
			m.seen[u] = true
			m.order = append(m.order, u)
		}
	}
	return m, nil
}

// Contains reports whether the URL was already processed.
func (m *Manifest) Contains(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[url]
}

// Add records a successfully processed URL, flushing to disk when the
// pending count reaches the flush interval.
func (m *Manifest) Add(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen[url] {
		return nil
	}
	m.seen[url] = true
	m.order = append(m.order, url)
	m.pending++

	if m.pending >= m.flushEvery {
		return m.flushLocked()
	}
	return nil
}

// Flush forces pending additions to durable storage.
func (m *Manifest) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushLocked()
}

// Close flushes and releases the manifest.
func (m *Manifest) Close() error {
	return m.Flush()
}

// Len returns the number of recorded URLs.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// flushLocked writes the manifest atomically. Must be called with mu held.
func (m *Manifest) flushLocked() error {
	urls := m.order
	if urls == nil {
		urls = []string{}
	}
	data, err := json.MarshalIndent(manifestFile{ScrapedURLs: urls}, "", "  ")
	if err != nil {
		return webmark.Errorf(webmark.EINTERNAL, "encoding manifest: %v", err)
	}
	if err := writeFileAtomic(m.path, data); err != nil {
		return err
	}
	m.pending = 0
	return nil
}
