package mock

import (
	"sync"

	"github.com/webmark/webmark"
)

var _ webmark.Manifest = (*Manifest)(nil)

// Manifest is a mock implementation of webmark.Manifest. When the function
// fields are nil it behaves as a thread-safe in-memory manifest, which is
// what most orchestrator tests need.
type Manifest struct {
	ContainsFn func(url string) bool
	AddFn      func(url string) error
	FlushFn    func() error

	mu   sync.Mutex
	urls map[string]bool
}

func (m *Manifest) Contains(url string) bool {
	if m.ContainsFn != nil {
		return m.ContainsFn(url)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.urls[url]
}

func (m *Manifest) Add(url string) error {
	if m.AddFn != nil {
		return m.AddFn(url)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.urls == nil {
		m.urls = make(map[string]bool)
	}
	m.urls[url] = true
	return nil
}

func (m *Manifest) Flush() error {
	if m.FlushFn != nil {
		return m.FlushFn()
	}
	return nil
}

// URLs returns the recorded URLs when the in-memory behavior is in use.
func (m *Manifest) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.urls))
	for u := range m.urls {
		urls = append(urls, u)
	}
	return urls
}
