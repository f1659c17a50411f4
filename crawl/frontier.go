package crawl

import (
	"sync"

	"github.com/webmark/webmark"
	"github.com/webmark/webmark/bloom"
)

// Frontier sizing for the visited-set Bloom filter.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// frontierItem is one queued unit of discovery work.
type frontierItem struct {
	url    string
	depth  int
	origin webmark.LinkOrigin
}

// Frontier is a FIFO queue of URLs awaiting traversal with an integrated
// visited set. The Bloom filter answers the common "never seen" case without
// touching the exact set; positives are confirmed against an exact map so
// deduplication is never wrong in either direction. Check-and-mark is atomic
// with respect to concurrent workers. Frontier is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	fast  *bloom.Filter
	seen  map[string]bool
	queue []frontierItem
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		fast: bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
		seen: make(map[string]bool),
	}
}

// Push marks the URL as seen and enqueues it in one atomic step. Returns
// false if the URL was already seen, in which case nothing is enqueued.
func (f *Frontier) Push(url string, depth int, origin webmark.LinkOrigin) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fast.TestAndAdd(url) && f.seen[url] {
		return false
	}
	f.seen[url] = true
	f.queue = append(f.queue, frontierItem{url: url, depth: depth, origin: origin})
	return true
}

// Pop returns the next item in FIFO order. The bool result is false when the
// frontier is empty.
func (f *Frontier) Pop() (frontierItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return frontierItem{}, false
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, true
}

// Seen reports whether the URL was ever pushed.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.fast.Test(url) {
		return false
	}
	return f.seen[url]
}

// Len returns the number of queued items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
