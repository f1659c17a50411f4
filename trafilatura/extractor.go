// Package trafilatura provides content extraction backed by go-trafilatura's
// readability heuristics. It is an alternative to the goquery extractor for
// pages without a recognizable main-content container.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/webmark/webmark"
	"golang.org/x/net/html"
)

// Ensure Extractor implements webmark.Extractor at compile time.
var _ webmark.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content with metadata.
func (e *Extractor) Extract(rawHTML, sourceURL string) (*webmark.ExtractResult, error) {
	if rawHTML == "" {
		return nil, webmark.Errorf(webmark.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(sourceURL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, webmark.Errorf(webmark.EINTERNAL, "content extraction failed: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &webmark.ExtractResult{
		ContentHTML: contentHTML,
		Metadata: webmark.Metadata{
			Title:       result.Metadata.Title,
			Description: result.Metadata.Description,
		},
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
