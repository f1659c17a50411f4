package mock

import (
	"github.com/webmark/webmark"
)

var _ webmark.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webmark.Extractor.
type Extractor struct {
	ExtractFn func(html, sourceURL string) (*webmark.ExtractResult, error)
}

func (e *Extractor) Extract(html, sourceURL string) (*webmark.ExtractResult, error) {
	return e.ExtractFn(html, sourceURL)
}

var _ webmark.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of webmark.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}

var _ webmark.Converter = (*Converter)(nil)

// Converter is a mock implementation of webmark.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
