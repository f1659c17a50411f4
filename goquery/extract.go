// Package goquery provides the DOM-based content extractor: boilerplate
// removal, site-specific preprocessing, main-content location, and metadata
// extraction.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/webmark/webmark"
)

// Ensure Extractor implements webmark.Extractor at compile time.
var _ webmark.Extractor = (*Extractor)(nil)

// removeTags are stripped from every document before extraction.
var removeTags = []string{
	"script", "style", "noscript", "iframe", "svg", "path", "canvas",
	"video", "audio", "source", "track", "embed", "object", "param",
	"template",
}

// boilerplateTags are structural elements removed when extracting main
// content, unless they look like the content region itself.
var boilerplateTags = []string{"nav", "footer", "header", "aside"}

// boilerplateSelectors match non-content chrome: navigation, cookie banners,
// popups, ads, social widgets, hidden elements, related-content blocks.
var boilerplateSelectors = []string{
	"[role='navigation']",
	"[role='banner']",
	"[role='contentinfo']",
	".navigation", ".nav-menu", ".navbar", ".menu", ".sidebar",
	".toc", ".table-of-contents",
	"[class*='site-footer']", "[id*='site-footer']", ".footer", "#footer",
	"[class*='cookie']", "[id*='cookie']",
	"[class*='consent']", "[id*='consent']",
	"[class*='gdpr']", "[class*='privacy-banner']",
	"[class*='popup']", "[class*='modal']", "[class*='overlay']",
	"[class*='advertisement']", "[class*='ad-wrapper']",
	"[class*='sponsored']", "[class*='promo']",
	"[class*='social-share']", "[class*='share-buttons']", "[class*='social-links']",
	"img[width='1']", "img[height='1']",
	"[style*='display:none']", "[style*='display: none']",
	"[hidden]", ".hidden",
	"[class*='related-']", "[class*='recommended']", "[class*='also-read']",
	"[class*='comment']", "#comments", ".disqus",
}

// mainContentSelectors locate the content region, framework-specific
// containers first, then generic semantic containers. First match wins.
var mainContentSelectors = []string{
	"#mw-content-text",
	".mw-parser-output",
	".rst-content",
	".document",
	".markdown-body",
	".notion-page-content",
	".md-content",
	"main[role='main']",
	"main#content",
	"main.content",
	"main",
	"article.post-content",
	"article.entry-content",
	"article.content",
	"article",
	"[role='main']",
	"#main-content",
	"#content",
	"#main",
	"#article",
	"#post",
	".main-content",
	".content",
	".post-content",
	".article-content",
	".entry-content",
	".page-content",
	".body-content",
}

// Extractor extracts main content from rendered HTML. Output is
// deterministic for fixed input and configuration.
type Extractor struct {
	onlyMainContent bool
	preprocessors   []Preprocessor
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithOnlyMainContent controls whether boilerplate removal and main-content
// location run. Defaults to true.
func WithOnlyMainContent(v bool) ExtractorOption {
	return func(e *Extractor) {
		e.onlyMainContent = v
	}
}

// WithPreprocessors overrides the site-specific preprocessor registry.
func WithPreprocessors(ps []Preprocessor) ExtractorOption {
	return func(e *Extractor) {
		e.preprocessors = ps
	}
}

// NewExtractor creates an Extractor with the default preprocessor registry.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		onlyMainContent: true,
		preprocessors:   DefaultPreprocessors(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the extraction pipeline: strip non-content tags, apply at
// most one site-specific preprocessor, remove boilerplate, locate the main
// content region, and resolve relative URLs against sourceURL. Metadata is
// always taken from the original document head, before any mutation.
//
// Preprocessors run even when main-content extraction is disabled; they
// repair DOM structure that converts poorly regardless of scoping.
func (e *Extractor) Extract(html, sourceURL string) (*webmark.ExtractResult, error) {
	if strings.TrimSpace(html) == "" {
		return nil, webmark.Errorf(webmark.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webmark.Errorf(webmark.EINVALID, "parsing HTML: %v", err)
	}

	meta := extractMetadata(doc)

	for _, tag := range removeTags {
		doc.Find(tag).Remove()
	}

	applyFirstPreprocessor(doc, e.preprocessors)

	if e.onlyMainContent {
		removeBoilerplate(doc)
	}

	content := doc.Selection
	if e.onlyMainContent {
		if main := findMainContent(doc); main != nil {
			content = main
		} else if body := doc.Find("body"); body.Length() > 0 {
			content = body
		}
	} else if body := doc.Find("body"); body.Length() > 0 {
		content = body
	}

	if err := resolveURLs(content, sourceURL); err != nil {
		return nil, err
	}

	contentHTML, err := goquery.OuterHtml(content.First())
	if err != nil {
		return nil, webmark.Errorf(webmark.EINTERNAL, "rendering content: %v", err)
	}

	return &webmark.ExtractResult{
		ContentHTML: contentHTML,
		Metadata:    meta,
	}, nil
}

// removeBoilerplate strips structural and pattern-matched chrome in place,
// sparing elements that look like the main content region.
func removeBoilerplate(doc *goquery.Document) {
	for _, tag := range boilerplateTags {
		doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
			if !looksLikeMainContent(sel) {
				sel.Remove()
			}
		})
	}
	for _, selector := range boilerplateSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if !looksLikeMainContent(sel) {
				sel.Remove()
			}
		})
	}
}

// looksLikeMainContent guards boilerplate removal against stripping the
// content region on sites that put content inside a header/nav-named node.
func looksLikeMainContent(sel *goquery.Selection) bool {
	id := strings.ToLower(sel.AttrOr("id", ""))
	class := strings.ToLower(sel.AttrOr("class", ""))
	role := strings.ToLower(sel.AttrOr("role", ""))
	combined := id + " " + class + " " + role

	for _, indicator := range []string{"main", "content", "article", "post", "entry"} {
		if strings.Contains(combined, indicator) {
			return true
		}
	}
	return false
}

// findMainContent returns the first matching content container, or nil when
// no selector matches.
func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel.First()
		}
	}
	return nil
}
