package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/webmark/webmark"
)

// ExtractLinks parses HTML and returns the outbound links in document order,
// resolved to absolute URLs against baseURL. Fragments are stripped,
// pseudo-protocol links (javascript:, mailto:, tel:, data:) are skipped, and
// self-referential links are dropped. Duplicates keep their first position.
func ExtractLinks(html, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, webmark.Errorf(webmark.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webmark.Errorf(webmark.EINVALID, "parsing HTML: %v", err)
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || isPseudoProtocol(href) {
			return
		}

		resolved := resolveHref(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}

// ExtractLinks implements webmark.LinkExtractor.
func (e *Extractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return ExtractLinks(html, baseURL)
}

// resolveHref resolves href against base, strips the fragment, and drops
// self-referential results.
func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isPseudoProtocol reports whether href is a non-navigable pseudo-protocol
// link (script-triggered UI controls, mail/tel handlers, inline data).
func isPseudoProtocol(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(h, "javascript:") ||
		strings.HasPrefix(h, "mailto:") ||
		strings.HasPrefix(h, "tel:") ||
		strings.HasPrefix(h, "data:")
}

// resolveURLs rewrites relative href/src attributes under sel to absolute
// URLs using sourceURL as base. Links with javascript: pseudo-protocol are
// removed entirely rather than rendered as dead links downstream.
func resolveURLs(sel *goquery.Selection, sourceURL string) error {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return webmark.Errorf(webmark.EINVALID, "invalid source URL: %v", err)
	}

	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		h := strings.ToLower(strings.TrimSpace(href))
		if strings.HasPrefix(h, "javascript:") {
			a.Remove()
			return
		}
		if strings.HasPrefix(h, "mailto:") || strings.HasPrefix(h, "tel:") || strings.HasPrefix(h, "data:") {
			return
		}
		if ref, err := url.Parse(href); err == nil && ref.Host == "" {
			a.SetAttr("href", base.ResolveReference(ref).String())
		}
	})

	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		if ref, err := url.Parse(src); err == nil && ref.Host == "" {
			img.SetAttr("src", base.ResolveReference(ref).String())
		}
	})

	return nil
}
