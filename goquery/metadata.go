package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/webmark/webmark"
)

// extractMetadata reads title and description from the document head.
// Open Graph values take precedence over the plain tags.
func extractMetadata(doc *goquery.Document) webmark.Metadata {
	meta := webmark.Metadata{}

	if og := metaContent(doc, "meta[property='og:title']"); og != "" {
		meta.Title = og
	} else {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if og := metaContent(doc, "meta[property='og:description']"); og != "" {
		meta.Description = og
	} else {
		meta.Description = metaContent(doc, "meta[name='description']")
	}

	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}
