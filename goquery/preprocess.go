package goquery

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Preprocessor repairs framework-specific HTML that converts poorly to
// markdown. Detect checks DOM signatures; Apply mutates the document in
// place.
type Preprocessor struct {
	Name   string
	Detect func(doc *goquery.Document) bool
	Apply  func(doc *goquery.Document)
}

// DefaultPreprocessors returns the registry in evaluation order.
func DefaultPreprocessors() []Preprocessor {
	return []Preprocessor{
		{
			Name:   "mkdocs-material",
			Detect: detectMkDocsMaterial,
			Apply:  preprocessMkDocsMaterial,
		},
		{
			Name:   "wordpress",
			Detect: detectWordPress,
			Apply:  preprocessWordPress,
		},
	}
}

// applyFirstPreprocessor evaluates the registry in order and applies the
// first preprocessor whose signature matches. At most one applies per page.
// Returns the applied preprocessor's name, or empty.
func applyFirstPreprocessor(doc *goquery.Document, registry []Preprocessor) string {
	for _, p := range registry {
		if p.Detect(doc) {
			p.Apply(doc)
			return p.Name
		}
	}
	return ""
}

// detectMkDocsMaterial checks for MkDocs Material theme markers: the
// md-content wrapper, data-md-* attributes, or a combination of
// theme-specific element patterns.
func detectMkDocsMaterial(doc *goquery.Document) bool {
	if doc.Find(".md-content, .md-main, [data-md-component]").Length() > 0 {
		return true
	}

	indicators := 0
	for _, selector := range []string{"a.headerlink", "div.admonition", "div.tabbed-set", "table.highlighttable"} {
		if doc.Find(selector).Length() > 0 {
			indicators++
		}
	}
	return indicators >= 2
}

// preprocessMkDocsMaterial repairs MkDocs Material HTML: strips heading
// permalink anchors, unwraps line-numbered code tables, converts admonitions
// to blockquotes, and flattens tabbed content panels.
func preprocessMkDocsMaterial(doc *goquery.Document) {
	doc.Find("a.headerlink").Remove()

	doc.Find("table.highlighttable").Each(func(_ int, table *goquery.Selection) {
		code := table.Find("td.code code").First()
		if code.Length() == 0 {
			return
		}
		codeText := code.Text()

		lang := ""
		highlight := table.ParentsFiltered("div.highlight").First()
		for _, cls := range strings.Fields(highlight.AttrOr("class", "")) {
			if strings.HasPrefix(cls, "language-") {
				lang = strings.TrimPrefix(cls, "language-")
				break
			}
		}

		class := ""
		if lang != "" {
			class = fmt.Sprintf(" class=%q", "language-"+lang)
		}
		table.ReplaceWithHtml(fmt.Sprintf("<pre><code%s>%s</code></pre>", class, html.EscapeString(codeText)))
	})

	doc.Find("div.admonition").Each(func(_ int, admonition *goquery.Selection) {
		admonType := "Note"
		for _, cls := range strings.Fields(admonition.AttrOr("class", "")) {
			if cls != "admonition" {
				admonType = strings.ToUpper(cls[:1]) + cls[1:]
				break
			}
		}

		title := admonType
		titleEl := admonition.Find("p.admonition-title").First()
		if titleEl.Length() > 0 {
			if t := strings.TrimSpace(titleEl.Text()); t != "" {
				title = t
			}
			titleEl.Remove()
		}

		content := strings.TrimSpace(admonition.Text())
		admonition.ReplaceWithHtml(fmt.Sprintf(
			"<blockquote><p><strong>%s:</strong> %s</p></blockquote>",
			html.EscapeString(title), html.EscapeString(content),
		))
	})

	doc.Find("div.tabbed-set").Each(func(_ int, tabbedSet *goquery.Selection) {
		var labels []string
		tabbedSet.Find("div.tabbed-labels label").Each(func(_ int, label *goquery.Selection) {
			if t := strings.TrimSpace(label.Text()); t != "" {
				labels = append(labels, t)
			}
		})

		var b strings.Builder
		b.WriteString("<div>")
		tabbedSet.Find("div.tabbed-block").Each(func(i int, block *goquery.Selection) {
			label := fmt.Sprintf("Tab %d", i+1)
			if i < len(labels) {
				label = labels[i]
			}
			inner, err := block.Html()
			if err != nil {
				return
			}
			b.WriteString("<h4>")
			b.WriteString(html.EscapeString(label))
			b.WriteString("</h4>")
			b.WriteString(inner)
		})
		b.WriteString("</div>")
		tabbedSet.ReplaceWithHtml(b.String())
	})
}

// detectWordPress checks for WordPress markers: wp- prefixed classes,
// post-related classes, or the generator meta tag.
func detectWordPress(doc *goquery.Document) bool {
	if doc.Find("[class*='wp-']").Length() > 0 {
		return true
	}
	if doc.Find("[class*='post-'], .hentry, .entry-content").Length() > 0 {
		return true
	}
	gen := doc.Find("meta[name='generator']").First().AttrOr("content", "")
	return strings.Contains(strings.ToLower(gen), "wordpress")
}

// preprocessWordPress repairs WordPress theme HTML: promotes the page title
// into the content region and removes theme navigation, share widgets,
// related-post blocks, and lazy-load placeholders.
func preprocessWordPress(doc *goquery.Document) {
	var titleText string
	for _, selector := range []string{"#Subheader h1.title", ".entry-title", ".page-title", "header h1"} {
		if h1 := doc.Find(selector).First(); h1.Length() > 0 {
			titleText = strings.TrimSpace(h1.Text())
			break
		}
	}
	if titleText != "" {
		for _, selector := range []string{"main", "article", "#Content", ".entry-content"} {
			if main := doc.Find(selector).First(); main.Length() > 0 {
				main.PrependHtml("<h1>" + html.EscapeString(titleText) + "</h1>")
				break
			}
		}
	}

	for _, selector := range []string{
		".fixed-nav", ".fixed-nav-prev", ".fixed-nav-next",
		".post-navigation", ".nav-links", ".post-pager",
		".share-simple-wrapper", ".sharedaddy", ".social-share",
		".related-posts", ".section-post-related", ".yarpp-related",
		".rich-reviews", ".feedback-form", "[class*='rating']", "[class*='review-form']",
	} {
		doc.Find(selector).Remove()
	}

	doc.Find("img[src^='data:image/svg+xml']").Remove()
}
