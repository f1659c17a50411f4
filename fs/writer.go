package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/webmark/webmark"
)

// Ensure Writer implements webmark.DocumentWriter at compile time.
var _ webmark.DocumentWriter = (*Writer)(nil)

// Writer persists crawled documents to a directory, one file per page and
// format. File names derive from the URL path; name collisions between
// distinct URLs get a short hash suffix. Safe for concurrent use.
type Writer struct {
	dir     string
	formats []webmark.OutputFormat

	mu      sync.Mutex
	claimed map[string]string // base name -> source URL that owns it
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithFormats selects the output formats to persist. Defaults to markdown.
func WithFormats(formats []webmark.OutputFormat) WriterOption {
	return func(w *Writer) {
		if len(formats) > 0 {
			w.formats = formats
		}
	}
}

// NewWriter creates a Writer that writes to dir.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:     dir,
		formats: []webmark.OutputFormat{webmark.FormatMarkdown},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteDocument writes the document in each configured format.
func (w *Writer) WriteDocument(ctx context.Context, doc *webmark.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	base, err := w.baseName(doc.SourceURL)
	if err != nil {
		return err
	}

	for _, format := range w.formats {
		switch format {
		case webmark.FormatMarkdown:
			content := formatFrontmatter(doc) + doc.Markdown
			if err := writeFileAtomic(filepath.Join(w.dir, base+".md"), []byte(content)); err != nil {
				return err
			}
		case webmark.FormatHTML:
			if doc.HTML == "" {
				continue
			}
			if err := writeFileAtomic(filepath.Join(w.dir, base+".html"), []byte(doc.HTML)); err != nil {
				return err
			}
		case webmark.FormatJSON:
			data, err := json.MarshalIndent(jsonDocument(doc), "", "  ")
			if err != nil {
				return webmark.Errorf(webmark.EINTERNAL, "encoding document: %v", err)
			}
			if err := writeFileAtomic(filepath.Join(w.dir, base+".json"), data); err != nil {
				return err
			}
		default:
			return webmark.Errorf(webmark.EINVALID, "unknown output format %q", format)
		}
	}
	return nil
}

// baseName converts the URL path to a filesystem-safe base name. When the
// name is already taken by another URL, an 8-char hash of the full URL
// disambiguates. Reservation is atomic so concurrent writers whose URLs
// sanitize to the same name cannot both claim it.
func (w *Writer) baseName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webmark.Errorf(webmark.EINVALID, "invalid document URL: %v", err)
	}

	name := sanitizeName(strings.Trim(u.Path, "/"))
	if name == "" {
		name = "index"
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.claimed == nil {
		w.claimed = make(map[string]string)
	}

	if owner, ok := w.claimed[name]; (ok && owner != rawURL) || (!ok && w.exists(name)) {
		sum := sha256.Sum256([]byte(rawURL))
		name = name + "_" + hex.EncodeToString(sum[:])[:8]
	}
	w.claimed[name] = rawURL
	return name, nil
}

func (w *Writer) exists(base string) bool {
	for _, ext := range []string{".md", ".html", ".json"} {
		if _, err := os.Stat(filepath.Join(w.dir, base+ext)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeName maps a URL path to a flat file name: slashes become
// underscores and characters outside [A-Za-z0-9._-] are dropped.
func sanitizeName(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch {
		case r == '/':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatFrontmatter(doc *webmark.Document) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source_url: ")
	b.WriteString(doc.SourceURL)
	b.WriteByte('\n')
	if doc.Title != "" {
		b.WriteString("title: ")
		b.WriteString(doc.Title)
		b.WriteByte('\n')
	}
	if doc.Description != "" {
		b.WriteString("description: ")
		b.WriteString(doc.Description)
		b.WriteByte('\n')
	}
	b.WriteString("---\n\n")
	return b.String()
}

type jsonMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SourceURL   string `json:"source_url"`
}

type jsonDoc struct {
	URL      string       `json:"url"`
	Markdown string       `json:"markdown"`
	HTML     string       `json:"html,omitempty"`
	Metadata jsonMetadata `json:"metadata"`
}

func jsonDocument(doc *webmark.Document) jsonDoc {
	return jsonDoc{
		URL:      doc.SourceURL,
		Markdown: doc.Markdown,
		HTML:     doc.HTML,
		Metadata: jsonMetadata{
			Title:       doc.Title,
			Description: doc.Description,
			SourceURL:   doc.SourceURL,
		},
	}
}
