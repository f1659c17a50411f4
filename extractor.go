package webmark

// Metadata holds page metadata extracted from the full original document
// head, independent of main-content extraction.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// ContentHTML is the main content as clean HTML with boilerplate
	// removed and relative URLs resolved against the source URL.
	ContentHTML string

	// Metadata comes from the original document head.
	Metadata Metadata
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// For fixed input and configuration the output is byte-identical across
// invocations.
type Extractor interface {
	// Extract processes raw rendered HTML. The sourceURL is the base for
	// resolving relative links and images.
	Extract(html, sourceURL string) (*ExtractResult, error)
}

// LinkExtractor extracts outbound links from rendered HTML in document
// order, resolved to absolute URLs.
type LinkExtractor interface {
	ExtractLinks(html, baseURL string) ([]string, error)
}

// Converter converts HTML to Markdown. Input should be clean HTML from an
// Extractor; output is deterministic for fixed input.
type Converter interface {
	Convert(html string) (string, error)
}
