package main

import (
	"fmt"

	"github.com/webmark/webmark"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	docs, err := deps.Index.ListDocuments(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmark.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents indexed. Run 'webmark crawl --index' to record some.")
		return nil
	}

	if c.Full {
		for _, doc := range docs {
			fmt.Fprintf(deps.Stdout, "<!-- %s -->\n%s\n", doc.SourceURL, doc.Markdown)
		}
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Indexed documents (%d total):\n\n", len(docs))
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = doc.SourceURL
		}
		fmt.Fprintf(deps.Stdout, "  %d. %s\n     %s\n", i+1, title, doc.SourceURL)
	}

	return nil
}
