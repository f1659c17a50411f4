package mock

import (
	"context"

	"github.com/webmark/webmark"
)

var _ webmark.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of webmark.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *webmark.Document) error
}

func (w *DocumentWriter) WriteDocument(ctx context.Context, doc *webmark.Document) error {
	return w.WriteDocumentFn(ctx, doc)
}

var _ webmark.DocumentIndex = (*DocumentIndex)(nil)

// DocumentIndex is a mock implementation of webmark.DocumentIndex.
type DocumentIndex struct {
	RecordDocumentFn func(ctx context.Context, doc *webmark.Document) error
	ListDocumentsFn  func(ctx context.Context) ([]*webmark.Document, error)
}

func (i *DocumentIndex) RecordDocument(ctx context.Context, doc *webmark.Document) error {
	return i.RecordDocumentFn(ctx, doc)
}

func (i *DocumentIndex) ListDocuments(ctx context.Context) ([]*webmark.Document, error) {
	return i.ListDocumentsFn(ctx)
}
