package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/webmark/webmark"
)

// Compile-time interface verification.
var _ webmark.DocumentIndex = (*Index)(nil)

// Index implements webmark.DocumentIndex using SQLite. Documents are keyed
// by source URL; recording the same URL again replaces the previous row but
// keeps its original position, so listing order reflects first-crawl order.
type Index struct {
	db *DB
}

// NewIndex creates a new Index.
func NewIndex(db *DB) *Index {
	return &Index{db: db}
}

// RecordDocument inserts or updates a document keyed by its source URL.
func (s *Index) RecordDocument(ctx context.Context, doc *webmark.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (source_url, title, description, markdown, content_hash, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM documents), ?)
		ON CONFLICT(source_url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			markdown = excluded.markdown,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, doc.SourceURL, doc.Title, doc.Description, doc.Markdown, doc.ContentHash,
		doc.FetchedAt.UTC().Format(time.RFC3339))

	return err
}

// ListDocuments returns all recorded documents in first-crawl order.
func (s *Index) ListDocuments(ctx context.Context) ([]*webmark.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_url, title, description, markdown, content_hash, fetched_at
		FROM documents
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*webmark.Document
	for rows.Next() {
		var doc webmark.Document
		var fetchedAt string

		if err := rows.Scan(&doc.SourceURL, &doc.Title, &doc.Description,
			&doc.Markdown, &doc.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}

		doc.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}
