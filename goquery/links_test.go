package goquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webmark/webmark"
	"github.com/webmark/webmark/goquery"
)

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns links in document order resolved to absolute", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<body>
<a href="/docs/intro">Intro</a>
<a href="https://example.com/docs/guide">Guide</a>
<a href="../other">Other</a>
</body>
</html>`

		links, err := goquery.ExtractLinks(html, "https://example.com/docs/start")

		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, "https://example.com/docs/intro", links[0])
		assert.Equal(t, "https://example.com/docs/guide", links[1])
		assert.Equal(t, "https://example.com/other", links[2])
	})

	t.Run("deduplicates keeping first occurrence", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/a">First</a>
<a href="/b">Middle</a>
<a href="/a">Again</a>
</body></html>`

		links, err := goquery.ExtractLinks(html, "https://example.com")

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, "https://example.com/a", links[0])
		assert.Equal(t, "https://example.com/b", links[1])
	})

	t.Run("treats fragment variants as the same link", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/guide#intro">Intro</a>
<a href="/guide#usage">Usage</a>
</body></html>`

		links, err := goquery.ExtractLinks(html, "https://example.com")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com/guide", links[0])
	})

	t.Run("skips pseudo-protocol links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="javascript:void(0)">JS</a>
<a href="mailto:a@example.com">Mail</a>
<a href="tel:+1234567890">Call</a>
<a href="data:text/plain,hi">Data</a>
<a href="/real">Real</a>
</body></html>`

		links, err := goquery.ExtractLinks(html, "https://example.com")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com/real", links[0])
	})

	t.Run("drops self-referential links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="#top">Top</a>
<a href="/page">Self</a>
<a href="/elsewhere">Elsewhere</a>
</body></html>`

		links, err := goquery.ExtractLinks(html, "https://example.com/page")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com/elsewhere", links[0])
	})

	t.Run("keeps external links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="https://other.org/page">External</a></body></html>`

		links, err := goquery.ExtractLinks(html, "https://example.com")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://other.org/page", links[0])
	})

	t.Run("returns error for invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.ExtractLinks(`<a href="/x">X</a>`, "://bad")

		require.Error(t, err)
		assert.Equal(t, webmark.EINVALID, webmark.ErrorCode(err))
	})

	t.Run("handles page with no links", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.ExtractLinks(`<html><body><p>No links</p></body></html>`, "https://example.com")

		require.NoError(t, err)
		assert.Empty(t, links)
	})
}
