package fs_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webmark/webmark/fs"
)

func TestManifest(t *testing.T) {
	t.Parallel()

	t.Run("records and reports URLs", func(t *testing.T) {
		t.Parallel()

		m, err := fs.NewManifest(filepath.Join(t.TempDir(), "manifest.json"))
		require.NoError(t, err)

		assert.False(t, m.Contains("https://example.com/a"))
		require.NoError(t, m.Add("https://example.com/a"))
		assert.True(t, m.Contains("https://example.com/a"))
	})

	t.Run("survives flush and reload", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "manifest.json")

		m, err := fs.NewManifest(path)
		require.NoError(t, err)
		require.NoError(t, m.Add("https://example.com/a"))
		require.NoError(t, m.Add("https://example.com/b"))
		require.NoError(t, m.Flush())

		reloaded, err := fs.NewManifest(path)
		require.NoError(t, err)
		assert.True(t, reloaded.Contains("https://example.com/a"))
		assert.True(t, reloaded.Contains("https://example.com/b"))
		assert.Equal(t, 2, reloaded.Len())
	})

	t.Run("flushes automatically at the interval", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "manifest.json")
		m, err := fs.NewManifest(path, fs.WithFlushInterval(2))
		require.NoError(t, err)

		require.NoError(t, m.Add("https://example.com/a"))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "should not flush before interval")

		require.NoError(t, m.Add("https://example.com/b"))
		_, statErr = os.Stat(path)
		assert.NoError(t, statErr, "should flush at interval")
	})

	t.Run("writes the scraped_urls format", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "manifest.json")
		m, err := fs.NewManifest(path)
		require.NoError(t, err)
		require.NoError(t, m.Add("https://example.com/a"))
		require.NoError(t, m.Flush())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var mf struct {
			ScrapedURLs []string `json:"scraped_urls"`
		}
		require.NoError(t, json.Unmarshal(data, &mf))
		assert.Equal(t, []string{"https://example.com/a"}, mf.ScrapedURLs)
	})

	t.Run("ignores duplicate additions", func(t *testing.T) {
		t.Parallel()

		m, err := fs.NewManifest(filepath.Join(t.TempDir(), "manifest.json"))
		require.NoError(t, err)

		require.NoError(t, m.Add("https://example.com/a"))
		require.NoError(t, m.Add("https://example.com/a"))
		assert.Equal(t, 1, m.Len())
	})

	t.Run("rejects a corrupt manifest", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "manifest.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

		_, err := fs.NewManifest(path)
		require.Error(t, err)
	})

	t.Run("close flushes pending additions", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "manifest.json")
		m, err := fs.NewManifest(path, fs.WithFlushInterval(100))
		require.NoError(t, err)
		require.NoError(t, m.Add("https://example.com/a"))
		require.NoError(t, m.Close())

		reloaded, err := fs.NewManifest(path)
		require.NoError(t, err)
		assert.True(t, reloaded.Contains("https://example.com/a"))
	})
}
