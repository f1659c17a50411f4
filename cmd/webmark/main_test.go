package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMain(t *testing.T) *Main {
	t.Helper()
	m := NewMain()
	m.CacheDir = t.TempDir()
	m.DBPath = ":memory:"
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no arguments shows help and errors", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), nil, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
		assert.Contains(t, stdout.String(), "Usage:")
	})

	t.Run("help exits cleanly", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), []string{"--help"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "crawl")
		assert.Contains(t, stdout.String(), "map")
	})

	t.Run("unknown command errors", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), []string{"bogus"}, &stdout, &stderr)

		assert.Error(t, err)
	})

	t.Run("cache stats on an empty cache", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), []string{"cache", "stats"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "0 entries")
	})

	t.Run("cache prune on an empty cache removes nothing", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), []string{"cache", "prune", "24h"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Removed 0 entries")
	})

	t.Run("docs with an empty index", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), []string{"docs"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No documents indexed")
	})

	t.Run("map rejects an invalid sitemap mode", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newTestMain(t).Run(context.Background(), []string{"map", "https://example.com", "--sitemap", "bogus"}, &stdout, &stderr)

		assert.Error(t, err)
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 * 1024 * 1024, "3.0 MiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.n))
	}
}
