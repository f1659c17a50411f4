package main

import (
	"fmt"

	"github.com/webmark/webmark"
)

// Run executes the cache stats command.
func (c *CacheStatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Cache.Stats()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmark.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d entries, %s\n", stats.Count, formatBytes(stats.TotalSize))
	return nil
}

// Run executes the cache prune command.
func (c *CachePruneCmd) Run(deps *Dependencies) error {
	removed, err := deps.Cache.Prune(c.MaxAge)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmark.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %d entries older than %s\n", removed, c.MaxAge)
	return nil
}

// Run executes the cache clear command.
func (c *CacheClearCmd) Run(deps *Dependencies) error {
	removed, err := deps.Cache.Clear(c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmark.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %d entries\n", removed)
	return nil
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
