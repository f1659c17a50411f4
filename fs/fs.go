// Package fs provides file-based persistence: the result cache, the crawl
// manifest, and the page output writer.
package fs

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes data to path via a temporary file and rename, so a
// crash cannot leave a partially written file visible.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
