// Package write replaces output files atomically.
package write

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirPerm is the mode used for parent directories created by File.
const DirPerm = 0o750

// File writes data to path through a temp file in the same directory that is
// renamed over the target, so readers never observe a partial file. Parent
// directories are created as needed.
func File(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".esx-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
