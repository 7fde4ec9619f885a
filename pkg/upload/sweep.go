package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SweepStale removes temporary archives in dir (os.TempDir() when empty) that
// were last modified more than maxAge before now. Such files only exist when a
// previous process died mid-split. It returns the number of removed files.
func SweepStale(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	matches, err := filepath.Glob(filepath.Join(dir, ArchivePattern))
	if err != nil {
		return 0, fmt.Errorf("upload: sweep %s: %w", dir, err)
	}

	removed := 0
	var errs []error
	for _, path := range matches {
		fi, err := os.Lstat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if now.Sub(fi.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
