package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"emptylines/internal/config"
)

// listFiles returns the sorted list of included files under dir. Excluded
// directories are not descended into.
func listFiles(cfg *config.Config, dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := relPath(cfg, path)
		if d.IsDir() {
			if path != dir && cfg.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if cfg.Included(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// deterministic order
	sort.Strings(files)
	return files, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
