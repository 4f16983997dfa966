package manifest

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/cratebump/pkg/ignore"
	"github.com/fulmenhq/cratebump/pkg/logger"
)

// skipDirs are never descended into during discovery. Hidden
// directories are skipped separately.
var skipDirs = map[string]bool{
	"target":       true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// Discover finds Cargo.toml files under root, honoring the layered
// ignore files and the configured exclude globs. Paths come back
// relative to root, slash-separated, sorted.
func Discover(root string, excludes []string) ([]string, error) {
	matcher, err := ignore.NewMatcher(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			hidden := len(name) > 1 && name[0] == '.'
			if hidden || skipDirs[name] || matcher.IsIgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "Cargo.toml" {
			return nil
		}
		if matcher.IsIgnored(path) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		norm := filepath.ToSlash(rel)
		if isExcluded(norm, excludes) {
			return nil
		}
		files = append(files, norm)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	logger.Debug("Discovered manifests", logger.Int("count", len(files)))
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	for _, ex := range excludes {
		if ok, _ := doublestar.PathMatch(ex, path); ok {
			return true
		}
	}
	return false
}
