// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher provides gitignore-based file filtering anchored at a workspace root
type Matcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered ignore files:
// 1. .gitignore and related git ignore files (foundation)
// 2. .cratebumpignore (repo overrides)
// 3. ~/.cratebump/.cratebumpignore (user overrides)
func NewMatcher(repoRoot string) (*Matcher, error) {
	rootAbs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	fs := osfs.New(rootAbs)

	// Load patterns with layered approach
	var allPatterns []gitignore.Pattern

	// Add default patterns that should always be ignored (highest priority)
	defaultPatterns := []string{".git/**", "target/**", "node_modules/**"}
	for _, pattern := range defaultPatterns {
		allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
	}

	// Layer 1: Load standard gitignore patterns (foundation)
	// ReadPatterns with nil reads .gitignore, global excludes, and .git/info/exclude
	if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
		allPatterns = append(allPatterns, gitPatterns...)
	}

	// Layer 2: Manually read .cratebumpignore patterns (repo overrides)
	if repoPatterns, err := readIgnoreFile(filepath.Join(rootAbs, ".cratebumpignore")); err == nil {
		for _, pattern := range repoPatterns {
			allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
		}
	}

	// Layer 3: Manually read user-level ~/.cratebump/.cratebumpignore patterns (user overrides)
	if homeDir, err := os.UserHomeDir(); err == nil {
		userIgnorePath := filepath.Join(homeDir, ".cratebump", ".cratebumpignore")
		if userPatterns, err := readIgnoreFile(userIgnorePath); err == nil {
			for _, pattern := range userPatterns {
				allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
			}
		}
	}

	return &Matcher{
		root:    rootAbs,
		matcher: gitignore.NewMatcher(allPatterns),
	}, nil
}

// readIgnoreFile reads patterns from a text file (like .cratebumpignore)
func readIgnoreFile(path string) ([]string, error) {
	// Only allow reading known ignore files in controlled locations
	cleaned := filepath.Clean(path)
	// Allowlist: .cratebumpignore at repo root or under $HOME/.cratebump/
	if !strings.HasSuffix(cleaned, string(os.PathSeparator)+".cratebumpignore") {
		return nil, fmt.Errorf("disallowed ignore file path: %s", cleaned)
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- path cleaned and allowlisted
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	return patterns, nil
}

// IsIgnored checks if a file path should be ignored. The path may be absolute
// or relative to the matcher's workspace root.
func (m *Matcher) IsIgnored(path string) bool {
	pathParts := splitPath(m.rel(path))
	if len(pathParts) == 0 {
		return false
	}
	return m.matcher.Match(pathParts, false)
}

// IsIgnoredDir checks if a directory should be ignored (and thus skipped during traversal)
func (m *Matcher) IsIgnoredDir(path string) bool {
	pathParts := splitPath(m.rel(path))
	if len(pathParts) == 0 {
		return false
	}
	return m.matcher.Match(pathParts, true)
}

// rel normalizes a path to slash-separated form relative to the workspace root
func (m *Matcher) rel(path string) string {
	if filepath.IsAbs(path) {
		if r, err := filepath.Rel(m.root, path); err == nil {
			path = r
		}
	}
	return filepath.ToSlash(path)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return []string{}
	}

	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
