package manifest

import (
	"regexp"
	"strings"

	"github.com/fulmenhq/cratebump/pkg/logger"
)

// HeuristicEditor rewrites version fields with line patterns alone, for
// manifests the TOML parser rejects. It is deliberately best-effort: it
// never returns an error, accepting that unusual formatting may leave a
// field missed or misplaced.
type HeuristicEditor struct{}

// NewHeuristicEditor creates the line-based fallback editor.
func NewHeuristicEditor() *HeuristicEditor {
	return &HeuristicEditor{}
}

// Name returns the strategy name used in config and flags.
func (e *HeuristicEditor) Name() string {
	return "heuristic"
}

var versionAssignRe = regexp.MustCompile(`version\s*=\s*"[^"]+"`)

// Edit applies the pattern rules: the first version line of each
// [package] section, and for every line of a dependency table naming a
// path that climbs out of the crate, the nearest version assignment on
// that line or the three above it. A path dependency with no version
// assignment in reach gets one inserted above it.
func (e *HeuristicEditor) Edit(m ManifestFile, version string) (EditResult, error) {
	res := EditResult{Path: m.Path, OldText: m.Content, NewText: m.Content}
	lines := strings.Split(m.Content, "\n")
	replacement := `version = "` + version + `"`
	changed := false

	// Package sections: replace the first version line in range.
	for i, line := range lines {
		if !strings.HasPrefix(line, "[package]") {
			continue
		}
		for j := i + 1; j < len(lines) && !isSectionLine(lines[j]); j++ {
			if !strings.HasPrefix(strings.TrimSpace(lines[j]), "version") {
				continue
			}
			if newLine := versionAssignRe.ReplaceAllString(lines[j], replacement); newLine != lines[j] {
				lines[j] = newLine
				changed = true
			}
			break
		}
	}

	// Dependency tables: update or insert versions for internal paths.
	type insertion struct {
		index int
		line  string
	}
	var inserts []insertion
	for _, table := range depTables {
		start := findSection(lines, "["+table+"]")
		if start == -1 {
			continue
		}
		for j := start + 1; j < len(lines) && !isSectionLine(lines[j]); j++ {
			line := lines[j]
			if !strings.Contains(line, "path") || !strings.Contains(line, "..") {
				continue
			}
			// 1. A version assignment on the path line itself.
			if versionAssignRe.MatchString(line) {
				if newLine := versionAssignRe.ReplaceAllString(line, replacement); newLine != line {
					lines[j] = newLine
					changed = true
				}
				continue
			}
			// 2. The nearest version assignment within the three lines
			// above, without leaving the table.
			if k := lookbackVersionLine(lines, start, j); k != -1 {
				if newLine := versionAssignRe.ReplaceAllString(lines[k], replacement); newLine != lines[k] {
					lines[k] = newLine
					changed = true
				}
				continue
			}
			// 3. No version assignment in reach: insert one above the
			// path line. The inserted key may not match the document's
			// key style, so flag it for review.
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			inserts = append(inserts, insertion{index: j, line: indent + replacement})
			changed = true
			logger.Warn("Inserted version for path dependency; review placement",
				logger.String("file", m.Path),
				logger.String("table", table),
				logger.Int("line", j+1))
		}
	}
	for i := len(inserts) - 1; i >= 0; i-- {
		ins := inserts[i]
		lines = append(lines[:ins.index], append([]string{ins.line}, lines[ins.index:]...)...)
	}

	if changed {
		res.NewText = strings.Join(lines, "\n")
		res.Changed = res.NewText != m.Content
	}
	return res, nil
}

// isSectionLine reports whether a line opens a new table.
func isSectionLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "[")
}

// findSection returns the index of the first line that is exactly the
// given table header, ignoring surrounding whitespace.
func findSection(lines []string, header string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == header {
			return i
		}
	}
	return -1
}

// lookbackVersionLine returns the index of the nearest version
// assignment within the three lines above j, bounded by the table
// header at start, or -1 when none exists.
func lookbackVersionLine(lines []string, start, j int) int {
	low := j - 3
	if low <= start {
		low = start + 1
	}
	for k := j - 1; k >= low; k-- {
		if versionAssignRe.MatchString(lines[k]) {
			return k
		}
	}
	return -1
}
