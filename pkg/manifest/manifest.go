// Package manifest discovers Cargo manifests and rewrites the version
// fields cratebump owns: the package's own version and the versions of
// dependencies that point into the surrounding workspace by relative
// path.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/cratebump/pkg/safeio"
	"github.com/pelletier/go-toml/v2"
)

// depTables are the dependency tables whose internal path entries are
// version-synced with the workspace.
var depTables = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// ManifestFile is one Cargo.toml loaded for editing.
type ManifestFile struct {
	Path    string // relative to the workspace root, slash-separated
	Content string
}

// EditResult is the outcome of applying an editor to one manifest.
// Changed is true exactly when NewText differs from OldText.
type EditResult struct {
	Path    string
	OldText string
	NewText string
	Changed bool
}

// Editor rewrites the owned version fields of a manifest. Editors never
// touch the filesystem; they map old text to new text.
type Editor interface {
	Name() string
	Edit(m ManifestFile, version string) (EditResult, error)
}

// ForStrategy returns the editor registered under the given name. An
// empty name selects the structured editor.
func ForStrategy(name string) (Editor, error) {
	switch name {
	case "", "structured":
		return NewStructuredEditor(), nil
	case "heuristic":
		return NewHeuristicEditor(), nil
	default:
		return nil, fmt.Errorf("unknown editor strategy: %s", name)
	}
}

// Load reads the manifest at rel, which must stay inside root.
func Load(root, rel string) (ManifestFile, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	data, err := safeio.ReadFileContained(root, full)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("read %s: %w", rel, err)
	}
	return ManifestFile{Path: rel, Content: string(data)}, nil
}

// CurrentVersion returns the package.version string of a manifest, if
// it has one.
func CurrentVersion(m ManifestFile) (string, bool) {
	var doc map[string]interface{}
	if err := toml.Unmarshal([]byte(m.Content), &doc); err != nil {
		return "", false
	}
	pkg, ok := doc["package"].(map[string]interface{})
	if !ok {
		return "", false
	}
	version, ok := pkg["version"].(string)
	return version, ok
}

// isInternalPath reports whether a dependency path climbs out of the
// crate directory into the surrounding workspace.
func isInternalPath(path string) bool {
	return strings.HasPrefix(path, "..")
}
