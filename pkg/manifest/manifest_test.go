package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForStrategy(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{"", "structured", false},
		{"structured", "structured", false},
		{"heuristic", "heuristic", false},
		{"freestyle", "", true},
	}
	for _, tt := range tests {
		editor, err := ForStrategy(tt.name)
		if tt.wantErr {
			assert.Error(t, err, "ForStrategy(%q)", tt.name)
			continue
		}
		require.NoError(t, err, "ForStrategy(%q)", tt.name)
		assert.Equal(t, tt.wantName, editor.Name(), "ForStrategy(%q).Name()", tt.name)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "crates/demo/Cargo.toml")

	m, err := Load(root, "crates/demo/Cargo.toml")
	require.NoError(t, err)
	assert.Equal(t, "crates/demo/Cargo.toml", m.Path)
	assert.NotEmpty(t, m.Content)
}

func TestLoadRejectsEscape(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "outside.toml")
	require.NoError(t, os.WriteFile(outside, []byte("[package]\n"), 0644))
	defer func() { _ = os.Remove(outside) }()

	_, err := Load(root, "../outside.toml")
	assert.Error(t, err, "paths escaping the root must be rejected")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "Cargo.toml")
	assert.Error(t, err)
}

func TestCurrentVersion(t *testing.T) {
	m := ManifestFile{Path: "Cargo.toml", Content: "[package]\nname = \"demo\"\nversion = \"1.4.2\"\n"}
	got, ok := CurrentVersion(m)
	require.True(t, ok)
	assert.Equal(t, "1.4.2", got)
}

func TestCurrentVersionAbsent(t *testing.T) {
	tests := []string{
		"[package]\nname = \"demo\"\n",
		"[workspace]\nmembers = []\n",
		"[package]\nversion.workspace = true\n",
		"not toml at all {{",
	}
	for _, content := range tests {
		_, ok := CurrentVersion(ManifestFile{Content: content})
		assert.False(t, ok, "CurrentVersion(%q)", content)
	}
}

func TestIsInternalPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"../crateA", true},
		{"..", true},
		{"../../shared/util", true},
		{"helper", false},
		{"./local", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isInternalPath(tt.path), "isInternalPath(%q)", tt.path)
	}
}
