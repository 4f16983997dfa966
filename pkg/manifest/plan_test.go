package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlanSummarizeNoChanges(t *testing.T) {
	plan := &Plan{Results: []EditResult{
		{Path: "Cargo.toml", Changed: false},
	}}
	var buf bytes.Buffer
	plan.Summarize(&buf, true)
	if buf.String() != "No changes necessary.\n" {
		t.Errorf("Summarize() = %q", buf.String())
	}
	if plan.HasChanges() {
		t.Error("HasChanges() = true, expected false")
	}
}

func TestPlanSummarizeChanged(t *testing.T) {
	plan := &Plan{Results: []EditResult{
		{Path: "crateA/Cargo.toml", OldText: "a", NewText: "b", Changed: true},
		{Path: "crateB/Cargo.toml", OldText: "a", NewText: "a", Changed: false},
		{Path: "crateC/Cargo.toml", OldText: "a", NewText: "c", Changed: true},
	}}
	var buf bytes.Buffer
	plan.Summarize(&buf, true)
	want := "Would change 2 file(s):\n - crateA/Cargo.toml\n - crateC/Cargo.toml\n"
	if buf.String() != want {
		t.Errorf("Summarize() = %q, expected %q", buf.String(), want)
	}
	if !plan.HasChanges() {
		t.Error("HasChanges() = false, expected true")
	}

	buf.Reset()
	plan.Summarize(&buf, false)
	want = "Updating 2 file(s):\n - crateA/Cargo.toml\n - crateC/Cargo.toml\n"
	if buf.String() != want {
		t.Errorf("Summarize() = %q, expected %q", buf.String(), want)
	}
}

func TestPlanRenderDiffs(t *testing.T) {
	oldText := "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n"
	newText := "[package]\nname = \"demo\"\nversion = \"0.2.0\"\n"
	plan := &Plan{Results: []EditResult{
		{Path: "demo/Cargo.toml", OldText: oldText, NewText: newText, Changed: true},
	}}

	var buf bytes.Buffer
	if err := plan.RenderDiffs(&buf); err != nil {
		t.Fatalf("RenderDiffs() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Dry-run enabled; not writing files. Showing diffs:",
		"=== demo/Cargo.toml ===",
		"--- demo/Cargo.toml",
		"+++ demo/Cargo.toml.new",
		"-version = \"0.1.0\"",
		"+version = \"0.2.0\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDiffs() missing %q in:\n%s", want, out)
		}
	}
}

func TestPlanApplyWritesChangedFiles(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "crateA/Cargo.toml")
	writeManifest(t, root, "crateB/Cargo.toml")

	newText := "[package]\nname = \"demo\"\nversion = \"0.2.0\"\n"
	plan := &Plan{Results: []EditResult{
		{Path: "crateA/Cargo.toml", NewText: newText, Changed: true},
		{Path: "crateB/Cargo.toml", Changed: false},
	}}

	var buf bytes.Buffer
	if err := plan.Apply(root, &buf); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if buf.String() != "Updated crateA/Cargo.toml\n" {
		t.Errorf("Apply() output = %q", buf.String())
	}

	got, err := os.ReadFile(filepath.Join(root, "crateA", "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != newText {
		t.Errorf("crateA content = %q, expected rewritten text", got)
	}

	untouched, err := os.ReadFile(filepath.Join(root, "crateB", "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(untouched), "0.1.0") {
		t.Error("unchanged manifest was rewritten")
	}
}

func TestPlanApplyPreservesMode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Cargo.toml")
	if err := os.WriteFile(path, []byte("[package]\nversion = \"0.1.0\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	plan := &Plan{Results: []EditResult{
		{Path: "Cargo.toml", NewText: "[package]\nversion = \"0.2.0\"\n", Changed: true},
	}}
	var buf bytes.Buffer
	if err := plan.Apply(root, &buf); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, expected 0600 preserved", st.Mode().Perm())
	}
}
