package cmd

import (
	"strings"
	"testing"
)

func TestListShowsVersions(t *testing.T) {
	dir := writeWorkspace(t)

	out, err := execRoot(t, []string{"list", "--dir", dir})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{
		"crateA/Cargo.toml (0.1.0)",
		"crateB/Cargo.toml (0.1.0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestListVersionlessManifest(t *testing.T) {
	dir := writeWorkspace(t)
	writeFile(t, dir, "crateC/Cargo.toml", "[package]\nname = \"crateC\"\n")

	out, err := execRoot(t, []string{"list", "--dir", dir})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "crateC/Cargo.toml\n") {
		t.Errorf("versionless manifest should print as a bare path\noutput:\n%s", out)
	}
	if strings.Contains(out, "crateC/Cargo.toml (") {
		t.Errorf("versionless manifest should not report a version\noutput:\n%s", out)
	}
}

func TestListHonorsExcludes(t *testing.T) {
	dir := writeWorkspace(t)
	writeFile(t, dir, ".cratebump.yaml", "excludes:\n  - \"crateB/**\"\n")

	out, err := execRoot(t, []string{"list", "--dir", dir})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "crateA/Cargo.toml") {
		t.Errorf("non-excluded manifest missing\noutput:\n%s", out)
	}
	if strings.Contains(out, "crateB/Cargo.toml") {
		t.Errorf("excluded manifest listed\noutput:\n%s", out)
	}
}
