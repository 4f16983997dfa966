package release

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/cratebump/internal/gitctx"
	"github.com/fulmenhq/cratebump/pkg/config"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := gitctx.Run(dir, args...); err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// initRepo creates a repo with one commit on branch main.
func initRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	mustGit(t, dir, "init", "--quiet")
	mustGit(t, dir, "config", "user.email", "test@example.com")
	mustGit(t, dir, "config", "user.name", "test")
	mustGit(t, dir, "config", "commit.gpgsign", "false")
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	mustGit(t, dir, "add", "-A")
	mustGit(t, dir, "commit", "--quiet", "-m", "initial")
	mustGit(t, dir, "branch", "-m", "main")
	return dir
}

func testConfig() *config.Config {
	return &config.Config{
		Commit: config.CommitConfig{
			Template:  "chore(release): v{{version}}",
			TagPrefix: "v",
		},
	}
}

func TestCommitMessage(t *testing.T) {
	p := NewPublisher(t.TempDir(), testConfig())

	msg, err := p.CommitMessage("1.2.3")
	if err != nil {
		t.Fatalf("CommitMessage() error = %v", err)
	}
	if msg != "chore(release): v1.2.3" {
		t.Errorf("CommitMessage() = %q, expected %q", msg, "chore(release): v1.2.3")
	}
}

func TestCommitMessageCustomTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Commit.Template = "release {{version}}"
	p := NewPublisher(t.TempDir(), cfg)

	msg, err := p.CommitMessage("0.5.0")
	if err != nil {
		t.Fatalf("CommitMessage() error = %v", err)
	}
	if msg != "release 0.5.0" {
		t.Errorf("CommitMessage() = %q, expected %q", msg, "release 0.5.0")
	}
}

func TestCommitMessageInvalidTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Commit.Template = "{{#if version}}"
	p := NewPublisher(t.TempDir(), cfg)

	if _, err := p.CommitMessage("1.0.0"); err == nil {
		t.Error("CommitMessage() with unclosed block error = nil, expected error")
	}
}

func TestTagName(t *testing.T) {
	tests := []struct {
		prefix   string
		version  string
		expected string
	}{
		{"v", "1.2.3", "v1.2.3"},
		{"", "1.2.3", "1.2.3"},
		{"release-", "0.4.0", "release-0.4.0"},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.Commit.TagPrefix = tt.prefix
		p := NewPublisher(t.TempDir(), cfg)
		if got := p.TagName(tt.version); got != tt.expected {
			t.Errorf("TagName(%q) with prefix %q = %q, expected %q", tt.version, tt.prefix, got, tt.expected)
		}
	}
}

func TestCheckGuardsNoGuardsOutsideRepo(t *testing.T) {
	p := NewPublisher(t.TempDir(), testConfig())
	if err := p.CheckGuards(); err != nil {
		t.Errorf("CheckGuards() with no guards error = %v, expected nil", err)
	}
}

func TestCheckGuardsOutsideRepo(t *testing.T) {
	cfg := testConfig()
	cfg.Guards.DisallowDirty = true
	p := NewPublisher(t.TempDir(), cfg)

	err := p.CheckGuards()
	if err == nil {
		t.Fatal("CheckGuards() outside a repo error = nil, expected error")
	}
	if !strings.Contains(err.Error(), "outside a git repository") {
		t.Errorf("CheckGuards() error = %v", err)
	}
}

func TestCheckGuardsRequiredBranch(t *testing.T) {
	dir := initRepo(t)

	cfg := testConfig()
	cfg.Guards.RequiredBranches = []string{"main", "release/*"}
	p := NewPublisher(dir, cfg)
	if err := p.CheckGuards(); err != nil {
		t.Errorf("CheckGuards() on main error = %v, expected nil", err)
	}

	cfg.Guards.RequiredBranches = []string{"release/*"}
	p = NewPublisher(dir, cfg)
	err := p.CheckGuards()
	if err == nil {
		t.Fatal("CheckGuards() on disallowed branch error = nil, expected error")
	}
	if !strings.Contains(err.Error(), "not in required branches") {
		t.Errorf("CheckGuards() error = %v", err)
	}
}

func TestCheckGuardsRequiredBranchGlob(t *testing.T) {
	dir := initRepo(t)

	cfg := testConfig()
	cfg.Guards.RequiredBranches = []string{"ma*"}
	p := NewPublisher(dir, cfg)
	if err := p.CheckGuards(); err != nil {
		t.Errorf("CheckGuards() with glob pattern error = %v, expected nil", err)
	}
}

func TestCheckGuardsDisallowDirty(t *testing.T) {
	dir := initRepo(t)

	cfg := testConfig()
	cfg.Guards.DisallowDirty = true
	p := NewPublisher(dir, cfg)
	if err := p.CheckGuards(); err != nil {
		t.Errorf("CheckGuards() on clean tree error = %v, expected nil", err)
	}

	writeFile(t, dir, "scratch.txt", "wip\n")
	err := p.CheckGuards()
	if err == nil {
		t.Fatal("CheckGuards() on dirty tree error = nil, expected error")
	}
	if !strings.Contains(err.Error(), "uncommitted changes") {
		t.Errorf("CheckGuards() error = %v", err)
	}
}

func TestPublishCommit(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"0.2.0\"\n")

	p := NewPublisher(dir, testConfig())
	if err := p.Publish("0.2.0", Options{Commit: true}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	subject, err := gitctx.Output(dir, "log", "-1", "--pretty=%s")
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if subject != "chore(release): v0.2.0" {
		t.Errorf("commit subject = %q, expected %q", subject, "chore(release): v0.2.0")
	}
	if gitctx.IsDirty(dir) {
		t.Error("worktree dirty after commit")
	}

	tags, err := gitctx.Output(dir, "tag")
	if err != nil {
		t.Fatalf("git tag: %v", err)
	}
	if tags != "" {
		t.Errorf("tags = %q, expected none without --tag", tags)
	}
}

func TestPublishNothingToCommit(t *testing.T) {
	dir := initRepo(t)

	p := NewPublisher(dir, testConfig())
	err := p.Publish("0.2.0", Options{Commit: true})
	if err == nil {
		t.Fatal("Publish() on clean tree error = nil, expected error")
	}
	if !strings.Contains(err.Error(), "nothing to commit") || !strings.Contains(err.Error(), "--force") {
		t.Errorf("Publish() error = %v, expected nothing-to-commit guidance", err)
	}
}

func TestPublishNothingToCommitForce(t *testing.T) {
	dir := initRepo(t)

	p := NewPublisher(dir, testConfig())
	if err := p.Publish("0.2.0", Options{Commit: true, Force: true}); err != nil {
		t.Errorf("Publish() with force on clean tree error = %v, expected nil", err)
	}
}

func TestPublishTagAndPush(t *testing.T) {
	dir := initRepo(t)
	remote := t.TempDir()
	mustGit(t, remote, "init", "--bare", "--quiet")
	mustGit(t, dir, "remote", "add", "origin", remote)
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"0.3.0\"\n")

	p := NewPublisher(dir, testConfig())
	// Tag alone implies Commit.
	if err := p.Publish("0.3.0", Options{Tag: true}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	count, err := gitctx.Output(dir, "rev-list", "--count", "HEAD")
	if err != nil {
		t.Fatalf("git rev-list: %v", err)
	}
	if count != "2" {
		t.Errorf("commit count = %s, expected 2 (tag implies commit)", count)
	}

	// Annotated tags are tag objects, not commit refs.
	objType, err := gitctx.Output(dir, "cat-file", "-t", "v0.3.0")
	if err != nil {
		t.Fatalf("git cat-file: %v", err)
	}
	if objType != "tag" {
		t.Errorf("tag object type = %q, expected %q (annotated)", objType, "tag")
	}

	remoteTags, err := gitctx.Output(remote, "tag")
	if err != nil {
		t.Fatalf("git tag on remote: %v", err)
	}
	if !strings.Contains(remoteTags, "v0.3.0") {
		t.Errorf("remote tags = %q, expected v0.3.0 pushed", remoteTags)
	}

	remoteSubject, err := gitctx.Output(remote, "log", "-1", "--pretty=%s", "main")
	if err != nil {
		t.Fatalf("git log on remote: %v", err)
	}
	if remoteSubject != "chore(release): v0.3.0" {
		t.Errorf("remote branch subject = %q, expected pushed commit", remoteSubject)
	}
}

func TestPublishNoOptions(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "scratch.txt", "wip\n")

	p := NewPublisher(dir, testConfig())
	if err := p.Publish("0.9.9", Options{}); err != nil {
		t.Fatalf("Publish() with no options error = %v", err)
	}

	count, err := gitctx.Output(dir, "rev-list", "--count", "HEAD")
	if err != nil {
		t.Fatalf("git rev-list: %v", err)
	}
	if count != "1" {
		t.Errorf("commit count = %s, expected 1 (no commit requested)", count)
	}
	if !gitctx.IsDirty(dir) {
		t.Error("worktree clean, expected untouched dirty state")
	}
}
