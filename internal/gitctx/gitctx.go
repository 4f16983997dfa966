// Package gitctx captures the state of the git repository cratebump
// operates in and wraps the git commands used to mutate it.
package gitctx

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Context is a minimal view of the repository at the time of a release.
type Context struct {
	Branch string `json:"branch,omitempty"`
	SHA    string `json:"git_sha,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// Collect gathers repository context for the repo containing target.
// Returns nil if git is unavailable or target is not inside a repo.
func Collect(target string) (*Context, error) {
	// Prefer go-git for repo info
	if ctx := collectGoGit(target); ctx != nil {
		return ctx, nil
	}

	// CLI fallback
	if _, err := exec.LookPath("git"); err != nil {
		return nil, nil
	}
	if !isRepoCLI(target) {
		return nil, nil
	}
	branch := runGit(target, "rev-parse", "--abbrev-ref", "HEAD")
	sha := runGit(target, "rev-parse", "HEAD")
	status := runGit(target, "status", "--porcelain")
	return &Context{
		Branch: branch,
		SHA:    sha,
		Dirty:  status != "",
	}, nil
}

func collectGoGit(target string) *Context {
	repo, err := git.PlainOpenWithOptions(target, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	head, err := repo.Head()
	if err != nil {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil
	}
	st, err := wt.Status()
	if err != nil {
		return nil
	}
	return &Context{
		Branch: head.Name().Short(),
		SHA:    head.Hash().String(),
		Dirty:  !st.IsClean(),
	}
}

// IsDirty reports whether the worktree containing target has uncommitted
// changes. Returns false when target is not inside a repo.
func IsDirty(target string) bool {
	ctx, err := Collect(target)
	if err != nil || ctx == nil {
		return false
	}
	return ctx.Dirty
}

// Run executes a git command in dir with stdout and stderr passed
// through to the user. Used for mutations (add, commit, tag, push).
func Run(dir string, args ...string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found in PATH: %w", err)
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// Output executes a git command in dir and returns its trimmed stdout.
func Output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func isRepoCLI(target string) bool {
	out := runGit(target, "rev-parse", "--is-inside-work-tree")
	return out == "true"
}

func runGit(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, _ := cmd.Output()
	return strings.TrimSpace(string(out))
}
