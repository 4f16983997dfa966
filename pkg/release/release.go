// Package release publishes a completed version bump to git: stage,
// commit, and optionally tag and push.
package release

import (
	"fmt"
	"path/filepath"

	"github.com/aymerick/raymond"

	"github.com/fulmenhq/cratebump/internal/gitctx"
	"github.com/fulmenhq/cratebump/pkg/config"
	"github.com/fulmenhq/cratebump/pkg/logger"
)

// Options select which publish steps run.
type Options struct {
	// Commit stages all changes and commits them.
	Commit bool
	// Tag creates an annotated tag and pushes branch and tag. Implies Commit.
	Tag bool
	// Force tolerates a commit that fails because the tree is already clean.
	Force bool
}

// Publisher drives the git publish sequence for a bumped version.
type Publisher struct {
	Dir    string
	Commit config.CommitConfig
	Guards config.GuardsConfig
}

// NewPublisher creates a Publisher for the workspace rooted at dir.
func NewPublisher(dir string, cfg *config.Config) *Publisher {
	return &Publisher{Dir: dir, Commit: cfg.Commit, Guards: cfg.Guards}
}

// CheckGuards validates publish preconditions. It runs before any
// manifest is edited so a guard rejection leaves the tree untouched.
func (p *Publisher) CheckGuards() error {
	if len(p.Guards.RequiredBranches) == 0 && !p.Guards.DisallowDirty {
		return nil
	}

	ctx, err := gitctx.Collect(p.Dir)
	if err != nil {
		return fmt.Errorf("failed to read git context: %w", err)
	}
	if ctx == nil {
		return fmt.Errorf("publish requested outside a git repository")
	}

	if len(p.Guards.RequiredBranches) > 0 {
		allowed := false
		for _, pattern := range p.Guards.RequiredBranches {
			if matched, err := filepath.Match(pattern, ctx.Branch); err == nil && matched {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("current branch '%s' not in required branches: %v", ctx.Branch, p.Guards.RequiredBranches)
		}
	}

	if p.Guards.DisallowDirty && ctx.Dirty {
		return fmt.Errorf("worktree has uncommitted changes (dirty worktree not allowed)")
	}

	return nil
}

// CommitMessage renders the configured commit template for version.
func (p *Publisher) CommitMessage(version string) (string, error) {
	out, err := raymond.Render(p.Commit.Template, map[string]string{"version": version})
	if err != nil {
		return "", fmt.Errorf("render commit template: %w", err)
	}
	return out, nil
}

// TagName returns the tag for version with the configured prefix.
func (p *Publisher) TagName(version string) string {
	return p.Commit.TagPrefix + version
}

// Publish stages and commits the bump, then tags and pushes when
// requested. A commit that fails on an already-clean tree is tolerated
// only under Options.Force; every other git failure is fatal.
func (p *Publisher) Publish(version string, opts Options) error {
	if opts.Tag {
		opts.Commit = true
	}
	if !opts.Commit {
		return nil
	}

	message, err := p.CommitMessage(version)
	if err != nil {
		return err
	}

	if err := gitctx.Run(p.Dir, "add", "-A"); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	if err := gitctx.Run(p.Dir, "commit", "-m", message); err != nil {
		if gitctx.IsDirty(p.Dir) {
			return fmt.Errorf("commit failed with changes staged: %w", err)
		}
		if !opts.Force {
			return fmt.Errorf("nothing to commit; re-run with --force to publish without a new commit")
		}
		logger.Warn("Nothing to commit; continuing under --force",
			logger.String("version", version))
	}

	if !opts.Tag {
		return nil
	}

	tag := p.TagName(version)
	if err := gitctx.Run(p.Dir, "tag", "-a", tag, "-m", message); err != nil {
		return fmt.Errorf("create tag %s: %w", tag, err)
	}
	logger.Info("Created annotated tag", logger.String("tag", tag))

	if err := gitctx.Run(p.Dir, "push", "origin", "HEAD"); err != nil {
		return fmt.Errorf("push branch: %w", err)
	}
	if err := gitctx.Run(p.Dir, "push", "origin", tag); err != nil {
		return fmt.Errorf("push tag %s: %w", tag, err)
	}

	return nil
}
