/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/fulmenhq/cratebump/pkg/ascii"
	"github.com/fulmenhq/cratebump/pkg/checks"
	"github.com/fulmenhq/cratebump/pkg/config"
	"github.com/fulmenhq/cratebump/pkg/exitcode"
	"github.com/fulmenhq/cratebump/pkg/logger"
	"github.com/fulmenhq/cratebump/pkg/manifest"
	"github.com/fulmenhq/cratebump/pkg/release"
	"github.com/fulmenhq/cratebump/pkg/versioning"
)

// bumpCmd represents the bump command
var bumpCmd = &cobra.Command{
	Use:   "bump <version>",
	Short: "Bump the workspace version across every Cargo.toml",
	Long: `Bump updates [package].version and the version pinned by every internal
path dependency (path starting with "..") in dependencies,
dev-dependencies, and build-dependencies, preserving all other file
content byte for byte. A leading 'v' on the version is stripped.

After writing, the configured validation checks run in order (cargo
fmt, clippy, test, and audit by default); the first failure aborts and
leaves the edited files in place. With --commit the change is staged
and committed; --tag additionally creates an annotated tag and pushes
branch and tag to origin.

Examples:
  cratebump bump 1.2.3 --dry-run        # Preview edits as unified diffs
  cratebump bump 1.2.3                  # Edit and validate
  cratebump bump v1.2.3 --commit --tag  # Edit, validate, commit, tag, push`,
	Args: cobra.ExactArgs(1),
	RunE: runBump,
}

var (
	bumpDryRun bool
	bumpCommit bool
	bumpTag    bool
	bumpForce  bool
	bumpEditor string
	bumpDir    string
)

func init() {
	bumpCmd.Flags().BoolVar(&bumpDryRun, "dry-run", false, "Show planned edits as diffs without writing")
	bumpCmd.Flags().BoolVar(&bumpCommit, "commit", false, "Commit changes after successful validation")
	bumpCmd.Flags().BoolVar(&bumpTag, "tag", false, "Create an annotated tag and push (implies --commit)")
	bumpCmd.Flags().BoolVar(&bumpForce, "force", false, "Publish even when there is nothing new to commit")
	bumpCmd.Flags().StringVar(&bumpEditor, "editor", "", "Editing strategy: structured or heuristic (default from config)")
	bumpCmd.Flags().StringVar(&bumpDir, "dir", ".", "Workspace root to operate on")

	rootCmd.AddCommand(bumpCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	noOp, _ := cmd.Flags().GetBool("no-op")
	dryRun := bumpDryRun || noOp
	doCommit := bumpCommit || bumpTag

	version := versioning.Normalize(args[0])
	if err := versioning.Validate(version); err != nil {
		return withCode(exitcode.InvalidInput, fmt.Errorf("invalid version %q: %w", args[0], err))
	}

	cfg, err := config.Load(bumpDir)
	if err != nil {
		return withCode(exitcode.InvalidInput, err)
	}

	editor, err := manifest.ForStrategy(effectiveEditor(cmd.Flags(), cfg))
	if err != nil {
		return withCode(exitcode.InvalidInput, err)
	}

	publisher := release.NewPublisher(bumpDir, cfg)
	if doCommit && !dryRun {
		// Guards run before any edit so a rejection leaves the tree untouched.
		if err := publisher.CheckGuards(); err != nil {
			return withCode(exitcode.PublishFailure, err)
		}
	}

	paths, err := manifest.Discover(bumpDir, cfg.Excludes)
	if err != nil {
		return withCode(exitcode.GeneralError, err)
	}
	logger.Debug("Planning edits",
		logger.Int("manifests", len(paths)),
		logger.String("editor", editor.Name()),
		logger.String("version", version))

	plan := &manifest.Plan{}
	for _, rel := range paths {
		m, err := manifest.Load(bumpDir, rel)
		if err != nil {
			return withCode(exitcode.EditFailure, err)
		}
		warnOnDowngrade(m, version)
		res, err := editor.Edit(m, version)
		if err != nil {
			return withCode(exitcode.EditFailure, err)
		}
		plan.Results = append(plan.Results, res)
	}

	plan.Summarize(out, dryRun)
	if !plan.HasChanges() {
		return nil
	}

	if dryRun {
		if err := plan.RenderDiffs(out); err != nil {
			return withCode(exitcode.GeneralError, err)
		}
		return nil
	}

	if err := plan.Apply(bumpDir, out); err != nil {
		return withCode(exitcode.EditFailure, err)
	}

	runner := checks.NewRunner(bumpDir)
	runner.Stdout = out
	runner.Stderr = errOut
	if err := runner.Run(cmd.Context(), checks.FromConfig(cfg.Checks)); err != nil {
		fmt.Fprintln(out, "Checks failed. You can fix locally and re-run the script.")
		return withCode(exitcode.ValidationFailure, err)
	}

	if doCommit {
		opts := release.Options{Commit: doCommit, Tag: bumpTag, Force: bumpForce}
		if err := publisher.Publish(version, opts); err != nil {
			return withCode(exitcode.PublishFailure, err)
		}
		if bumpTag {
			fmt.Fprintln(out, "Committed and pushed changes.")
		} else {
			fmt.Fprintln(out, "Committed changes.")
		}
	}

	printBumpSummary(cmd, out, version, plan, cfg, doCommit)
	return nil
}

// effectiveEditor picks the editing strategy without letting the config
// default override an explicit flag.
func effectiveEditor(flags *pflag.FlagSet, cfg *config.Config) string {
	if flags.Changed("editor") {
		return bumpEditor
	}
	return cfg.Editor
}

// warnOnDowngrade logs when the target is lower than a manifest's
// current package version. Downgrades are allowed; the warning flags
// likely typos.
func warnOnDowngrade(m manifest.ManifestFile, target string) {
	current, ok := manifest.CurrentVersion(m)
	if !ok {
		return
	}
	cmp, err := versioning.Compare(target, current)
	if err != nil {
		return
	}
	if cmp == versioning.ComparisonLess {
		logger.Warn("Target version is lower than current version",
			logger.String("file", m.Path),
			logger.String("current", current),
			logger.String("target", target))
	}
}

// printBumpSummary draws the run summary box after a successful bump.
// Suppressed in JSON log mode where box art would pollute the stream.
func printBumpSummary(cmd *cobra.Command, out io.Writer, version string, plan *manifest.Plan, cfg *config.Config, published bool) {
	jsonLogs, _ := cmd.Flags().GetBool("json")
	if jsonLogs {
		return
	}

	lines := []string{
		fmt.Sprintf("Bumped to %s", version),
		fmt.Sprintf("Files changed: %d", len(plan.Changed())),
		fmt.Sprintf("Checks passed: %d", len(cfg.Checks)),
	}
	if published {
		actions := "commit"
		if bumpTag {
			actions = "commit, tag, push"
		}
		lines = append(lines, "Published: "+actions)
	}
	fmt.Fprint(out, ascii.Box(lines))
}
