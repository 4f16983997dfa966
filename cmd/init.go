/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cratebump/internal/assets"
	"github.com/fulmenhq/cratebump/pkg/exitcode"
	"github.com/fulmenhq/cratebump/pkg/logger"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .cratebump.yaml configuration",
	Long: `Init writes a commented starter .cratebump.yaml to the workspace root.
The generated file documents the editor strategy, exclude globs, the
validation check sequence, and the commit/tag settings, all set to
their defaults.

Examples:
  cratebump init            # Write .cratebump.yaml in the current directory
  cratebump init --force    # Replace an existing .cratebump.yaml`,
	Args: cobra.NoArgs,
	RunE: runInitConfig,
}

var (
	initForce bool
	initDir   string
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing .cratebump.yaml")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Workspace root to operate on")

	rootCmd.AddCommand(initCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	noOp, _ := cmd.Flags().GetBool("no-op")

	data, ok := assets.GetTemplate("config/cratebump.yaml")
	if !ok {
		return withCode(exitcode.GeneralError, fmt.Errorf("embedded starter config missing"))
	}

	target := filepath.Join(initDir, ".cratebump.yaml")
	if _, err := os.Stat(target); err == nil && !initForce {
		return withCode(exitcode.InvalidInput,
			fmt.Errorf("%s already exists. Use --force to replace", target))
	}

	if noOp {
		logger.Info(fmt.Sprintf("[NO-OP] Would write starter config: %s", target))
		return nil
	}

	if err := os.WriteFile(target, data, 0600); err != nil {
		return withCode(exitcode.GeneralError, fmt.Errorf("failed to write %s: %w", target, err))
	}

	fmt.Fprintf(out, "✅ Wrote %s\n", target)
	return nil
}
