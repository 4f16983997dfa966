/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cratebump/pkg/config"
	"github.com/fulmenhq/cratebump/pkg/exitcode"
	"github.com/fulmenhq/cratebump/pkg/manifest"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the Cargo.toml manifests a bump would touch",
	Long: `List walks the workspace the same way bump does, honoring ignore files
and configured excludes, and prints every candidate Cargo.toml with its
current package version.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listDir string

func init() {
	listCmd.Flags().StringVar(&listDir, "dir", ".", "Workspace root to operate on")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(listDir)
	if err != nil {
		return withCode(exitcode.InvalidInput, err)
	}

	paths, err := manifest.Discover(listDir, cfg.Excludes)
	if err != nil {
		return withCode(exitcode.GeneralError, err)
	}

	for _, rel := range paths {
		m, err := manifest.Load(listDir, rel)
		if err != nil {
			return withCode(exitcode.GeneralError, err)
		}
		if version, ok := manifest.CurrentVersion(m); ok {
			fmt.Fprintf(out, "%s (%s)\n", rel, version)
		} else {
			fmt.Fprintln(out, rel)
		}
	}
	return nil
}
