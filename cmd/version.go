/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cratebump/internal/gitctx"
	"github.com/fulmenhq/cratebump/pkg/buildinfo"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show cratebump version information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Show detailed build and git information")
	versionCmd.Flags().Bool("json", false, "Output version information in JSON format")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	version := buildinfo.BinaryVersion

	// Git information for extended output
	var gitCommit, gitBranch string
	var gitDirty bool
	if extended {
		if ctx, err := gitctx.Collect("."); err == nil && ctx != nil {
			gitCommit = ctx.SHA
			gitBranch = ctx.Branch
			gitDirty = ctx.Dirty
		}
	}

	if jsonOutput {
		versionInfo := map[string]interface{}{
			"version":   version,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		if mv := buildinfo.ModuleVersion(); mv != "" {
			versionInfo["moduleVersion"] = mv
		}
		if extended {
			if len(gitCommit) >= 8 {
				versionInfo["gitCommit"] = gitCommit[:8]
			} else {
				versionInfo["gitCommit"] = "unknown"
			}
			versionInfo["gitBranch"] = gitBranch
			versionInfo["gitDirty"] = gitDirty
		}
		jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	}

	if extended {
		fmt.Fprintf(out, "cratebump %s\n", version)
		if len(gitCommit) >= 8 {
			fmt.Fprintf(out, "Git commit: %s\n", gitCommit[:8]) // Short commit hash
		} else {
			fmt.Fprintf(out, "Git commit: unknown\n")
		}
		if gitBranch != "" {
			fmt.Fprintf(out, "Git branch: %s\n", gitBranch)
		}
		if gitDirty {
			fmt.Fprintf(out, "Git status: dirty (uncommitted changes)\n")
		} else {
			fmt.Fprintf(out, "Git status: clean\n")
		}
		fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	} else {
		fmt.Fprintf(out, "cratebump %s\n", version)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}

	return nil
}
