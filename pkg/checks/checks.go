// Package checks runs the post-edit validation command sequence.
//
// Checks are opaque external commands (cargo fmt, clippy, test, audit by
// default) judged solely by exit status. Output streams pass straight
// through to the caller's writers and are never parsed.
package checks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fulmenhq/cratebump/pkg/config"
	"github.com/fulmenhq/cratebump/pkg/logger"
)

// Check is a single external validation command.
type Check struct {
	Name    string
	Command string
	Args    []string
}

// FromConfig converts configured check specs into runnable checks,
// preserving order.
func FromConfig(specs []config.CheckSpec) []Check {
	out := make([]Check, len(specs))
	for i, s := range specs {
		out[i] = Check{Name: s.Name, Command: s.Command, Args: s.Args}
	}
	return out
}

// Label returns the check name title-cased for log output.
func (c Check) Label() string {
	return cases.Title(language.Und).String(c.Name)
}

// String returns the full command line of the check.
func (c Check) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return fmt.Sprintf("%s %s", c.Command, strings.Join(c.Args, " "))
}

// CheckError reports a check command that exited non-zero.
type CheckError struct {
	Name     string
	ExitCode int
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s failed with exit code %d", e.Name, e.ExitCode)
}

// Runner executes checks strictly in order, stopping at the first
// failure.
type Runner struct {
	// Dir is the working directory for check execution (workspace root).
	Dir string
	// Stdout carries command output and failure notices.
	Stdout io.Writer
	// Stderr carries per-check progress lines and command errors.
	Stderr io.Writer
}

// NewRunner creates a Runner rooted at dir, wired to the process
// streams.
func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes every check in order. The first non-zero exit aborts the
// sequence: later checks never start and the failure is returned as a
// *CheckError. Checks run with no timeout; a hung check blocks until
// the surrounding context ends the process.
func (r *Runner) Run(ctx context.Context, checks []Check) error {
	if len(checks) == 0 {
		logger.Debug("No checks configured")
		return nil
	}

	if err := r.preflight(checks); err != nil {
		return err
	}

	for _, c := range checks {
		fmt.Fprintf(r.Stderr, "Running %s...\n", c.Name)
		logger.Debug("Starting check",
			logger.String("check", c.Label()),
			logger.String("command", c.String()))

		if err := r.runCheck(ctx, c); err != nil {
			var checkErr *CheckError
			if errors.As(err, &checkErr) {
				fmt.Fprintf(r.Stdout, "%s failed (exit %d). Aborting commit.\n", c.Name, checkErr.ExitCode)
			}
			logger.Error("Check failed", logger.String("check", c.Label()), logger.Err(err))
			return err
		}

		logger.Debug("Check passed", logger.String("check", c.Label()))
	}
	return nil
}

// preflight resolves every distinct check command on PATH before any
// check runs, so a missing tool is reported up front instead of midway
// through the sequence.
func (r *Runner) preflight(checks []Check) error {
	seen := make(map[string]bool)
	for _, c := range checks {
		if seen[c.Command] {
			continue
		}
		seen[c.Command] = true
		if _, err := exec.LookPath(c.Command); err != nil {
			return fmt.Errorf("check command %q not available in PATH", c.Command)
		}
	}
	return nil
}

// runCheck executes a single check to completion.
func (r *Runner) runCheck(ctx context.Context, c Check) error {
	// #nosec G204 -- check commands come from the checked-in config file,
	// same trust level as a Makefile.
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = r.Dir
	cmd.Env = os.Environ()
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CheckError{Name: c.Name, ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("run check %s: %w", c.Name, err)
	}
	return nil
}
