package manifest

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fulmenhq/cratebump/pkg/logger"
	"github.com/fulmenhq/cratebump/pkg/safeio"
	"github.com/pmezard/go-difflib/difflib"
)

// Plan holds the outcome of editing every discovered manifest, in
// discovery order.
type Plan struct {
	Results []EditResult
}

// Changed returns the results whose text actually changed.
func (p *Plan) Changed() []EditResult {
	var out []EditResult
	for _, r := range p.Results {
		if r.Changed {
			out = append(out, r)
		}
	}
	return out
}

// HasChanges reports whether any manifest would be rewritten.
func (p *Plan) HasChanges() bool {
	for _, r := range p.Results {
		if r.Changed {
			return true
		}
	}
	return false
}

// Summarize prints the change summary: either that nothing needs to
// happen, or the list of files that will be touched. In dry-run mode
// the phrasing is conditional since no write follows.
func (p *Plan) Summarize(w io.Writer, dryRun bool) {
	changed := p.Changed()
	if len(changed) == 0 {
		fmt.Fprintln(w, "No changes necessary.")
		return
	}
	if dryRun {
		fmt.Fprintf(w, "Would change %d file(s):\n", len(changed))
	} else {
		fmt.Fprintf(w, "Updating %d file(s):\n", len(changed))
	}
	for _, r := range changed {
		fmt.Fprintf(w, " - %s\n", r.Path)
	}
}

// RenderDiffs writes a unified diff for every changed manifest, for
// dry-run mode.
func (p *Plan) RenderDiffs(w io.Writer) error {
	fmt.Fprint(w, "\nDry-run enabled; not writing files. Showing diffs:\n\n")
	for _, r := range p.Changed() {
		fmt.Fprintf(w, "=== %s ===\n", r.Path)
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(r.OldText),
			B:        difflib.SplitLines(r.NewText),
			FromFile: r.Path,
			ToFile:   r.Path + ".new",
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("diff %s: %w", r.Path, err)
		}
		fmt.Fprint(w, text)
	}
	return nil
}

// Apply writes every changed manifest back under root, preserving file
// permissions, and confirms each write.
func (p *Plan) Apply(root string, w io.Writer) error {
	for _, r := range p.Changed() {
		target := filepath.Join(root, filepath.FromSlash(r.Path))
		if err := safeio.WriteFilePreservePerms(target, []byte(r.NewText)); err != nil {
			return fmt.Errorf("write %s: %w", r.Path, err)
		}
		fmt.Fprintf(w, "Updated %s\n", r.Path)
		logger.Debug("Wrote manifest", logger.String("file", target))
	}
	return nil
}
