package manifest

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/fulmenhq/cratebump/pkg/logger"
	"github.com/pelletier/go-toml/v2"
)

// StructuredEditor locates version fields through a full TOML parse and
// rewrites them with targeted line replacements, preserving every other
// byte of the document. It then re-parses its own output and proves
// that only the intended fields changed; any mismatch is fatal.
//
// NOTE: targeted text replacement instead of unmarshal/remarshal keeps
// comments, key ordering, and formatting intact.
type StructuredEditor struct{}

// NewStructuredEditor creates the default, structure-verified editor.
func NewStructuredEditor() *StructuredEditor {
	return &StructuredEditor{}
}

// Name returns the strategy name used in config and flags.
func (e *StructuredEditor) Name() string {
	return "structured"
}

// fieldRef addresses one version field slated for rewrite by its full
// key path, e.g. ["dependencies", "crateA", "version"].
type fieldRef struct {
	path []string
}

// Edit rewrites the package version and the versions of internal path
// dependencies. Manifests the parser rejects abort the run.
func (e *StructuredEditor) Edit(m ManifestFile, version string) (EditResult, error) {
	res := EditResult{Path: m.Path, OldText: m.Content, NewText: m.Content}

	var doc map[string]interface{}
	if err := toml.Unmarshal([]byte(m.Content), &doc); err != nil {
		return res, fmt.Errorf("parse %s: %w", m.Path, err)
	}

	targets := collectTargets(doc, version)
	if len(targets) == 0 {
		return res, nil
	}

	newText, err := rewriteFields(m.Content, targets, version)
	if err != nil {
		return res, fmt.Errorf("%s: %w", m.Path, err)
	}
	if err := verifyEdit(m.Content, newText, targets, version); err != nil {
		return res, fmt.Errorf("%s: %w", m.Path, err)
	}

	logger.Debug("Rewrote version fields",
		logger.String("file", m.Path),
		logger.Int("fields", len(targets)))

	res.NewText = newText
	res.Changed = newText != m.Content
	return res, nil
}

// collectTargets returns the key paths of version fields whose current
// value is a string differing from the target version. Version values
// that are not plain strings (e.g. workspace inheritance tables) are
// left alone, as are path dependencies with no version key at all.
func collectTargets(doc map[string]interface{}, version string) []fieldRef {
	var targets []fieldRef

	if pkg, ok := doc["package"].(map[string]interface{}); ok {
		if cur, ok := pkg["version"].(string); ok && cur != version {
			targets = append(targets, fieldRef{path: []string{"package", "version"}})
		}
	}

	for _, table := range depTables {
		deps, ok := doc[table].(map[string]interface{})
		if !ok {
			continue
		}
		for name, raw := range deps {
			spec, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			depPath, ok := spec["path"].(string)
			if !ok || !isInternalPath(depPath) {
				continue
			}
			cur, ok := spec["version"].(string)
			if !ok || cur == version {
				continue
			}
			targets = append(targets, fieldRef{path: []string{table, name, "version"}})
		}
	}
	return targets
}

var quotedRe = regexp.MustCompile(`"[^"]*"|'[^']*'`)

var inlineVersionRe = regexp.MustCompile(`([{,]\s*(?:"version"|'version'|version)\s*=\s*)("[^"]*"|'[^']*')`)

// rewriteFields applies every target to the raw lines of the document,
// tracking the current table so a key line is only touched inside the
// table the model located it in.
func rewriteFields(content string, targets []fieldRef, version string) (string, error) {
	type pendingField struct {
		ref  fieldRef
		done bool
	}
	pending := make([]*pendingField, 0, len(targets))
	for _, t := range targets {
		pending = append(pending, &pendingField{ref: t})
	}

	lines := strings.Split(content, "\n")
	var section []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if key, ok := sectionKey(trimmed); ok {
			section = key
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		keyPart, ok := keyValueSplit(line)
		if !ok {
			continue
		}
		full := append(append([]string{}, section...), splitDottedKey(keyPart)...)

		for _, p := range pending {
			if p.done {
				continue
			}
			switch {
			case equalKeyPath(full, p.ref.path):
				// Direct assignment: version = "..." inside its table,
				// or a dotted form like crateA.version = "...".
				newLine, ok := rewriteValueString(line, keyPart, version)
				if !ok {
					return "", fmt.Errorf("could not rewrite %s", strings.Join(p.ref.path, "."))
				}
				lines[i] = newLine
				p.done = true
			case equalKeyPath(full, p.ref.path[:len(p.ref.path)-1]):
				// Inline table: crateA = { path = "../crateA", version = "..." }
				newLine, ok := rewriteInlineVersion(line, version)
				if !ok {
					return "", fmt.Errorf("could not rewrite %s", strings.Join(p.ref.path, "."))
				}
				lines[i] = newLine
				p.done = true
			default:
				continue
			}
			break
		}
	}

	for _, p := range pending {
		if !p.done {
			return "", fmt.Errorf("could not locate %s", strings.Join(p.ref.path, "."))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// verifyEdit proves the rewritten text still parses and that exactly
// the intended fields changed, by comparing it against the original
// document with the target values applied in-model.
func verifyEdit(oldText, newText string, targets []fieldRef, version string) error {
	var want map[string]interface{}
	if err := toml.Unmarshal([]byte(oldText), &want); err != nil {
		return fmt.Errorf("reparse original: %w", err)
	}
	for _, t := range targets {
		if err := setField(want, t.path, version); err != nil {
			return err
		}
	}

	var got map[string]interface{}
	if err := toml.Unmarshal([]byte(newText), &got); err != nil {
		return fmt.Errorf("rewritten manifest no longer parses: %w", err)
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("rewrite altered fields beyond the intended versions")
	}
	return nil
}

func setField(doc map[string]interface{}, path []string, value string) error {
	cur := doc
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(map[string]interface{})
		if !ok {
			return fmt.Errorf("missing table %s", key)
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
	return nil
}

// sectionKey parses a [table] or [[table]] header line into its dotted
// key parts, honoring quoted segments.
func sectionKey(trimmed string) ([]string, bool) {
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	inner := trimmed[1:]
	if strings.HasPrefix(inner, "[") {
		inner = inner[1:]
	}

	var quote rune
	end := -1
	for i, r := range inner {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ']':
			end = i
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, false
	}
	return splitDottedKey(inner[:end]), true
}

// splitDottedKey splits a dotted TOML key into its parts, honoring
// quoted segments that may themselves contain dots.
func splitDottedKey(s string) []string {
	var parts []string
	var cur strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '.':
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, strings.TrimSpace(cur.String()))
	return parts
}

// keyValueSplit returns the key part of a `key = value` line, stopping
// at the first equals sign outside quotes. Comment lines and lines
// without an assignment report false.
func keyValueSplit(line string) (string, bool) {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '=':
			return line[:i], true
		case r == '#':
			return "", false
		}
	}
	return "", false
}

func equalKeyPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rewriteValueString replaces the first quoted string after the key's
// equals sign, keeping the key spelling, spacing, and any trailing
// comment.
func rewriteValueString(line, keyPart, version string) (string, bool) {
	head := line[:len(keyPart)+1]
	tail := line[len(keyPart)+1:]
	loc := quotedRe.FindStringIndex(tail)
	if loc == nil {
		return line, false
	}
	return head + tail[:loc[0]] + `"` + version + `"` + tail[loc[1]:], true
}

// rewriteInlineVersion replaces the version value inside an inline
// dependency table.
func rewriteInlineVersion(line, version string) (string, bool) {
	m := inlineVersionRe.FindStringSubmatchIndex(line)
	if m == nil {
		return line, false
	}
	start, end := m[4], m[5]
	return line[:start] + `"` + version + `"` + line[end:], true
}
