// Package versioning parses and compares semantic version strings.
package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Comparison is the result of ordering two versions.
type Comparison int

const (
	ComparisonUnknown Comparison = iota
	ComparisonLess
	ComparisonEqual
	ComparisonGreater
)

var semverPattern = regexp.MustCompile(`^(?:[vV])?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

type semverIdentifier struct {
	raw     string
	numeric bool
	num     int
}

// Version represents a parsed semantic version.
type Version struct {
	major int
	minor int
	patch int
	pre   []semverIdentifier
	build string
	raw   string
}

// Normalize trims whitespace and strips a single leading 'v' or 'V' prefix.
// Tag-style inputs like "v1.2.3" normalize to "1.2.3"; everything else
// passes through for Validate to judge.
func Normalize(input string) string {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) > 1 && (trimmed[0] == 'v' || trimmed[0] == 'V') {
		rest := trimmed[1:]
		if rest[0] >= '0' && rest[0] <= '9' {
			return rest
		}
	}
	return trimmed
}

// Validate reports whether input is a well-formed semantic version.
// A leading 'v'/'V' prefix is accepted.
func Validate(input string) error {
	_, err := Parse(input)
	return err
}

// Parse parses a semantic version string. Numeric segments with leading
// zeros are rejected, as are empty prerelease/build identifiers.
func Parse(input string) (*Version, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, errors.New("empty version")
	}

	matches := semverPattern.FindStringSubmatch(trimmed)
	if len(matches) == 0 {
		return nil, fmt.Errorf("invalid semver format: %s", trimmed)
	}

	major, err := parseNumericSegment("major", matches[1])
	if err != nil {
		return nil, err
	}
	minor, err := parseNumericSegment("minor", matches[2])
	if err != nil {
		return nil, err
	}
	patch, err := parseNumericSegment("patch", matches[3])
	if err != nil {
		return nil, err
	}

	version := &Version{
		major: major,
		minor: minor,
		patch: patch,
		raw:   trimmed,
	}

	if prerelease := matches[4]; prerelease != "" {
		parts := strings.Split(prerelease, ".")
		version.pre = make([]semverIdentifier, len(parts))
		for i, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("invalid prerelease identifier: empty segment")
			}
			if isNumeric(part) {
				if len(part) > 1 && strings.HasPrefix(part, "0") {
					return nil, fmt.Errorf("invalid prerelease identifier: leading zeros not allowed")
				}
				num, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("invalid prerelease identifier '%s': %w", part, err)
				}
				version.pre[i] = semverIdentifier{raw: part, numeric: true, num: num}
			} else {
				version.pre[i] = semverIdentifier{raw: part}
			}
		}
	}

	if build := matches[5]; build != "" {
		parts := strings.Split(build, ".")
		for _, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("invalid build identifier: empty segment")
			}
		}
		version.build = build
	}

	return version, nil
}

func parseNumericSegment(name, segment string) (int, error) {
	value, err := strconv.Atoi(segment)
	if err != nil {
		return 0, fmt.Errorf("segment '%s': %w", segment, err)
	}
	if len(segment) > 1 && strings.HasPrefix(segment, "0") {
		return 0, fmt.Errorf("invalid %s segment: leading zeros not allowed", name)
	}
	return value, nil
}

// String returns the original string representation of the version.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// Compare determines ordering between versions a and b per SemVer 2.0.0
// precedence rules. Build metadata is ignored.
func Compare(a, b string) (Comparison, error) {
	av, err := Parse(a)
	if err != nil {
		return ComparisonUnknown, fmt.Errorf("invalid semver '%s': %w", a, err)
	}
	bv, err := Parse(b)
	if err != nil {
		return ComparisonUnknown, fmt.Errorf("invalid semver '%s': %w", b, err)
	}
	return compareVersions(av, bv), nil
}

func compareVersions(a, b *Version) Comparison {
	if a.major != b.major {
		if a.major < b.major {
			return ComparisonLess
		}
		return ComparisonGreater
	}
	if a.minor != b.minor {
		if a.minor < b.minor {
			return ComparisonLess
		}
		return ComparisonGreater
	}
	if a.patch != b.patch {
		if a.patch < b.patch {
			return ComparisonLess
		}
		return ComparisonGreater
	}

	if len(a.pre) == 0 && len(b.pre) == 0 {
		return ComparisonEqual
	}
	if len(a.pre) == 0 {
		return ComparisonGreater
	}
	if len(b.pre) == 0 {
		return ComparisonLess
	}

	limit := len(a.pre)
	if len(b.pre) < limit {
		limit = len(b.pre)
	}

	for i := 0; i < limit; i++ {
		ai := a.pre[i]
		bi := b.pre[i]
		if ai.numeric && bi.numeric {
			if ai.num < bi.num {
				return ComparisonLess
			}
			if ai.num > bi.num {
				return ComparisonGreater
			}
			continue
		}
		if ai.numeric && !bi.numeric {
			return ComparisonLess
		}
		if !ai.numeric && bi.numeric {
			return ComparisonGreater
		}
		if cmp := strings.Compare(ai.raw, bi.raw); cmp != 0 {
			if cmp < 0 {
				return ComparisonLess
			}
			return ComparisonGreater
		}
	}

	if len(a.pre) < len(b.pre) {
		return ComparisonLess
	}
	if len(a.pre) > len(b.pre) {
		return ComparisonGreater
	}

	return ComparisonEqual
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
