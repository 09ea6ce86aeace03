// Package version implements parsing and comparison of rock versions.
//
// A rock version is a base version in semver-like form, optionally followed
// by a numeric rockspec revision separated by a dash (e.g. "2.1.0-3").
// Base versions are compared semantically; revisions break ties, higher
// revision first. The original string form is preserved for display and
// persistence.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalid is returned when a version string cannot be parsed.
var ErrInvalid = errors.New("invalid version")

// Version is a parsed rock version. The zero value is not valid; use Parse.
type Version struct {
	base     *semver.Version
	revision int
	raw      string
}

// Parse parses a rock version string such as "1.0", "2.1.0" or "2.1.0-3".
// A trailing "-<number>" is treated as the rockspec revision; any other
// suffix is handed to the semver parser as-is.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	base := s
	revision := 0
	if idx := strings.LastIndexByte(s, '-'); idx > 0 {
		if rev, err := strconv.Atoi(s[idx+1:]); err == nil {
			base = s[:idx]
			revision = rev
		}
	}

	sv, err := semver.NewVersion(base)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}

	return Version{base: sv, revision: revision, raw: s}, nil
}

// MustParse parses a version string and panics on failure.
// Intended for tests and compile-time constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original string form.
func (v Version) String() string { return v.raw }

// IsZero reports whether v is the zero Version (never produced by Parse).
func (v Version) IsZero() bool { return v.base == nil }

// Revision returns the rockspec revision, 0 when none was given.
func (v Version) Revision() int { return v.revision }

// Compare returns -1, 0 or 1 depending on whether v is lower than, equal
// to, or higher than o. The base version is compared semantically first;
// equal bases are ordered by revision.
func (v Version) Compare(o Version) int {
	if c := v.base.Compare(o.base); c != 0 {
		return c
	}
	switch {
	case v.revision < o.revision:
		return -1
	case v.revision > o.revision:
		return 1
	}
	return 0
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// MarshalJSON encodes the version as its original string form.
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.raw)), nil
}

// UnmarshalJSON decodes a version from its string form.
func (v *Version) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Constraint is a parsed dependency constraint, e.g. ">= 5.1, < 5.4".
type Constraint struct {
	c   *semver.Constraints
	raw string
}

// ParseConstraint parses a constraint expression. Comma-separated clauses
// are ANDed together, matching the rockspec dependency syntax.
func ParseConstraint(s string) (Constraint, error) {
	c, err := semver.NewConstraint(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: constraint %q: %v", ErrInvalid, s, err)
	}
	return Constraint{c: c, raw: s}, nil
}

// String returns the original constraint expression.
func (c Constraint) String() string { return c.raw }

// Check reports whether version v satisfies the constraint. The rockspec
// revision does not participate in constraint matching.
func (c Constraint) Check(v Version) bool {
	return c.c.Check(v.base)
}
