// Package pathmodel turns platform path strings into flat segment sequences
// that can be compared, matched and recombined without string arithmetic.
package pathmodel

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/joe/quickcopy/pkg/errors"
)

// KeySeparator joins segments in a join key.
const KeySeparator = "/"

// Segments is an ordered list of path components with no separators.
type Segments []string

// Decompose splits path on either `\` or `/` and drops empty components.
func Decompose(path string) Segments {
	fields := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})

	return Segments(fields)
}

// Identical reports whether a and b have the same length and match
// case-insensitively component by component.
func Identical(a, b Segments) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}

	return true
}

// ContainsAll reports whether some contiguous run of a matches b.
// A mismatch restarts the scan at the next start position in a.
func ContainsAll(a, b Segments) bool {
	if len(b) == 0 {
		return true
	}

	for start := 0; start+len(b) <= len(a); start++ {
		if Identical(a[start:start+len(b)], b) {
			return true
		}
	}

	return false
}

// RelativeSuffix returns the part of full that is not shared with base.
// Components are compared positionally and case-insensitively. The result
// is empty when full ends at or before the end of base. A full path that
// diverges from base before base is exhausted is not under base and
// yields an integrity error.
func RelativeSuffix(full, base Segments) (Segments, error) {
	for i := range full {
		if i >= len(base) {
			return clone(full[i:]), nil
		}

		if !strings.EqualFold(full[i], base[i]) {
			return nil, pkgerrors.NewOpError(
				pkgerrors.ErrIntegrity,
				"relative suffix",
				full.String(),
				fmt.Errorf("%w: %s diverges from %s at %q", ErrNotUnderBase, full, base, full[i]),
			)
		}
	}

	return Segments{}, nil
}

// Append concatenates base and suffix into a new sequence.
func Append(base, suffix Segments) Segments {
	out := make(Segments, 0, len(base)+len(suffix))
	out = append(out, base...)

	return append(out, suffix...)
}

// Len returns the number of components, which is the path depth.
func (s Segments) Len() int {
	return len(s)
}

// Key returns the case-insensitive, separator-normalized join key.
func (s Segments) Key() string {
	return strings.ToLower(strings.Join(s, KeySeparator))
}

// String joins the components with KeySeparator, preserving case.
func (s Segments) String() string {
	return strings.Join(s, KeySeparator)
}

// Render turns s into a concrete path using sep. Any leading separators of
// anchor are kept, so an absolute root stays absolute and a UNC prefix
// survives.
func (s Segments) Render(anchor string, sep byte) string {
	prefix := leadingSeparators(anchor, sep)

	return prefix + strings.Join(s, string(sep))
}

// ErrNotUnderBase is wrapped when a path is not inside the expected root.
var ErrNotUnderBase = errors.New("path is not under base")

func clone(s Segments) Segments {
	out := make(Segments, len(s))
	copy(out, s)

	return out
}

func leadingSeparators(anchor string, sep byte) string {
	n := 0
	for n < len(anchor) && (anchor[n] == '/' || anchor[n] == '\\') {
		n++
	}

	return strings.Repeat(string(sep), n)
}
