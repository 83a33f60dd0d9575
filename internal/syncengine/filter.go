package syncengine

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// GlobFilter includes relative paths matching a doublestar pattern,
// case-insensitively. An empty pattern includes everything.
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a GlobFilter for pattern.
func NewGlobFilter(pattern string) *GlobFilter {
	return &GlobFilter{
		normalizedPattern: strings.ToLower(pattern),
		isEmpty:           pattern == "",
	}
}

// ShouldInclude reports whether relativePath matches. An invalid pattern
// matches nothing.
func (f *GlobFilter) ShouldInclude(relativePath string) bool {
	if f.isEmpty {
		return true
	}

	matched, err := doublestar.Match(f.normalizedPattern, strings.ToLower(relativePath))
	if err != nil {
		return false
	}

	return matched
}

// IgnoreFilter excludes relative paths matched by gitignore-style rules.
type IgnoreFilter struct {
	rules *gitignore.GitIgnore
}

// NewIgnoreFilter compiles gitignore-style lines.
func NewIgnoreFilter(lines ...string) *IgnoreFilter {
	return &IgnoreFilter{rules: gitignore.CompileIgnoreLines(lines...)}
}

// LoadIgnoreFile compiles the rules in the file at path.
func LoadIgnoreFile(path string) (*IgnoreFilter, error) {
	rules, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	return &IgnoreFilter{rules: rules}, nil
}

// ShouldInclude reports whether relativePath is not ignored.
func (f *IgnoreFilter) ShouldInclude(relativePath string) bool {
	return !f.rules.MatchesPath(relativePath)
}
