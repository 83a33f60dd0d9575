package errors

import (
	"errors"
	"io/fs"
	"strings"
)

// PatternMatcher maps an error to a category.
type PatternMatcher interface {
	Match(err error) ErrorCategory
}

// NewPatternMatcher returns a matcher that checks well-known fs sentinels
// first and then falls back to message patterns.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		// Checked in order; the first hit wins.
		patterns: []categoryPatterns{
			{CategoryPermission, []string{"permission denied", "access denied", "operation not permitted"}},
			{CategoryDiskSpace, []string{"no space left on device", "disk full", "quota exceeded"}},
			{CategoryDelete, []string{"directory not empty", "cannot remove"}},
			{CategoryExists, []string{"file exists", "already exists"}},
			{CategoryPath, []string{"no such file or directory", "file not found", "does not exist", "not a directory"}},
			{CategoryConnection, []string{"ssh:", "connection refused", "connection reset", "handshake failed", "broken pipe"}},
			{CategoryCopy, []string{"short write", "input/output error", "i/o error"}},
		},
	}
}

type categoryPatterns struct {
	category ErrorCategory
	patterns []string
}

type patternMatcher struct {
	patterns []categoryPatterns
}

// Match returns the category for err, or CategoryUnknown.
func (m *patternMatcher) Match(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	switch {
	case errors.Is(err, fs.ErrPermission):
		return CategoryPermission
	case errors.Is(err, fs.ErrExist):
		return CategoryExists
	case errors.Is(err, fs.ErrNotExist):
		return CategoryPath
	}

	msg := strings.ToLower(err.Error())
	for _, entry := range m.patterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(msg, pattern) {
				return entry.category
			}
		}
	}

	return CategoryUnknown
}
