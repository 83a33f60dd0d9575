package errors

import (
	"errors"
	"regexp"
	"strings"
)

// Enricher turns plain errors into ActionableErrors.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher returns an Enricher using the default matcher and generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

//nolint:gochecknoglobals // Compiled once, shared by every enricher.
var pathExtractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:\\[^\s:]+):`),
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:/[^\s:]+):`),
}

type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich categorizes err and attaches suggestions. Nil stays nil and an
// error that is already actionable is returned unchanged. When
// affectedPath is empty, the path is taken from an OpError or from the
// message ("open /x/y: permission denied").
func (e *enricher) Enrich(err error, affectedPath string) error {
	if err == nil {
		return nil
	}

	var actionable ActionableError
	if errors.As(err, &actionable) {
		return err
	}

	if affectedPath == "" {
		affectedPath = pathOf(err)
	}

	category := e.matcher.Match(err)

	return NewActionableError(err, category, e.generator.Generate(category, affectedPath), affectedPath)
}

func pathOf(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Path != "" {
		return opErr.Path
	}

	msg := err.Error()
	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 {
			if path := strings.TrimSpace(matches[1]); path != "" {
				return path
			}
		}
	}

	return ""
}
