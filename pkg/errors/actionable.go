// Package errors classifies sync failures and attaches suggestions a user
// can act on.
//
// Kinds (ErrIO, ErrConfiguration, ErrIntegrity) say where in the pipeline a
// failure belongs. Categories say what went wrong at the OS level and drive
// the suggestions:
//
//	enricher := errors.NewEnricher()
//	if err := fs.Remove(path); err != nil {
//	    enriched := enricher.Enrich(err, path)
//	    fmt.Println(errors.FormatSuggestions(enriched))
//	}
package errors

import (
	"errors"
	"strings"
)

// Exported constants.
const (
	CategoryConnection ErrorCategory = "connection"
	CategoryCopy       ErrorCategory = "copy"
	CategoryDelete     ErrorCategory = "delete"
	CategoryDiskSpace  ErrorCategory = "disk_space"
	CategoryExists     ErrorCategory = "exists"
	CategoryPath       ErrorCategory = "path"
	CategoryPermission ErrorCategory = "permission"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ErrorCategory is the OS-level class of a failure.
type ErrorCategory string

// ActionableError is an error carrying a category and suggestions.
type ActionableError interface {
	error
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError wraps err with a category, suggestions and the path it
// concerns. The result still unwraps to err.
func NewActionableError(err error, category ErrorCategory, suggestions []string, affectedPath string) ActionableError {
	return &actionableError{
		err:          err,
		category:     category,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// FormatSuggestions renders the suggestions of err as an indented bullet
// list. It returns "" for nil errors and errors without suggestions.
func FormatSuggestions(err error) string {
	var actionable ActionableError
	if err == nil || !errors.As(err, &actionable) {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range actionable.Suggestions() {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

type actionableError struct {
	err          error
	category     ErrorCategory
	suggestions  []string
	affectedPath string
}

func (e *actionableError) AffectedPath() string    { return e.affectedPath }
func (e *actionableError) Category() ErrorCategory { return e.category }
func (e *actionableError) Error() string           { return e.err.Error() }
func (e *actionableError) Suggestions() []string   { return e.suggestions }
func (e *actionableError) Unwrap() error           { return e.err }
