package tui

import (
	"fmt"
	"strings"

	"github.com/joe/quickcopy/internal/executor"
	pkgerrors "github.com/joe/quickcopy/pkg/errors"
)

// renderFailures lists up to limit failed actions with their suggestions.
func renderFailures(failures []executor.Result, limit int) string {
	if len(failures) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, failure := range failures {
		if i >= limit {
			fmt.Fprintf(&builder, "  ... and %d more error(s)\n", len(failures)-limit)
			break
		}

		fmt.Fprintf(&builder, "  %s %s %s\n",
			errorStyle().Render(errorSymbol()), failure.Action.Kind, failure.Destination)
		fmt.Fprintf(&builder, "    %s\n", failure.Err)

		if suggestions := pkgerrors.FormatSuggestions(failure.Err); suggestions != "" {
			builder.WriteString(dimStyle().Render("    " + strings.ReplaceAll(suggestions, "\n", "\n    ")))
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
