package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Layout.
const (
	defaultPadding   = 2
	progressBarWidth = 40
	minBarWidth      = 10
	maxBarWidth      = 100
	barMargin        = 20
	maxErrorsShown   = 5
	keyCtrlC         = "ctrl+c"
)

//nolint:gochecknoglobals // Terminal capabilities are read once at startup
var (
	colorsDisabled  = os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
	unicodeDisabled = os.Getenv("TERM") == "dumb"
)

// Color codes.
const (
	accentColorCode    = "62"  // Blue
	dimColorCode       = "240" // Dark gray
	errorColorCode     = "196" // Red
	highlightColorCode = "86"  // Cyan
	primaryColorCode   = "205" // Pink/purple
	successColorCode   = "42"  // Green
	warningColorCode   = "226" // Yellow
)

func color(code string) lipgloss.TerminalColor {
	if colorsDisabled {
		return lipgloss.NoColor{}
	}

	return lipgloss.Color(code)
}

func boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color(accentColorCode)).
		Padding(0, defaultPadding)
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(color(primaryColorCode))
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(color(highlightColorCode))
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color(dimColorCode))
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(color(errorColorCode))
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(color(successColorCode))
}

func warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color(warningColorCode))
}

func successSymbol() string {
	if unicodeDisabled {
		return "[ok]"
	}

	return "✓"
}

func errorSymbol() string {
	if unicodeDisabled {
		return "[x]"
	}

	return "✗"
}

func pendingSymbol() string {
	if unicodeDisabled {
		return "[ ]"
	}

	return "○"
}

func skippedSymbol() string {
	if unicodeDisabled {
		return "[!]"
	}

	return "⊘"
}
