// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Format selects the handler.
type Format int

// Formats.
const (
	// Console is human-readable tint output, colored on a terminal.
	Console Format = iota
	// JSON is one JSON object per record.
	JSON
)

// Options configures New.
type Options struct {
	Format Format
	Level  slog.Leveler
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger for opts.
func New(opts Options) *slog.Logger {
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	if opts.Format == JSON {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: TimeFormat,
		NoColor:    !IsTerminal(out),
	}))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// OpenLogFile truncates and opens quickcopy.log in dir, creating dir. The
// TUI owns the terminal, so its logs go here instead.
func OpenLogFile(dir string) (*os.File, error) {
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find cache directory: %w", err)
		}

		dir = filepath.Join(cache, "quickcopy")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "quickcopy.log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // Path is built from the cache dir
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return file, nil
}
