// Package main is the entry point for the quickcopy application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/quickcopy/internal/config"
	"github.com/joe/quickcopy/internal/logging"
	"github.com/joe/quickcopy/internal/syncengine"
	"github.com/joe/quickcopy/internal/tui"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitStopped = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

//nolint:funlen // Startup reads top to bottom
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, stdout)
	if errors.Is(err, config.ErrExitEarly) {
		return exitOK
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useTUI := cfg.TUI && cfg.Mode != config.Service && term.IsTerminal(int(os.Stdout.Fd()))

	logger, closeLog, err := newLogger(cfg, useTUI, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}

	defer closeLog()

	slog.SetDefault(logger)

	if cfg.Mode != config.Service && !useTUI {
		printBanner(stdout, cfg)
	}

	settings, err := cfg.Settings()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitUsage
	}

	locker, err := syncengine.NewTargetLocker("")
	if err != nil {
		logger.Error("failed to prepare target locks", "error", err)
		return exitFailed
	}

	var metrics *syncengine.RunMetrics

	runEngine := func(ctx context.Context, emitter syncengine.EventEmitter) error {
		engine := syncengine.NewEngine(settings,
			syncengine.WithLogger(logger),
			syncengine.WithLocker(locker),
			syncengine.WithEmitter(syncengine.Emitters{syncengine.LogEmitter{Logger: logger}, emitter}),
		)

		if cfg.Mode.Polls() {
			return engine.Run(ctx)
		}

		cycle, runErr := engine.RunOnce(ctx)
		metrics = cycle

		return runErr
	}

	if useTUI {
		err = tui.Run(ctx, runEngine, tea.WithAltScreen())
	} else {
		err = runEngine(ctx, nil)
	}

	if useTUI && metrics != nil {
		fmt.Fprintln(stdout, metrics.String())
	}

	switch {
	case ctx.Err() != nil:
		return exitStopped
	case err != nil:
		logger.Error("sync failed", "error", err)
		return exitFailed
	case metrics != nil && metrics.Failed():
		return exitFailed
	default:
		return exitOK
	}
}

func newLogger(cfg *config.Config, useTUI bool, stderr io.Writer) (*slog.Logger, func(), error) {
	if useTUI {
		file, err := logging.OpenLogFile("")
		if err != nil {
			return nil, nil, err
		}

		logger := logging.New(logging.Options{Level: cfg.LogLevel, Writer: file})

		return logger, func() { _ = file.Close() }, nil
	}

	format := logging.Console
	if cfg.Mode == config.Service {
		format = logging.JSON
	}

	return logging.New(logging.Options{Format: format, Level: cfg.LogLevel, Writer: stderr}), func() {}, nil
}
