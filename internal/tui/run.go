package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/quickcopy/internal/syncengine"
)

// RunFunc runs the engine with emitter wired in and returns when it is
// done or ctx ends.
type RunFunc func(ctx context.Context, emitter syncengine.EventEmitter) error

// Run shows the TUI while run executes and returns run's error. Quitting
// the TUI cancels the context passed to run.
func Run(ctx context.Context, run RunFunc, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := NewEventBridge()
	program := tea.NewProgram(NewModel(bridge, cancel), opts...)
	runErr := make(chan error, 1)

	go func() {
		err := run(ctx, bridge)
		runErr <- err

		program.Send(RunFinishedMsg{Err: err})
	}()

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()

	cancel()
	bridge.Close()

	engineErr := <-runErr

	if err != nil {
		return fmt.Errorf("failed to run the terminal UI: %w", err)
	}

	return engineErr
}
