package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/quickcopy/internal/syncengine"
)

// bridgeBuffer is how many events may queue before the engine waits on
// the TUI.
const bridgeBuffer = 256

// EngineEventMsg wraps a syncengine.Event for use as a tea.Msg.
type EngineEventMsg struct {
	Event syncengine.Event
}

// EventBridge adapts syncengine events to bubble tea messages.
// It implements syncengine.EventEmitter; the model reads it with ListenCmd.
//
// Progress events are dropped when the buffer is full. Every other event
// is delivered unless the bridge is closed.
type EventBridge struct {
	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		events: make(chan tea.Msg, bridgeBuffer),
		done:   make(chan struct{}),
	}
}

// Emit implements syncengine.EventEmitter.
func (b *EventBridge) Emit(event syncengine.Event) {
	msg := EngineEventMsg{Event: event}

	if _, ok := event.(syncengine.Progress); ok {
		select {
		case b.events <- msg:
		case <-b.done:
		default:
		}

		return
	}

	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// ListenCmd returns a tea.Cmd that blocks until the next event. It yields
// nil once the bridge is closed.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close releases any blocked Emit and ListenCmd. It is safe to call more
// than once.
func (b *EventBridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}
