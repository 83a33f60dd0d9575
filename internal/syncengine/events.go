package syncengine

import (
	"github.com/joe/quickcopy/internal/detector"
	"github.com/joe/quickcopy/internal/executor"
)

// Event is the interface implemented by all sync engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Emitters fans every event out to each emitter in turn.
type Emitters []EventEmitter

// Emit implements EventEmitter.
func (e Emitters) Emit(event Event) {
	for _, emitter := range e {
		if emitter != nil {
			emitter.Emit(event)
		}
	}
}

// Cycle events

// CycleStarted is emitted when a sync cycle begins.
type CycleStarted struct {
	RunID   string
	Source  string
	Targets []string
}

func (CycleStarted) isEvent() {}

// CycleComplete is emitted when every target of a cycle has been handled.
type CycleComplete struct {
	Metrics *RunMetrics
}

func (CycleComplete) isEvent() {}

// Scan events

// ScanStarted is emitted when a walk of one side begins.
type ScanStarted struct {
	Side detector.Side
	Root string
}

func (ScanStarted) isEvent() {}

// ScanComplete is emitted when a walk of one side finishes.
type ScanComplete struct {
	Side  detector.Side
	Root  string
	Count int
}

func (ScanComplete) isEvent() {}

// Plan and execution events

// PlanReady is emitted once a target's actions are known.
type PlanReady struct {
	Target   string
	Creates  int
	Updates  int
	Deletes  int
	Skipped  int
	Filtered int
}

func (PlanReady) isEvent() {}

// Total is the number of actions in the plan.
func (p PlanReady) Total() int {
	return p.Creates + p.Updates + p.Deletes
}

// ActionStarted is emitted before an action touches the target.
type ActionStarted struct {
	Target string
	Kind   detector.Kind
	Path   string
}

func (ActionStarted) isEvent() {}

// ActionComplete is emitted after every attempted action.
type ActionComplete struct {
	Target string
	Result executor.Result
}

func (ActionComplete) isEvent() {}

// Progress is emitted after every attempted action.
type Progress struct {
	Target string
	Done   int
	Total  int
	Text   string
}

func (Progress) isEvent() {}

// TargetComplete is emitted when a target's actions have run.
type TargetComplete struct {
	Target  string
	Summary *executor.Summary
}

func (TargetComplete) isEvent() {}

// Error events

// TargetFailed is emitted when a target could not be synced this cycle.
type TargetFailed struct {
	Target string
	Err    error
}

func (TargetFailed) isEvent() {}

// TargetSkipped is emitted when another process holds a target's lock.
type TargetSkipped struct {
	Target string
	Reason string
}

func (TargetSkipped) isEvent() {}

// targetReporter turns executor callbacks into events for one target.
type targetReporter struct {
	target  string
	emitter EventEmitter
}

func (r targetReporter) ActionStarted(action detector.Action, destination string) {
	r.emitter.Emit(ActionStarted{Target: r.target, Kind: action.Kind, Path: destination})
}

func (r targetReporter) ActionComplete(result executor.Result) {
	r.emitter.Emit(ActionComplete{Target: r.target, Result: result})
}

func (r targetReporter) Progress(done, total int, text string) {
	r.emitter.Emit(Progress{Target: r.target, Done: done, Total: total, Text: text})
}
