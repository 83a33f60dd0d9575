package syncengine

import (
	"context"
	"log/slog"
)

// LogEmitter writes a trace of every event to a logger at debug level.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit implements EventEmitter.
func (e LogEmitter) Emit(event Event) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	switch ev := event.(type) {
	case CycleStarted:
		logger.Debug("event", "type", "cycle_started", "run_id", ev.RunID, "targets", len(ev.Targets))
	case ScanStarted:
		logger.Debug("event", "type", "scan_started", "side", string(ev.Side), "root", ev.Root)
	case ScanComplete:
		logger.Debug("event", "type", "scan_complete", "side", string(ev.Side), "root", ev.Root, "count", ev.Count)
	case PlanReady:
		logger.Debug("event", "type", "plan_ready", "target", ev.Target,
			"creates", ev.Creates, "updates", ev.Updates, "deletes", ev.Deletes, "skipped", ev.Skipped)
	case ActionStarted:
		logger.Debug("event", "type", "action_started", "target", ev.Target, "kind", ev.Kind.String(), "path", ev.Path)
	case ActionComplete:
		logger.Debug("event", "type", "action_complete", "target", ev.Target,
			"path", ev.Result.Destination, "ok", ev.Result.Err == nil)
	case Progress:
		logger.Debug("event", "type", "progress", "target", ev.Target, "progress", ev.Text)
	case TargetComplete:
		logger.Debug("event", "type", "target_complete", "target", ev.Target, "failed", ev.Summary.Failed)
	case TargetFailed:
		logger.Debug("event", "type", "target_failed", "target", ev.Target, "error", ev.Err)
	case TargetSkipped:
		logger.Debug("event", "type", "target_skipped", "target", ev.Target, "reason", ev.Reason)
	case CycleComplete:
		logger.Debug("event", "type", "cycle_complete", "metrics", ev.Metrics.String())
	}
}
