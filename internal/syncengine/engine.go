// Package syncengine runs sync cycles: one source walk shared by every
// target, then detection and execution per target, reported as events.
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joe/quickcopy/internal/detector"
	"github.com/joe/quickcopy/internal/executor"
	"github.com/joe/quickcopy/pkg/filesystem"
)

// Settings is what a cycle syncs and how.
type Settings struct {
	Source        string
	Targets       []string
	Strategies    detector.Strategies
	Filters       detector.Filters
	EnableDeletes bool
	Workers       int
	Interval      time.Duration
}

// Opener resolves a root string to a filesystem.
type Opener func(root string, poolSize int) (*filesystem.Opened, error)

// Engine runs sync cycles.
type Engine struct {
	settings Settings
	logger   *slog.Logger
	emitter  EventEmitter
	clock    TimeProvider
	open     Opener
	locker   *TargetLocker
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEmitter sets where events go. The default drops them.
func WithEmitter(emitter EventEmitter) Option {
	return func(e *Engine) { e.emitter = emitter }
}

// WithTimeProvider replaces the real clock.
func WithTimeProvider(clock TimeProvider) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithOpener replaces filesystem.Open.
func WithOpener(open Opener) Option {
	return func(e *Engine) { e.open = open }
}

// WithLocker sets the per-target locker. Without one, targets are not
// locked.
func WithLocker(locker *TargetLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// NewEngine returns an Engine for settings.
func NewEngine(settings Settings, opts ...Option) *Engine {
	engine := &Engine{
		settings: settings,
		logger:   slog.Default(),
		emitter:  Emitters(nil),
		clock:    RealTimeProvider{},
		open:     filesystem.Open,
	}

	for _, opt := range opts {
		opt(engine)
	}

	engine.settings.Workers = max(engine.settings.Workers, 1)

	return engine
}

// Run repeats cycles every Interval until ctx ends, then returns nil. A
// cycle never overlaps the previous one; ticks missed while a cycle runs
// are dropped.
func (e *Engine) Run(ctx context.Context) error {
	ticker := e.clock.NewTicker(e.settings.Interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunOnce(ctx); err != nil && ctx.Err() == nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
	}
}

// RunOnce runs one cycle over every target. Target failures are reported
// in the metrics and events; the error is non-nil only when ctx ended
// the cycle.
func (e *Engine) RunOnce(ctx context.Context) (*RunMetrics, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	metrics := &RunMetrics{RunID: runID, Started: e.clock.Now(), Targets: len(e.settings.Targets)}

	e.emitter.Emit(CycleStarted{RunID: runID, Source: e.settings.Source, Targets: e.settings.Targets})
	logger.Info("sync cycle started", "source", e.settings.Source, "targets", len(e.settings.Targets))

	det := e.detector(logger)

	source, closeSource, err := e.scanSource(ctx, det)
	if err != nil {
		for _, target := range e.settings.Targets {
			e.fail(logger, metrics, target, err)
		}
	} else {
		defer closeSource()

		for _, target := range e.settings.Targets {
			if ctx.Err() != nil {
				break
			}

			e.syncTarget(ctx, logger.With("source", e.settings.Source, "target", target), det, metrics, source, target)
		}
	}

	metrics.Duration = e.clock.Now().Sub(metrics.Started)
	e.emitter.Emit(CycleComplete{Metrics: metrics})

	if err := ctx.Err(); err != nil {
		logger.Warn("sync cycle interrupted", "metrics", metrics.String())
		return metrics, fmt.Errorf("sync cycle interrupted: %w", err)
	}

	logger.Info("Done!", "metrics", metrics.String())

	return metrics, nil
}

func (e *Engine) scanSource(ctx context.Context, det *detector.Detector) (*detector.Source, func(), error) {
	opened, err := e.open(e.settings.Source, e.settings.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open source %s: %w", e.settings.Source, err)
	}

	source, err := det.ScanSource(ctx, opened.FS, opened.Root)
	if err != nil {
		_ = opened.Close()
		return nil, nil, err
	}

	return source, func() { _ = opened.Close() }, nil
}

func (e *Engine) syncTarget(
	ctx context.Context,
	logger *slog.Logger,
	det *detector.Detector,
	metrics *RunMetrics,
	source *detector.Source,
	target string,
) {
	if e.locker != nil {
		unlock, err := e.locker.Lock(target)
		if errors.Is(err, ErrTargetLocked) {
			metrics.LockedTargets++
			logger.Warn("target is being synced by another process; skipping")
			e.emitter.Emit(TargetSkipped{Target: target, Reason: "locked by another process"})

			return
		}

		if err != nil {
			e.fail(logger, metrics, target, err)
			return
		}

		defer unlock()
	}

	opened, err := e.open(target, e.settings.Workers)
	if err != nil {
		e.fail(logger, metrics, target, fmt.Errorf("failed to open target %s: %w", target, err))
		return
	}

	defer func() {
		_ = opened.Close()
	}()

	list, err := det.DetectWithSource(ctx, source, opened.FS, opened.Root)
	if err != nil {
		e.fail(logger, metrics, target, err)
		return
	}

	creates, updates, deletes := list.Counts()
	plan := PlanReady{
		Target:   target,
		Creates:  creates,
		Updates:  updates,
		Deletes:  deletes,
		Skipped:  list.Skipped,
		Filtered: list.Filtered,
	}
	metrics.addPlan(plan)
	e.emitter.Emit(plan)

	if list.Empty() {
		logger.Info("Nothing to do.", "skipped", list.Skipped, "filtered", list.Filtered)
	}

	exec := executor.New(source.FS, opened.FS, executor.Options{
		EnableDeletes: e.settings.EnableDeletes,
		Workers:       e.settings.Workers,
		Logger:        logger,
		Reporter:      targetReporter{target: target, emitter: e.emitter},
	})

	summary, err := exec.Execute(ctx, list)
	metrics.addSummary(summary)
	e.emitter.Emit(TargetComplete{Target: target, Summary: summary})

	if err != nil {
		logger.Warn("target sync interrupted", "error", err)
	}
}

func (e *Engine) detector(logger *slog.Logger) *detector.Detector {
	return detector.New(e.settings.Strategies, e.settings.Filters, detector.Options{
		Workers: e.settings.Workers,
		Logger:  logger,
		OnScan: func(side detector.Side, root string, count int) {
			if count < 0 {
				e.emitter.Emit(ScanStarted{Side: side, Root: root})
			} else {
				e.emitter.Emit(ScanComplete{Side: side, Root: root, Count: count})
			}
		},
	})
}

func (e *Engine) fail(logger *slog.Logger, metrics *RunMetrics, target string, err error) {
	metrics.FailedTargets++
	logger.Error("target failed; continuing with the next one", "target", target, "error", err)
	e.emitter.Emit(TargetFailed{Target: target, Err: err})
}
