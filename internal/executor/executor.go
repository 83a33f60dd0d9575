// Package executor applies an ordered action list to a target tree.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joe/quickcopy/internal/detector"
	"github.com/joe/quickcopy/internal/inventory"
	pkgerrors "github.com/joe/quickcopy/pkg/errors"
	"github.com/joe/quickcopy/pkg/fileops"
	"github.com/joe/quickcopy/pkg/filesystem"
	"github.com/joe/quickcopy/pkg/formatters"
	"github.com/joe/quickcopy/pkg/pathmodel"
)

// Result is the outcome of one attempted action.
type Result struct {
	Action      detector.Action
	Destination string
	Bytes       int64
	Err         error
}

// Summary describes one execution.
type Summary struct {
	Attempted   int
	Succeeded   int
	Failed      int
	Skipped     int
	Suppressed  int
	BytesCopied int64
	Results     []Result
	Duration    time.Duration
}

// Failures returns the results that carry an error.
func (s *Summary) Failures() []Result {
	var failed []Result

	for _, result := range s.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}

	return failed
}

// Reporter observes execution. Methods may be called from several
// goroutines when Workers > 1.
type Reporter interface {
	ActionStarted(action detector.Action, destination string)
	ActionComplete(result Result)
	Progress(done, total int, text string)
}

// Options tunes an Executor.
type Options struct {
	EnableDeletes bool
	// Workers > 1 runs the creates and updates of one depth concurrently.
	Workers  int
	Logger   *slog.Logger
	Reporter Reporter
}

// Executor applies action lists from a source filesystem to a target
// filesystem.
type Executor struct {
	ops      *fileops.FileOps
	target   filesystem.FileSystem
	opts     Options
	logger   *slog.Logger
	enricher pkgerrors.Enricher
}

// New returns an Executor.
func New(source, target filesystem.FileSystem, opts Options) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}

	opts.Workers = max(opts.Workers, 1)

	return &Executor{
		ops:      fileops.New(source, target),
		target:   target,
		opts:     opts,
		logger:   logger,
		enricher: pkgerrors.NewEnricher(),
	}
}

// Execute runs every action of list in detector.Order. A failed action
// is recorded and the rest still run. With deletes disabled, the first
// delete abandons all remaining deletes, which are counted as suppressed.
// The returned error is non-nil only when ctx ended the run early.
func (e *Executor) Execute(ctx context.Context, list *detector.ActionList) (*Summary, error) {
	start := time.Now()
	ordered := detector.Order(list.Actions)

	run := &execution{
		executor: e,
		list:     list,
		summary:  &Summary{Skipped: list.Skipped},
		total:    len(ordered),
	}

	split := len(ordered)
	for i, action := range ordered {
		if action.Kind == detector.Delete {
			split = i
			break
		}
	}

	err := run.writes(ctx, ordered[:split])
	if err == nil {
		err = run.deletes(ctx, ordered[split:])
	}

	run.summary.Duration = time.Since(start)

	e.logger.Info("execution finished",
		"attempted", run.summary.Attempted,
		"succeeded", run.summary.Succeeded,
		"failed", run.summary.Failed,
		"skipped", run.summary.Skipped,
		"suppressed", run.summary.Suppressed,
		"copied", formatters.FormatBytes(run.summary.BytesCopied),
		"duration", formatters.FormatDuration(run.summary.Duration))

	if err != nil {
		return run.summary, fmt.Errorf("execution stopped: %w", err)
	}

	return run.summary, nil
}

// DestinationFor computes where a created source record lands under
// targetRoot, rendered with the target filesystem's separator.
func DestinationFor(
	source *inventory.FileRecord,
	sourceRoot, targetRoot string,
	sep byte,
) (string, error) {
	suffix, err := pathmodel.RelativeSuffix(
		pathmodel.Decompose(source.AbsolutePath),
		inventory.RootSegments(sourceRoot),
	)
	if err != nil {
		return "", err //nolint:wrapcheck // Already an IntegrityError naming the path
	}

	return pathmodel.Append(inventory.RootSegments(targetRoot), suffix).Render(targetRoot, sep), nil
}

// execution is the mutable state of one Execute call.
type execution struct {
	executor *Executor
	list     *detector.ActionList
	summary  *Summary
	total    int

	mu   sync.Mutex
	done int
}

func (r *execution) writes(ctx context.Context, writes []detector.Action) error {
	for _, tier := range tiers(writes) {
		results := make([]Result, len(tier))

		if r.executor.opts.Workers > 1 {
			group := errgroup.Group{}
			group.SetLimit(r.executor.opts.Workers)

			for i, action := range tier {
				group.Go(func() error {
					results[i] = r.apply(ctx, action)
					return nil
				})
			}

			_ = group.Wait()
		} else {
			for i, action := range tier {
				if ctx.Err() != nil {
					break
				}

				results[i] = r.apply(ctx, action)
			}
		}

		for _, result := range results {
			if result.Action.Source != nil {
				r.record(result)
			}
		}

		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // Wrapped by Execute
		}
	}

	return nil
}

func (r *execution) deletes(ctx context.Context, deletes []detector.Action) error {
	for i, action := range deletes {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // Wrapped by Execute
		}

		if !r.executor.opts.EnableDeletes {
			r.summary.Suppressed = len(deletes) - i
			r.executor.logger.Warn("deletes are disabled; abandoning remaining deletes",
				"first", action.Destination.AbsolutePath,
				"suppressed", r.summary.Suppressed)

			return nil
		}

		r.record(r.apply(ctx, action))
	}

	return nil
}

// apply performs one action. It is safe for concurrent use.
func (r *execution) apply(ctx context.Context, action detector.Action) Result {
	result := Result{Action: action}
	e := r.executor

	var op string

	switch action.Kind {
	case detector.Create:
		dest, err := DestinationFor(action.Source, r.list.SourceRoot, r.list.TargetRoot, e.target.Separator())
		if err != nil {
			result.Err = err
			break
		}

		result.Destination = dest
		e.opts.Reporter.ActionStarted(action, dest)

		if action.Source.IsDir {
			op = "mkdir"
			result.Err = e.ops.Mkdir(dest)
		} else {
			op = "copy"
			result.Bytes, result.Err = r.copy(ctx, action.Source.AbsolutePath, dest)
		}
	case detector.Update:
		op = "copy"
		result.Destination = action.Destination.AbsolutePath
		e.opts.Reporter.ActionStarted(action, result.Destination)
		result.Bytes, result.Err = r.copy(ctx, action.Source.AbsolutePath, result.Destination)
	case detector.Delete:
		op = "remove"
		result.Destination = action.Destination.AbsolutePath
		e.opts.Reporter.ActionStarted(action, result.Destination)
		result.Err = e.ops.Remove(result.Destination)
	}

	if result.Err != nil && op != "" {
		result.Err = e.enricher.Enrich(pkgerrors.IO(op, result.Destination, result.Err), result.Destination)
	}

	return result
}

func (r *execution) copy(ctx context.Context, src, dst string) (int64, error) {
	stats, err := r.executor.ops.CopyFile(ctx, src, dst, nil)
	if err != nil {
		return 0, err //nolint:wrapcheck // Kinded and enriched by apply
	}

	return stats.BytesCopied, nil
}

// record folds a result into the summary and reports progress.
func (r *execution) record(result Result) {
	e := r.executor

	r.mu.Lock()
	r.summary.Attempted++
	r.summary.Results = append(r.summary.Results, result)

	if result.Err != nil {
		r.summary.Failed++
	} else {
		r.summary.Succeeded++
		r.summary.BytesCopied += result.Bytes
	}

	r.done++
	done := r.done
	r.mu.Unlock()

	if result.Err != nil {
		e.logger.Error("action failed",
			"kind", result.Action.Kind.String(),
			"path", result.Destination,
			"error", result.Err,
			"suggestions", pkgerrors.FormatSuggestions(result.Err))
	} else {
		e.logger.Debug("action complete",
			"kind", result.Action.Kind.String(),
			"path", result.Destination)
	}

	text := formatters.Progress(done, r.total)
	e.logger.Debug("progress", "progress", text)
	e.opts.Reporter.ActionComplete(result)
	e.opts.Reporter.Progress(done, r.total, text)
}

type nopReporter struct{}

func (nopReporter) ActionStarted(detector.Action, string) {}
func (nopReporter) ActionComplete(Result)                 {}
func (nopReporter) Progress(int, int, string)             {}
