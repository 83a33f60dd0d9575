package syncengine

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joe/quickcopy/internal/executor"
)

// RunMetrics aggregates one sync cycle across all targets.
type RunMetrics struct {
	RunID         string
	Started       time.Time
	Duration      time.Duration
	Targets       int
	FailedTargets int
	LockedTargets int
	Creates       int
	Updates       int
	Deletes       int
	Attempted     int
	FailedActions int
	Skipped       int
	Suppressed    int
	BytesCopied   int64
}

// Failed reports whether any target or action failed.
func (m *RunMetrics) Failed() bool {
	return m.FailedTargets > 0 || m.FailedActions > 0
}

// addPlan counts a target's planned actions.
func (m *RunMetrics) addPlan(plan PlanReady) {
	m.Creates += plan.Creates
	m.Updates += plan.Updates
	m.Deletes += plan.Deletes
}

// addSummary folds a target's execution summary in.
func (m *RunMetrics) addSummary(summary *executor.Summary) {
	m.Attempted += summary.Attempted
	m.FailedActions += summary.Failed
	m.Skipped += summary.Skipped
	m.Suppressed += summary.Suppressed
	m.BytesCopied += summary.BytesCopied
}

// String summarizes the cycle in one line.
func (m *RunMetrics) String() string {
	return fmt.Sprintf(
		"%d target(s), %d failed; %s create(s), %s update(s), %s delete(s); "+
			"%s attempted, %s failed, %s skipped, %s suppressed; %s copied in %s",
		m.Targets, m.FailedTargets,
		humanize.Comma(int64(m.Creates)), humanize.Comma(int64(m.Updates)), humanize.Comma(int64(m.Deletes)),
		humanize.Comma(int64(m.Attempted)), humanize.Comma(int64(m.FailedActions)),
		humanize.Comma(int64(m.Skipped)), humanize.Comma(int64(m.Suppressed)),
		humanize.IBytes(uint64(max(m.BytesCopied, 0))), m.Duration.Round(time.Millisecond),
	)
}
