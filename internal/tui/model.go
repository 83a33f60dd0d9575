// Package tui renders sync cycles in the terminal with bubbletea. The
// engine feeds it through an EventBridge.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/quickcopy/internal/config"
	"github.com/joe/quickcopy/internal/executor"
	"github.com/joe/quickcopy/internal/syncengine"
	"github.com/joe/quickcopy/pkg/formatters"
)

// RunFinishedMsg is sent when the engine has returned; the program exits.
type RunFinishedMsg struct {
	Err error
}

type targetState int

const (
	statePending targetState = iota
	stateRunning
	stateDone
	stateFailed
	stateSkipped
)

type targetView struct {
	state   targetState
	plan    syncengine.PlanReady
	done    int
	total   int
	text    string
	summary *executor.Summary
	err     error
	reason  string
}

// Model shows the current cycle: scans, each target's plan and progress,
// failures, and the cycle metrics once it ends.
type Model struct {
	bridge  *EventBridge
	cancel  context.CancelFunc
	spinner spinner.Model
	bar     progress.Model

	runID    string
	source   string
	scanning string
	targets  []string
	views    map[string]*targetView
	failures []executor.Result
	metrics  *syncengine.RunMetrics

	finished bool
	err      error
	quitting bool
}

// NewModel returns a model reading bridge. cancel is called when the user
// quits.
func NewModel(bridge *EventBridge, cancel context.CancelFunc) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = labelStyle()

	return Model{
		bridge:  bridge,
		cancel:  cancel,
		spinner: spin,
		bar:     newProgressModel(progressBarWidth),
		views:   map[string]*targetView{},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.ListenCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-barMargin, minBarWidth), maxBarWidth)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case keyCtrlC, "q", "esc":
			m.quitting = true

			if m.cancel != nil {
				m.cancel()
			}

			return m, tea.Quit
		}

		return m, nil
	case RunFinishedMsg:
		m.finished = true
		m.err = msg.Err

		return m, tea.Quit
	case EngineEventMsg:
		m.apply(msg.Event)
		return m, m.bridge.ListenCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// Metrics returns the metrics of the last completed cycle, if any.
func (m Model) Metrics() *syncengine.RunMetrics {
	return m.metrics
}

func (m *Model) apply(event syncengine.Event) {
	switch ev := event.(type) {
	case syncengine.CycleStarted:
		m.runID = ev.RunID
		m.source = ev.Source
		m.targets = append([]string(nil), ev.Targets...)
		m.views = make(map[string]*targetView, len(ev.Targets))
		m.failures = nil
		m.metrics = nil

		for _, target := range ev.Targets {
			m.views[target] = &targetView{}
		}
	case syncengine.ScanStarted:
		m.scanning = fmt.Sprintf("Scanning %s %s", ev.Side, ev.Root)
	case syncengine.ScanComplete:
		m.scanning = ""
	case syncengine.PlanReady:
		view := m.view(ev.Target)
		view.state = stateRunning
		view.plan = ev
		view.total = ev.Total()
	case syncengine.Progress:
		view := m.view(ev.Target)
		view.done = ev.Done
		view.total = ev.Total
		view.text = ev.Text
	case syncengine.ActionComplete:
		if ev.Result.Err != nil {
			m.failures = append(m.failures, ev.Result)
		}
	case syncengine.TargetComplete:
		view := m.view(ev.Target)
		view.state = stateDone
		view.summary = ev.Summary
	case syncengine.TargetFailed:
		view := m.view(ev.Target)
		view.state = stateFailed
		view.err = ev.Err
	case syncengine.TargetSkipped:
		view := m.view(ev.Target)
		view.state = stateSkipped
		view.reason = ev.Reason
	case syncengine.CycleComplete:
		m.metrics = ev.Metrics
		m.scanning = ""
	}
}

func (m *Model) view(target string) *targetView {
	view, ok := m.views[target]
	if !ok {
		view = &targetView{}
		m.views[target] = view
		m.targets = append(m.targets, target)
	}

	return view
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return warningStyle().Render("Stopping...") + "\n"
	}

	var builder strings.Builder

	builder.WriteString(titleStyle().Render(config.Name))

	if m.runID != "" {
		builder.WriteString(dimStyle().Render("  run " + m.runID))
	}

	builder.WriteString("\n\n")

	if m.source != "" {
		fmt.Fprintf(&builder, "%s %s\n", labelStyle().Render("Source:"), m.source)
	}

	if m.scanning != "" {
		fmt.Fprintf(&builder, "%s %s\n", m.spinner.View(), m.scanning)
	}

	for _, target := range m.targets {
		builder.WriteString(m.renderTarget(target, m.views[target]))
	}

	if len(m.failures) > 0 {
		builder.WriteString("\n" + labelStyle().Render("Errors") + "\n")
		builder.WriteString(renderFailures(m.failures, maxErrorsShown))
	}

	if m.metrics != nil {
		builder.WriteString("\n")

		if m.metrics.Failed() {
			builder.WriteString(errorStyle().Render("Finished with errors"))
		} else {
			builder.WriteString(successStyle().Render("Done!"))
		}

		builder.WriteString("\n" + dimStyle().Render(m.metrics.String()) + "\n")
	}

	if m.err != nil {
		builder.WriteString("\n" + errorStyle().Render(m.err.Error()) + "\n")
	}

	if !m.finished {
		builder.WriteString("\n" + dimStyle().Render("q or ctrl+c to stop"))
	}

	return boxStyle().Render(builder.String()) + "\n"
}

func (m Model) renderTarget(target string, view *targetView) string {
	if view == nil {
		view = &targetView{}
	}

	switch view.state {
	case stateRunning:
		percent := 1.0
		if view.total > 0 {
			percent = float64(view.done) / float64(view.total)
		}

		return fmt.Sprintf("%s %s  %s\n  %s %s\n",
			m.spinner.View(), target,
			dimStyle().Render(planText(view.plan)),
			renderProgress(m.bar, percent), view.text)
	case stateDone:
		line := fmt.Sprintf("%s %s  %s", successStyle().Render(successSymbol()), target, planText(view.plan))

		if view.summary != nil {
			line += fmt.Sprintf(", %s copied", formatters.FormatBytes(view.summary.BytesCopied))

			if view.summary.Failed > 0 {
				line += errorStyle().Render(fmt.Sprintf(", %d failed", view.summary.Failed))
			}

			if view.summary.Suppressed > 0 {
				line += warningStyle().Render(fmt.Sprintf(", %d deletes not applied", view.summary.Suppressed))
			}
		}

		return line + "\n"
	case stateFailed:
		return fmt.Sprintf("%s %s  %s\n", errorStyle().Render(errorSymbol()), target, errorStyle().Render(fmt.Sprint(view.err)))
	case stateSkipped:
		return fmt.Sprintf("%s %s  %s\n", warningStyle().Render(skippedSymbol()), target, warningStyle().Render(view.reason))
	default:
		return fmt.Sprintf("%s %s  %s\n", dimStyle().Render(pendingSymbol()), target, dimStyle().Render("waiting"))
	}
}

func planText(plan syncengine.PlanReady) string {
	if plan.Total() == 0 {
		return "nothing to do"
	}

	return fmt.Sprintf("%d create(s), %d update(s), %d delete(s)", plan.Creates, plan.Updates, plan.Deletes)
}
