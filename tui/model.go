// Package tui provides the Bubble Tea terminal UI for linktitle,
// displaying live resolution progress and a styled summary of failures.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/linktitle/resolver"
	"github.com/lukemcguire/linktitle/result"
)

// BatchFunc runs one resolution batch. It is called once, off the UI goroutine.
type BatchFunc func(ctx context.Context) (*result.Result, error)

// Model is the Bubble Tea model for the resolution TUI.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	run        BatchFunc
	spinner    spinner.Model
	progressCh <-chan resolver.ResolveEvent

	finished int
	failed   int
	total    int
	current  string
	quitting bool
	done     bool
	result   *result.Result
	err      error
	width    int
}

// NewModel creates a TUI model that runs run and follows progressCh.
func NewModel(ctx context.Context, cancel context.CancelFunc, run BatchFunc, progressCh <-chan resolver.ResolveEvent) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		run:        run,
		spinner:    spin,
		progressCh: progressCh,
	}
}

// Init starts the spinner, batch, and progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startBatch(), waitForProgress(m.progressCh))
}

// startBatch returns a tea.Cmd that runs the batch and sends BatchDoneMsg.
func (m Model) startBatch() tea.Cmd {
	return func() tea.Msg {
		res, err := m.run(m.ctx)
		if err != nil {
			err = fmt.Errorf("resolve: %w", err)
		}
		return BatchDoneMsg{Result: res, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ResolveProgressMsg:
		m.finished = msg.Done
		m.failed = msg.Failed
		m.total = msg.Total
		m.current = msg.Link
		return m, waitForProgress(m.progressCh)

	case BatchDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		return RenderSummary(m.result)
	}
	return fmt.Sprintf("%s Resolving... %d/%d, failed %d\n%s\n",
		m.spinner.View(), m.finished, m.total, m.failed,
		dimStyle.Render("  "+m.current))
}

// HasFailures reports whether any link failed to resolve.
func (m Model) HasFailures() bool {
	return len(m.result.Failures()) > 0
}

// GetResult returns the batch result for output formatting.
func (m Model) GetResult() *result.Result {
	return m.result
}

// Err returns the error the batch ended with, if any.
func (m Model) Err() error {
	return m.err
}
