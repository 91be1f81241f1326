// Package tui is the interactive confirmation boundary between
// verification and commit. It shows the staged plan, waits for a
// keypress, runs the commit with a spinner, and renders the transaction
// summary. The CLI falls back to a plain prompt when no usable terminal
// is available.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llmpatch/llmps/internal/engine"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// CommitFunc runs the commit once the user accepts the plan.
type CommitFunc func() (*engine.TransactionResult, error)

type resultMsg struct {
	result *engine.TransactionResult
	err    error
}

type state int

const (
	stateConfirm state = iota
	stateApplying
	stateDone
	stateDeclined
)

// Model drives the confirm/apply/summary flow.
type Model struct {
	review  []string
	commit  CommitFunc
	spinner spinner.Model

	state    state
	accepted bool
	result   *engine.TransactionResult
	err      error
}

// New creates a Model reviewing the given plan lines.
func New(review []string, commit CommitFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		review:  review,
		commit:  commit,
		spinner: s,
		state:   stateConfirm,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state != stateConfirm {
			// Once the commit is running it cannot be cancelled, only
			// awaited; keypresses including ctrl+c are swallowed.
			return m, nil
		}
		switch msg.String() {
		case "y", "Y":
			m.state = stateApplying
			m.accepted = true
			return m, tea.Batch(m.spinner.Tick, m.runCommit)
		case "n", "N", "q", "esc", "ctrl+c":
			m.state = stateDeclined
			return m, tea.Quit
		}
		return m, nil

	case resultMsg:
		m.state = stateDone
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	default:
		if m.state == stateApplying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m Model) View() string {
	switch m.state {
	case stateConfirm:
		return m.renderReview()
	case stateApplying:
		return fmt.Sprintf("%s Applying...\n", m.spinner.View())
	case stateDeclined:
		return faintStyle.Render("Nothing applied.") + "\n"
	case stateDone:
		return m.renderResult()
	default:
		return ""
	}
}

func (m Model) runCommit() tea.Msg {
	result, err := m.commit()
	return resultMsg{result: result, err: err}
}

func (m Model) renderReview() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Staged changes"))
	b.WriteString("\n")
	for _, line := range m.review {
		fmt.Fprintf(&b, "  %s\n", pathStyle.Render(line))
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("Apply these changes? [y/N] "))
	return b.String()
}

func (m Model) renderResult() string {
	var b strings.Builder
	if m.result == nil {
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
			b.WriteString("\n")
		}
		return b.String()
	}

	switch m.result.Status {
	case engine.StatusFullyApplied:
		b.WriteString(successStyle.Render(fmt.Sprintf("Applied %d of %d operations.", m.result.Applied, m.result.Total())))
	case engine.StatusPartiallyApplied:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Partially applied: %d of %d operations.", m.result.Applied, m.result.Total())))
	case engine.StatusAborted:
		b.WriteString(errorStyle.Render("Aborted: no changes were made."))
	}
	b.WriteString("\n")

	for _, out := range m.result.Outcomes {
		line := out.Path
		if out.NewPath != "" {
			line = out.Path + " -> " + out.NewPath
		}
		switch out.Status {
		case engine.StatusApplied:
			fmt.Fprintf(&b, "  %s %s\n", successStyle.Render("applied"), pathStyle.Render(line))
		case engine.StatusFailed:
			fmt.Fprintf(&b, "  %s %s: %s\n", errorStyle.Render("failed"), pathStyle.Render(line), out.Reason)
		case engine.StatusNotAttempted:
			fmt.Fprintf(&b, "  %s %s\n", faintStyle.Render("not attempted"), pathStyle.Render(line))
		}
	}
	for _, w := range m.result.Warnings {
		fmt.Fprintf(&b, "  %s %s\n", warnStyle.Render("warning:"), w)
	}
	return b.String()
}

// Run executes the confirmation flow and reports the commit result, and
// whether the user accepted the plan at all.
func Run(review []string, commit CommitFunc) (*engine.TransactionResult, bool, error) {
	program := tea.NewProgram(New(review, commit))
	final, err := program.Run()
	if err != nil {
		return nil, false, fmt.Errorf("confirmation ui failed: %w", err)
	}
	m := final.(Model)
	return m.result, m.accepted, m.err
}
