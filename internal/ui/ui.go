package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ncmkit/vipsweep/internal/tasks"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// RunFunc executes the sweep, reporting progress on the provided channel.
type RunFunc func(progress chan<- tasks.ProgressUpdate) (*tasks.SweepResult, error)

type progressMsg tasks.ProgressUpdate

type resultMsg struct {
	result *tasks.SweepResult
	err    error
}

// Model renders a running sweep.
type Model struct {
	run      RunFunc
	updates  chan tasks.ProgressUpdate
	spinner  spinner.Model
	bar      progress.Model
	current  tasks.ProgressUpdate
	percent  float64
	result   *tasks.SweepResult
	err      error
	done     bool
	quitting bool
}

// NewModel creates a Model that will execute run when the program starts.
func NewModel(run RunFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	return Model{
		run:     run,
		updates: make(chan tasks.ProgressUpdate, 16),
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

// Result returns the sweep outcome once the program has finished.
func (m Model) Result() (*tasks.SweepResult, error) {
	return m.result, m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.waitForUpdate())
}

func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		result, err := m.run(m.updates)
		close(m.updates)
		return resultMsg{result: result, err: err}
	}
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return progressMsg(update)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.current = tasks.ProgressUpdate(msg)
		if m.current.Total > 0 {
			m.percent = float64(m.current.Step) / float64(m.current.Total)
		}
		return m, tea.Batch(m.waitForUpdate(), m.bar.SetPercent(m.percent))

	case resultMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting && !m.done {
		return dimStyle.Render("canceled") + "\n"
	}

	view := titleStyle.Render("Sweeping VIP tracks") + "\n\n"

	if m.done {
		if m.err != nil {
			return view + errStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
		}
		if m.result != nil {
			view += fmt.Sprintf("Added %d, skipped %d, unliked %d",
				m.result.AddResult.Success, m.result.AddResult.Skipped, m.result.UnlikeResult.Success)
			if m.result.Failed() {
				view += errStyle.Render(fmt.Sprintf(", %d failed",
					m.result.AddResult.Failed+m.result.UnlikeResult.Failed))
			}
			view += "\n"
		}
		return view
	}

	message := m.current.Message
	if message == "" {
		message = "Preparing..."
	}

	view += fmt.Sprintf("%s %s\n\n", m.spinner.View(), message)
	view += m.bar.View() + "\n\n"
	view += dimStyle.Render("q to abort") + "\n"
	return view
}
