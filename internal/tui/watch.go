package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexdesk/lexdesk/internal/status"
)

// StatusSource is what the watch view reads from.
type StatusSource interface {
	Status() status.Report
	ForceCheck(ctx context.Context) bool
	Subscribe() (<-chan status.ServiceStatus, func())
}

type (
	statusMsg  status.ServiceStatus
	tickMsg    time.Time
	checkedMsg bool
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// WatchModel is a live status view. r forces a probe, q quits.
type WatchModel struct {
	src      StatusSource
	updates  <-chan status.ServiceStatus
	cancel   func()
	spinner  spinner.Model
	report   status.Report
	checking bool
	now      func() time.Time
}

// NewWatch creates the model and subscribes to status changes.
// Call Close when the program exits.
func NewWatch(src StatusSource) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	updates, cancel := src.Subscribe()
	return &WatchModel{
		src:     src,
		updates: updates,
		cancel:  cancel,
		spinner: s,
		report:  src.Status(),
		now:     time.Now,
	}
}

// Init starts the spinner, the clock and the subscription.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(), m.waitForStatus())
}

// Update handles keys, status changes and clock ticks.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.checking {
				return m, nil
			}
			m.checking = true
			return m, m.forceCheck()
		}
		return m, nil

	case statusMsg:
		m.report = m.src.Status()
		return m, m.waitForStatus()

	case checkedMsg:
		m.checking = false
		m.report = m.src.Status()
		return m, nil

	case tickMsg:
		m.report = m.src.Status()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status block.
func (m *WatchModel) View() string {
	header := m.spinner.View() + " watching AI service"
	if m.checking {
		header = m.spinner.View() + " probing..."
	}
	return header + "\n\n" + RenderReport(m.report, m.now()) + "\n" +
		helpStyle.Render("r: check now • q: quit") + "\n"
}

// Close ends the status subscription.
func (m *WatchModel) Close() {
	m.cancel()
}

// RunWatch runs the watch view until the user quits.
func RunWatch(src StatusSource) error {
	m := NewWatch(src)
	defer m.Close()

	_, err := tea.NewProgram(m).Run()
	return err
}

func (m *WatchModel) waitForStatus() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return statusMsg(st)
	}
}

func (m *WatchModel) forceCheck() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		return checkedMsg(src.ForceCheck(context.Background()))
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
