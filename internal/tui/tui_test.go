package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexdesk/lexdesk/internal/status"
)

type fakeSource struct {
	state  *status.State
	online bool
	checks int
}

func (f *fakeSource) Status() status.Report {
	return status.NewReporter(f.state).Report()
}

func (f *fakeSource) ForceCheck(context.Context) bool {
	f.checks++
	f.state.RecordProbe(f.online, nil)
	return f.online
}

func (f *fakeSource) Subscribe() (<-chan status.ServiceStatus, func()) {
	return f.state.Subscribe()
}

func TestBadge(t *testing.T) {
	assert.Contains(t, Badge(status.ModeRemote), "REMOTE")
	assert.Contains(t, Badge(status.ModeLocal), "LOCAL")
}

func TestRenderReport(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := status.Report{
		Status: status.ServiceStatus{
			Mode:              status.ModeLocal,
			LastCheck:         now.Add(-90 * time.Second),
			ConsecutiveErrors: 3,
			LastError:         "remote returned status 503",
		},
		Capabilities: status.Capabilities(status.ModeLocal),
	}

	out := RenderReport(r, now)
	assert.Contains(t, out, "LOCAL")
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "1m30s ago")
	assert.Contains(t, out, "503")
	assert.Contains(t, out, "summarize_text")

	r.Status.LastCheck = time.Time{}
	assert.Contains(t, RenderReport(r, now), "never")
}

func TestWatchModelForceCheck(t *testing.T) {
	src := &fakeSource{state: status.NewState(), online: true}
	m := NewWatch(src)
	defer m.Close()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.True(t, m.checking)
	assert.Contains(t, m.View(), "probing")

	// A second r while probing is ignored.
	_, again := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, again)

	msg := cmd()
	_, _ = m.Update(msg)

	assert.False(t, m.checking)
	assert.Equal(t, 1, src.checks)
	assert.Equal(t, status.ModeRemote, m.report.Status.Mode)
	assert.True(t, strings.Contains(m.View(), "REMOTE"))
}

func TestWatchModelReceivesStatusChanges(t *testing.T) {
	src := &fakeSource{state: status.NewState()}
	m := NewWatch(src)
	defer m.Close()

	wait := m.waitForStatus()
	src.state.RecordProbe(true, nil)

	msg := wait()
	_, next := m.Update(msg)

	assert.NotNil(t, next)
	assert.Equal(t, status.ModeRemote, m.report.Status.Mode)
}

func TestWatchModelQuit(t *testing.T) {
	m := NewWatch(&fakeSource{state: status.NewState()})
	defer m.Close()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
