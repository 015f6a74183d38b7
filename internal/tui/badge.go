// Package tui renders the service status in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexdesk/lexdesk/internal/status"
)

var (
	remoteBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42")).
			Padding(0, 1)

	localBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Badge renders the mode as a colored label.
func Badge(mode status.Mode) string {
	if mode == status.ModeRemote {
		return remoteBadge.Render("REMOTE")
	}
	return localBadge.Render("LOCAL")
}

// RenderReport renders the full status block.
func RenderReport(r status.Report, now time.Time) string {
	st := r.Status

	var sb strings.Builder
	sb.WriteString(Badge(st.Mode))
	if st.IsOnline {
		sb.WriteString(" AI service online")
	} else {
		sb.WriteString(" AI service offline, using local generator")
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Last check:  "), lastCheck(st.LastCheck, now))
	fmt.Fprintf(&sb, "%s %d\n", labelStyle.Render("Error streak:"), st.ConsecutiveErrors)
	if st.LastError != "" {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Last error:  "), errorStyle.Render(st.LastError))
	}
	fmt.Fprintf(&sb, "%s %s", labelStyle.Render("Capabilities:"), strings.Join(r.Capabilities, ", "))

	return boxStyle.Render(sb.String())
}

func lastCheck(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s ago", now.Sub(t).Round(time.Second))
}
