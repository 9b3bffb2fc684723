package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	var body string
	switch m.view {
	case viewList:
		body = m.listView()
	case viewDetail:
		body = m.detailView()
	case viewResolve:
		body = m.resolveView()
	case viewConfirmCancel:
		body = m.confirmView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine())
}

func (m model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Waypoint · pending sessions"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + dimStyle.Render(" loading sessions..."))
		b.WriteString("\n")
	} else if len(m.sessions) == 0 {
		b.WriteString(dimStyle.Render("No sessions are waiting for a human. Nothing to do here."))
		b.WriteString("\n")
	}

	for i, s := range m.sessions {
		line := fmt.Sprintf("%s  %s  %s",
			shortID(s.SessionID),
			formatAge(s.AgeSeconds),
			s.Reason)
		if s.HasScreenshot {
			line += "  [screenshot]"
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
		if i == m.cursor {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    %s  ttl %s  signal %s",
				s.CurrentURL, formatAge(s.TTLSeconds), s.MatchedSignal)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter inspect · s resolve · x cancel · c copy id · r refresh · q quit"))
	return b.String()
}

func (m model) detailView() string {
	var b strings.Builder
	title := "Session"
	if m.detail != nil && m.detail.Session != nil {
		title = "Session " + m.detail.Session.SessionID
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Width(m.viewport.Width + 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll · s resolve · x cancel · c copy id · esc back · q quit"))
	return b.String()
}

func (m model) resolveView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Resolve session " + shortID(m.targetID)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Paste the solved CAPTCHA token. Cookie or form overrides go through the CLI."))
	b.WriteString("\n\n")
	b.WriteString(inputBoxStyle.Render(m.tokenInput.View()))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter submit · esc back"))
	return b.String()
}

func (m model) confirmView() string {
	var b strings.Builder
	b.WriteString(warnStyle.Render("Cancel session " + shortID(m.targetID) + "?"))
	b.WriteString("\n\n")
	b.WriteString(itemStyle.Render("The checkpoint and any resolution will be discarded. This cannot be undone."))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("y confirm · n back"))
	return b.String()
}

func (m model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return errorStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

// shortID trims a UUID down to its first block for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatAge(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
}
