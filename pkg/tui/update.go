package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/waypoint/pkg/hitl"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 8
		}
		return m, nil

	case sessionsMsg:
		m.loading = false
		m.sessions = msg
		if m.cursor >= len(m.sessions) {
			m.cursor = len(m.sessions) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case detailMsg:
		report := hitl.StatusReport(msg)
		m.detail = &report
		m.detailBody = highlightJSON(report)
		m.viewport.SetContent(m.detailBody)
		m.viewport.GotoTop()
		m.view = viewDetail
		return m, nil

	case resolvedMsg:
		m.status = "session " + string(msg) + " resolved"
		m.statusIsErr = false
		m.view = viewList
		m.tokenInput.Reset()
		return m, m.loadSessions()

	case cancelledMsg:
		if msg.removed {
			m.status = "session " + msg.sessionID + " cancelled"
			m.statusIsErr = false
		} else {
			m.status = "session " + msg.sessionID + " was already gone"
			m.statusIsErr = true
		}
		m.view = viewList
		return m, m.loadSessions()

	case statusNoteMsg:
		m.status = msg.text
		m.statusIsErr = msg.isErr
		if m.view == viewResolve || m.view == viewConfirmCancel {
			m.view = viewList
		}
		return m, m.loadSessions()

	case refreshTickMsg:
		// Background refresh only disturbs the list view.
		if m.view == viewList {
			return m, tea.Batch(m.loadSessions(), scheduleRefresh())
		}
		return m, scheduleRefresh()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case viewList:
		return m.handleListKey(msg)
	case viewDetail:
		return m.handleDetailKey(msg)
	case viewResolve:
		return m.handleResolveKey(msg)
	case viewConfirmCancel:
		return m.handleConfirmKey(msg)
	}
	return m, nil
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case "r":
		m.loading = true
		return m, m.loadSessions()
	case "enter":
		if s := m.selected(); s != nil {
			return m, m.loadDetail(s.SessionID)
		}
	case "c":
		if s := m.selected(); s != nil {
			return m, copySessionID(s.SessionID)
		}
	case "s":
		if s := m.selected(); s != nil {
			m.targetID = s.SessionID
			m.view = viewResolve
			m.tokenInput.Focus()
			return m, nil
		}
	case "x":
		if s := m.selected(); s != nil {
			m.targetID = s.SessionID
			m.view = viewConfirmCancel
		}
	}
	return m, nil
}

func (m model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = viewList
		return m, m.loadSessions()
	case "c":
		if m.detail != nil && m.detail.Session != nil {
			return m, copySessionID(m.detail.Session.SessionID)
		}
	case "s":
		if m.detail != nil && m.detail.Session != nil {
			m.targetID = m.detail.Session.SessionID
			m.view = viewResolve
			m.tokenInput.Focus()
		}
		return m, nil
	case "x":
		if m.detail != nil && m.detail.Session != nil {
			m.targetID = m.detail.Session.SessionID
			m.view = viewConfirmCancel
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleResolveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = viewList
		m.tokenInput.Reset()
		return m, nil
	case "enter":
		token := m.tokenInput.Value()
		if token == "" {
			m.status = "a resolution needs at least a token"
			m.statusIsErr = true
			return m, nil
		}
		if m.targetID != "" {
			m.tokenInput.Blur()
			return m, m.resolveSession(m.targetID, token)
		}
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if m.targetID != "" {
			return m, m.cancelSession(m.targetID)
		}
		m.view = viewList
		return m, nil
	case "n", "N", "esc":
		m.view = viewList
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func copySessionID(sessionID string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(sessionID); err != nil {
			return statusNoteMsg{text: "clipboard copy failed: " + err.Error(), isErr: true}
		}
		return statusNoteMsg{text: "copied " + sessionID}
	}
}
