// Package tui implements the interactive review console for pending
// human-in-the-loop sessions: browse checkpoints, inspect what the browser
// saw, submit a CAPTCHA token, or cancel a session outright.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/waypoint/pkg/hitl"
)

// refreshInterval is how often the pending list reloads on its own.
const refreshInterval = 10 * time.Second

// Coordinator is the slice of the HITL coordinator the console consumes.
// Implemented by *hitl.Manager.
type Coordinator interface {
	List(ctx context.Context) []hitl.SessionSummary
	Status(ctx context.Context, sessionID string) (hitl.StatusReport, error)
	Resume(ctx context.Context, sessionID string, resolution hitl.Resolution) (*hitl.SessionRecord, error)
	Cancel(ctx context.Context, sessionID string) bool
}

type viewState int

const (
	viewList viewState = iota
	viewDetail
	viewResolve
	viewConfirmCancel
)

// Messages produced by coordinator commands.
type (
	sessionsMsg  []hitl.SessionSummary
	detailMsg    hitl.StatusReport
	resolvedMsg  string
	cancelledMsg struct {
		sessionID string
		removed   bool
	}
	statusNoteMsg struct {
		text  string
		isErr bool
	}
	refreshTickMsg time.Time
)

type model struct {
	coordinator Coordinator

	view     viewState
	sessions []hitl.SessionSummary
	cursor   int

	detail     *hitl.StatusReport
	detailBody string
	targetID   string

	viewport   viewport.Model
	tokenInput textinput.Model
	spinner    spinner.Model

	loading     bool
	status      string
	statusIsErr bool

	width  int
	height int
	ready  bool
}

func newModel(coordinator Coordinator) model {
	ti := textinput.New()
	ti.Placeholder = "solved CAPTCHA token"
	ti.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		coordinator: coordinator,
		view:        viewList,
		tokenInput:  ti,
		spinner:     sp,
		loading:     true,
	}
}

// Run starts the review console and blocks until the operator quits.
func Run(coordinator Coordinator) error {
	program := tea.NewProgram(newModel(coordinator), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadSessions(), m.spinner.Tick, scheduleRefresh())
}

// selected returns the summary under the cursor, or nil when the list is
// empty.
func (m model) selected() *hitl.SessionSummary {
	if len(m.sessions) == 0 || m.cursor < 0 || m.cursor >= len(m.sessions) {
		return nil
	}
	return &m.sessions[m.cursor]
}

func (m model) loadSessions() tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		return sessionsMsg(coordinator.List(context.Background()))
	}
}

func (m model) loadDetail(sessionID string) tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		report, err := coordinator.Status(context.Background(), sessionID)
		if err != nil {
			return statusNoteMsg{text: "status failed: " + err.Error(), isErr: true}
		}
		if !report.Found {
			return statusNoteMsg{text: "session " + sessionID + " is gone (expired or cancelled)", isErr: true}
		}
		return detailMsg(report)
	}
}

func (m model) resolveSession(sessionID, token string) tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		if _, err := coordinator.Resume(context.Background(), sessionID, hitl.Resolution{CaptchaToken: token}); err != nil {
			return statusNoteMsg{text: "resolve failed: " + err.Error(), isErr: true}
		}
		return resolvedMsg(sessionID)
	}
}

func (m model) cancelSession(sessionID string) tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		return cancelledMsg{sessionID: sessionID, removed: coordinator.Cancel(context.Background(), sessionID)}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}
