package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/waypoint/pkg/hitl"
)

type fakeCoordinator struct {
	summaries   []hitl.SessionSummary
	report      hitl.StatusReport
	resumedID   string
	resumedWith hitl.Resolution
	cancelled   []string
	cancelOK    bool
}

func (f *fakeCoordinator) List(ctx context.Context) []hitl.SessionSummary { return f.summaries }

func (f *fakeCoordinator) Status(ctx context.Context, sessionID string) (hitl.StatusReport, error) {
	return f.report, nil
}

func (f *fakeCoordinator) Resume(ctx context.Context, sessionID string, resolution hitl.Resolution) (*hitl.SessionRecord, error) {
	f.resumedID = sessionID
	f.resumedWith = resolution
	return &hitl.SessionRecord{SessionID: sessionID, Status: hitl.StatusResolved}, nil
}

func (f *fakeCoordinator) Cancel(ctx context.Context, sessionID string) bool {
	f.cancelled = append(f.cancelled, sessionID)
	return f.cancelOK
}

func testSummaries() []hitl.SessionSummary {
	return []hitl.SessionSummary{
		{SessionID: "aaa-111", Reason: "captcha", CreatedAt: time.Now()},
		{SessionID: "bbb-222", Reason: "login wall", CreatedAt: time.Now().Add(-time.Minute)},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedModel(f *fakeCoordinator) model {
	m := newModel(f)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(model)
	updated, _ = m.Update(sessionsMsg(f.summaries))
	return updated.(model)
}

func TestModelListNavigation(t *testing.T) {
	f := &fakeCoordinator{summaries: testSummaries()}
	m := loadedModel(f)

	assert.Equal(t, 0, m.cursor)

	updated, _ := m.Update(key("j"))
	m = updated.(model)
	assert.Equal(t, 1, m.cursor)

	// Cursor clamps at the end of the list.
	updated, _ = m.Update(key("j"))
	m = updated.(model)
	assert.Equal(t, 1, m.cursor)

	updated, _ = m.Update(key("k"))
	m = updated.(model)
	assert.Equal(t, 0, m.cursor)
}

func TestModelCursorClampsAfterRefresh(t *testing.T) {
	f := &fakeCoordinator{summaries: testSummaries()}
	m := loadedModel(f)

	updated, _ := m.Update(key("j"))
	m = updated.(model)
	require.Equal(t, 1, m.cursor)

	// The second session resolved elsewhere; the refresh shrinks the list.
	updated, _ = m.Update(sessionsMsg(testSummaries()[:1]))
	m = updated.(model)
	assert.Equal(t, 0, m.cursor)
}

func TestModelResolveFlow(t *testing.T) {
	f := &fakeCoordinator{summaries: testSummaries()}
	m := loadedModel(f)

	updated, _ := m.Update(key("s"))
	m = updated.(model)
	require.Equal(t, viewResolve, m.view)
	assert.Equal(t, "aaa-111", m.targetID)

	// An empty token is rejected before it reaches the coordinator.
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	assert.Nil(t, cmd)
	assert.True(t, m.statusIsErr)

	for _, r := range "tok-42" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(model)
	}
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	require.NotNil(t, cmd)

	msg := cmd()
	resolved, ok := msg.(resolvedMsg)
	require.True(t, ok, "expected resolvedMsg, got %T", msg)
	assert.Equal(t, "aaa-111", string(resolved))
	assert.Equal(t, "aaa-111", f.resumedID)
	assert.Equal(t, "tok-42", f.resumedWith.CaptchaToken)

	updated, _ = m.Update(msg)
	m = updated.(model)
	assert.Equal(t, viewList, m.view)
	assert.False(t, m.statusIsErr)
}

func TestModelCancelFlow(t *testing.T) {
	f := &fakeCoordinator{summaries: testSummaries(), cancelOK: true}
	m := loadedModel(f)

	updated, _ := m.Update(key("j"))
	m = updated.(model)
	updated, _ = m.Update(key("x"))
	m = updated.(model)
	require.Equal(t, viewConfirmCancel, m.view)
	assert.Equal(t, "bbb-222", m.targetID)

	// Backing out cancels nothing.
	updated, _ = m.Update(key("n"))
	m = updated.(model)
	assert.Equal(t, viewList, m.view)
	assert.Empty(t, f.cancelled)

	updated, _ = m.Update(key("x"))
	m = updated.(model)
	updated, cmd := m.Update(key("y"))
	m = updated.(model)
	require.NotNil(t, cmd)

	msg := cmd()
	cancelled, ok := msg.(cancelledMsg)
	require.True(t, ok)
	assert.True(t, cancelled.removed)
	assert.Equal(t, []string{"bbb-222"}, f.cancelled)
}

func TestModelEmptyListIgnoresActions(t *testing.T) {
	f := &fakeCoordinator{}
	m := loadedModel(f)

	updated, _ := m.Update(key("s"))
	m = updated.(model)
	assert.Equal(t, viewList, m.view)

	updated, _ = m.Update(key("x"))
	m = updated.(model)
	assert.Equal(t, viewList, m.view)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "5f1c7a2e", shortID("5f1c7a2e-1111-2222-3333-444455556666"))
	assert.Equal(t, "plain", shortID("plain"))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "45s", formatAge(45))
	assert.Equal(t, "2m05s", formatAge(125))
	assert.Equal(t, "1h01m", formatAge(3665))
}
