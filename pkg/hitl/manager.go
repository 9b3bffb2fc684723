// Package hitl coordinates human-in-the-loop sessions: durable checkpoints
// for suspended automation runs and the resolution protocol that unblocks
// them. The manager is the only component that touches the checkpoint store.
package hitl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/store"
)

// ErrSessionNotFound is returned when a session identifier maps to no live
// record: never created, expired, or cancelled.
var ErrSessionNotFound = errors.New("hitl: session not found or expired")

// Record lifetimes. Pending checkpoints wait up to 30 minutes for a human;
// resolved records live an hour so the resuming run has time to poll and act;
// a resolved session's pending record is kept briefly for audit visibility.
const (
	PendingTTL  = 30 * time.Minute
	ResolvedTTL = 60 * time.Minute
	AuditTTL    = 5 * time.Minute
)

const (
	pendingPrefix  = "hitl:"
	resolvedPrefix = "hitl_resolved:"
)

// Manager implements the HITL coordinator over a checkpoint store.
type Manager struct {
	store  store.Store
	logger *zap.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewManager creates a coordinator over the given store.
func NewManager(st store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  st,
		logger: logger.With(zap.String("component", "hitl")),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

func pendingKey(sessionID string) string  { return pendingPrefix + sessionID }
func resolvedKey(sessionID string) string { return resolvedPrefix + sessionID }

// Create checkpoints a suspended run and returns its fresh session ID. A
// store failure propagates: if the checkpoint cannot be durably recorded the
// engine must not claim the suspension succeeded.
func (m *Manager) Create(ctx context.Context, reason string, data SessionData) (string, error) {
	sessionID := m.newID()

	record := SessionRecord{
		SessionID:        sessionID,
		Reason:           reason,
		CurrentURL:       data.CurrentURL,
		Cookies:          data.Cookies,
		Screenshot:       data.Screenshot,
		Excerpt:          data.Excerpt,
		ActionsRemaining: data.ActionsRemaining,
		MatchedSignal:    data.MatchedSignal,
		CreatedAt:        m.now(),
		Status:           StatusPending,
	}
	if record.ActionsRemaining == nil {
		record.ActionsRemaining = []browser.Action{}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := m.store.Set(ctx, pendingKey(sessionID), string(payload), PendingTTL); err != nil {
		return "", fmt.Errorf("failed to persist session %s: %w", sessionID, err)
	}

	m.logger.Info("hitl session created",
		zap.String("session_id", sessionID),
		zap.String("reason", reason))
	return sessionID, nil
}

// Resume merges a resolution into the pending record, writes the merged
// record under its own key, and shortens the pending record's remaining
// lifetime to the audit window. Returns the merged record.
//
// Resolution emptiness is enforced by callers, not here. Concurrent Resume
// calls for one session are last-writer-wins.
func (m *Manager) Resume(ctx context.Context, sessionID string, resolution Resolution) (*SessionRecord, error) {
	record, err := m.getRecord(ctx, pendingKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}

	now := m.now()
	merged := *record
	merged.Status = StatusResolved
	merged.ResolvedAt = &now
	if resolution.CaptchaToken != "" {
		merged.CaptchaToken = resolution.CaptchaToken
	}
	if len(resolution.Cookies) > 0 {
		merged.Cookies = resolution.Cookies
	}
	if len(resolution.ManualData) > 0 {
		merged.ManualData = resolution.ManualData
	}

	if err := m.putRecord(ctx, resolvedKey(sessionID), &merged, ResolvedTTL); err != nil {
		return nil, fmt.Errorf("failed to persist resolution for %s: %w", sessionID, err)
	}

	// Mark the original pending record resolved and keep it briefly for audit.
	record.Status = StatusResolved
	if err := m.putRecord(ctx, pendingKey(sessionID), record, AuditTTL); err != nil {
		return nil, fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}

	m.logger.Info("hitl session resolved", zap.String("session_id", sessionID))
	return &merged, nil
}

// Status reports the current state of a session without mutating anything.
// A missing or expired pending record yields Found=false, not an error.
func (m *Manager) Status(ctx context.Context, sessionID string) (StatusReport, error) {
	record, err := m.getRecord(ctx, pendingKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusReport{Found: false}, nil
		}
		return StatusReport{}, err
	}

	report := StatusReport{
		Found:      true,
		Session:    record,
		AgeSeconds: int64(m.now().Sub(record.CreatedAt).Seconds()),
	}

	// Attach the merged record if a resolution exists; its absence is normal.
	resolved, err := m.getRecord(ctx, resolvedKey(sessionID))
	if err == nil {
		report.Resolution = resolved
	} else if !errors.Is(err, store.ErrNotFound) {
		m.logger.Warn("failed to read resolution record",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	return report, nil
}

// Load returns the record a resuming run should restore from: the merged
// resolution record when one exists (it carries any cookie override), else
// the pending record, else ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, sessionID string) (*SessionRecord, error) {
	record, err := m.getRecord(ctx, resolvedKey(sessionID))
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	record, err = m.getRecord(ctx, pendingKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return record, nil
}

// List enumerates pending (unresolved) sessions, newest first, each annotated
// with its remaining TTL. Listing is best-effort: store failures degrade to
// an empty list.
func (m *Manager) List(ctx context.Context) []SessionSummary {
	keys, err := m.store.ScanPrefix(ctx, pendingPrefix)
	if err != nil {
		m.logger.Error("failed to scan pending sessions", zap.Error(err))
		return []SessionSummary{}
	}

	summaries := make([]SessionSummary, 0, len(keys))
	for _, key := range keys {
		record, err := m.getRecord(ctx, key)
		if err != nil {
			continue // expired between scan and read, or unreadable
		}
		if record.Status == StatusResolved {
			continue
		}

		ttl, err := m.store.TTL(ctx, key)
		if err != nil {
			ttl = 0
		}

		sessionID := record.SessionID
		if sessionID == "" {
			sessionID = strings.TrimPrefix(key, pendingPrefix)
		}
		summaries = append(summaries, SessionSummary{
			SessionID:     sessionID,
			Reason:        record.Reason,
			CurrentURL:    record.CurrentURL,
			MatchedSignal: record.MatchedSignal,
			CreatedAt:     record.CreatedAt,
			AgeSeconds:    int64(m.now().Sub(record.CreatedAt).Seconds()),
			TTLSeconds:    int64(ttl.Seconds()),
			Status:        record.Status,
			HasScreenshot: record.Screenshot != "",
			Screenshot:    record.Screenshot,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// Cancel discards a session: both the pending and resolution records are
// deleted. Reports whether anything was actually removed.
func (m *Manager) Cancel(ctx context.Context, sessionID string) bool {
	deleted, err := m.store.Delete(ctx, pendingKey(sessionID), resolvedKey(sessionID))
	if err != nil {
		m.logger.Error("failed to cancel session",
			zap.String("session_id", sessionID), zap.Error(err))
		return false
	}
	m.logger.Info("hitl session cancelled",
		zap.String("session_id", sessionID),
		zap.Int64("deleted", deleted))
	return deleted > 0
}

func (m *Manager) getRecord(ctx context.Context, key string) (*SessionRecord, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("corrupt session record at %s: %w", key, err)
	}
	return &record, nil
}

func (m *Manager) putRecord(ctx context.Context, key string, record *SessionRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}
	return m.store.Set(ctx, key, string(payload), ttl)
}
