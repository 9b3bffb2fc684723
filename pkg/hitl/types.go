package hitl

import (
	"time"

	"github.com/entrhq/waypoint/pkg/browser"
)

// SessionStatus is the lifecycle state of a checkpointed session. The
// transition is monotonic: pending -> resolved, never back.
type SessionStatus string

const (
	StatusPending  SessionStatus = "pending"
	StatusResolved SessionStatus = "resolved"
)

// SessionRecord is the durable checkpoint of a suspended automation run. It
// captures everything a later invocation needs to resume: where the browser
// was, its cookie jar, and the actions that never ran. Resolution fields are
// populated only on the merged record written at resolve time.
type SessionRecord struct {
	SessionID        string           `json:"session_id"`
	Reason           string           `json:"reason"`
	CurrentURL       string           `json:"current_url"`
	Cookies          []browser.Cookie `json:"cookies"`
	Screenshot       string           `json:"screenshot_b64,omitempty"`
	Excerpt          string           `json:"page_excerpt,omitempty"`
	ActionsRemaining []browser.Action `json:"actions_remaining"`
	MatchedSignal    string           `json:"matched_selector"`
	CreatedAt        time.Time        `json:"created_at"`
	Status           SessionStatus    `json:"status"`

	// Resolution fields, present on the merged record only.
	CaptchaToken string         `json:"captcha_token,omitempty"`
	ManualData   map[string]any `json:"manual_data,omitempty"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
}

// SessionData is the state captured at suspend time, supplied to Create.
type SessionData struct {
	CurrentURL       string
	Cookies          []browser.Cookie
	Screenshot       string
	Excerpt          string
	ActionsRemaining []browser.Action
	MatchedSignal    string
}

// Resolution is the human-supplied input that unblocks a session. At least
// one field must be set; callers validate before submitting.
type Resolution struct {
	// CaptchaToken is a solved CAPTCHA response token.
	CaptchaToken string `json:"captcha_token,omitempty"`

	// Cookies replace the checkpointed cookie jar when non-empty.
	Cookies []browser.Cookie `json:"cookies,omitempty"`

	// ManualData carries any free-form operator input.
	ManualData map[string]any `json:"manual_data,omitempty"`
}

// Empty reports whether the resolution carries no input at all.
func (r Resolution) Empty() bool {
	return r.CaptchaToken == "" && len(r.Cookies) == 0 && len(r.ManualData) == 0
}

// StatusReport is the read-only view returned by Status.
type StatusReport struct {
	// Found reports whether the pending record still exists.
	Found bool `json:"found"`

	// Session is the pending record, when found.
	Session *SessionRecord `json:"session,omitempty"`

	// Resolution is the merged record, attached when one exists.
	Resolution *SessionRecord `json:"resolution,omitempty"`

	// AgeSeconds is the time since the session was created.
	AgeSeconds int64 `json:"age_seconds"`
}

// SessionSummary is one entry in the pending-session listing.
type SessionSummary struct {
	SessionID     string        `json:"session_id"`
	Reason        string        `json:"reason"`
	CurrentURL    string        `json:"current_url"`
	MatchedSignal string        `json:"matched_selector"`
	CreatedAt     time.Time     `json:"created_at"`
	AgeSeconds    int64         `json:"age_seconds"`
	TTLSeconds    int64         `json:"ttl_seconds"`
	Status        SessionStatus `json:"status"`
	HasScreenshot bool          `json:"has_screenshot"`
	Screenshot    string        `json:"screenshot_b64,omitempty"`
}
