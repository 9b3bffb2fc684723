// Package engine drives one automation run end to end: browser lifecycle,
// optional restore of a checkpointed session, action execution with
// detection, and suspension through the HITL coordinator. The engine is the
// error boundary of the system: Run always returns a structured Result and
// never propagates a failure to its caller.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/hitl"
)

// Coordinator is the slice of the HITL coordinator the engine consumes.
// Implemented by *hitl.Manager.
type Coordinator interface {
	Create(ctx context.Context, reason string, data hitl.SessionData) (string, error)
	Load(ctx context.Context, sessionID string) (*hitl.SessionRecord, error)
}

// Options configures engine behavior for all runs.
type Options struct {
	// Browser configures the isolated session launched per run.
	Browser browser.SessionOptions

	// Executor configures timeout policy and the navigation allowlist.
	Executor browser.ExecutorOptions

	// Signals overrides the detection signal list. Empty uses the defaults.
	Signals []string

	// NavigationTimeout bounds the initial page load, in milliseconds.
	NavigationTimeout float64

	// ExcerptLength bounds the page excerpt captured at suspend time.
	ExcerptLength int
}

// Request describes one automation run.
type Request struct {
	// URL is the starting page. Ignored when a restored session carries its
	// own current URL.
	URL string

	// Actions is the ordered script to execute.
	Actions []browser.Action

	// SessionID, when set, restores a checkpointed session and resumes it.
	SessionID string
}

// Result is the unified outcome of a run. Exactly one of the following
// shapes holds: Success, HITLNeeded with a fresh SessionID, or Error set.
type Result struct {
	Success    bool           `json:"success"`
	Data       map[string]any `json:"data"`
	HITLNeeded bool           `json:"hitl_needed"`
	Reason     string         `json:"reason,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Screenshot string         `json:"screenshot_b64,omitempty"`
	CurrentURL string         `json:"current_url,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Engine owns the browser driver and runs automation requests.
type Engine struct {
	driver      browser.Driver
	coordinator Coordinator
	executor    *browser.Executor
	opts        Options
	logger      *zap.Logger
}

// New creates an engine. The driver must already be initialized.
func New(driver browser.Driver, coordinator Coordinator, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "engine"))

	detector := browser.NewDetector(opts.Signals, logger)
	if opts.NavigationTimeout == 0 {
		opts.NavigationTimeout = browser.DefaultNavigationTimeout
	}
	if opts.ExcerptLength == 0 {
		opts.ExcerptLength = browser.DefaultExcerptLength
	}

	return &Engine{
		driver:      driver,
		coordinator: coordinator,
		executor:    browser.NewExecutor(detector, opts.Executor, logger),
		opts:        opts,
		logger:      logger,
	}
}

// Run executes a request. Suspension is a designed outcome, not an error:
// when an intervention signal fires, the run is checkpointed and the result
// carries the new session ID. Every internal failure is converted into a
// populated Error field.
func (e *Engine) Run(ctx context.Context, req Request) (result *Result) {
	result = &Result{Data: make(map[string]any)}

	// The boundary contract: nothing escapes as an unhandled fault.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("automation run panicked", zap.Any("panic", r))
			result.Error = fmt.Sprintf("internal failure: %v", r)
			result.Success = false
		}
	}()

	url, actions, restored := e.restore(ctx, req)

	if e.opts.Executor.Allowlist != nil && !e.opts.Executor.Allowlist.Allowed(url) {
		result.Error = fmt.Sprintf("start URL %q blocked by allowlist", url)
		return result
	}

	session, err := e.driver.NewSession(e.opts.Browser)
	if err != nil {
		result.Error = fmt.Sprintf("failed to launch browser: %v", err)
		return result
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			e.logger.Warn("session teardown failed", zap.Error(closeErr))
		}
	}()

	if restored != nil && len(restored.Cookies) > 0 {
		if err := session.AddCookies(restored.Cookies); err != nil {
			result.Error = fmt.Sprintf("failed to restore cookies: %v", err)
			return result
		}
	}

	page := session.Page()
	if err := page.Goto(url, e.opts.NavigationTimeout); err != nil {
		result.CurrentURL = page.URL()
		result.Screenshot = browser.CaptureScreenshot(page, e.logger)
		result.Error = fmt.Sprintf("navigation to %q failed: %v", url, err)
		return result
	}
	result.CurrentURL = page.URL()

	outcome, err := e.executor.Run(page, actions)
	for k, v := range outcome.Data {
		result.Data[k] = v
	}
	result.CurrentURL = outcome.CurrentURL
	if outcome.Screenshot != "" {
		result.Screenshot = outcome.Screenshot
	}
	if err != nil {
		result.Screenshot = browser.CaptureScreenshot(page, e.logger)
		result.Error = fmt.Sprintf("action execution failed: %v", err)
		return result
	}

	if outcome.Detected {
		return e.suspend(ctx, session, page, outcome, result)
	}

	result.Success = true
	return result
}

// restore loads a checkpointed session when the request carries an
// identifier. An unknown or expired identifier is not fatal: the run
// proceeds fresh from the originally supplied URL.
func (e *Engine) restore(ctx context.Context, req Request) (string, []browser.Action, *hitl.SessionRecord) {
	if req.SessionID == "" {
		return req.URL, req.Actions, nil
	}

	record, err := e.coordinator.Load(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, hitl.ErrSessionNotFound) {
			e.logger.Warn("session not found, starting fresh",
				zap.String("session_id", req.SessionID))
		} else {
			e.logger.Warn("failed to load session, starting fresh",
				zap.String("session_id", req.SessionID), zap.Error(err))
		}
		return req.URL, req.Actions, nil
	}

	url := req.URL
	if record.CurrentURL != "" {
		url = record.CurrentURL
	}
	e.logger.Info("restored hitl session",
		zap.String("session_id", req.SessionID),
		zap.String("url", url),
		zap.Int("actions_remaining", len(record.ActionsRemaining)))
	return url, record.ActionsRemaining, record
}

// suspend checkpoints the interrupted run and shapes the HITL result.
func (e *Engine) suspend(ctx context.Context, session browser.Session, page browser.Page, outcome *browser.Outcome, result *Result) *Result {
	screenshot := browser.CaptureScreenshot(page, e.logger)

	cookies, err := session.Cookies()
	if err != nil {
		result.Error = fmt.Sprintf("failed to capture cookies for checkpoint: %v", err)
		return result
	}

	sessionID, err := e.coordinator.Create(ctx,
		fmt.Sprintf("Intervention required: %s", outcome.MatchedSignal),
		hitl.SessionData{
			CurrentURL:       page.URL(),
			Cookies:          cookies,
			Screenshot:       screenshot,
			Excerpt:          e.captureExcerpt(page),
			ActionsRemaining: outcome.Remaining,
			MatchedSignal:    outcome.MatchedSignal,
		})
	if err != nil {
		// Suspension must be durable; an unrecorded checkpoint is a failure.
		result.Error = fmt.Sprintf("failed to checkpoint session: %v", err)
		return result
	}

	result.HITLNeeded = true
	result.Reason = fmt.Sprintf("CAPTCHA or login wall detected (%s)", outcome.MatchedSignal)
	result.SessionID = sessionID
	result.Screenshot = screenshot
	result.CurrentURL = page.URL()
	return result
}

func (e *Engine) captureExcerpt(page browser.Page) string {
	content, err := page.Content()
	if err != nil {
		e.logger.Warn("failed to capture page content for excerpt", zap.Error(err))
		return ""
	}
	excerpt := browser.ExtractExcerpt(content, e.opts.ExcerptLength)
	if excerpt.Title == "" {
		return excerpt.Text
	}
	return excerpt.Title + "\n" + excerpt.Text
}
