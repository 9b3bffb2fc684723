package browser

import (
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TimeoutPolicy controls how the executor reacts when a bounded wait expires
// on fill, click or wait_for_selector.
type TimeoutPolicy string

const (
	// TimeoutSkip logs the expiry and moves on to the next action.
	TimeoutSkip TimeoutPolicy = "skip"

	// TimeoutRetry retries the action once, then skips.
	TimeoutRetry TimeoutPolicy = "retry"
)

// ExecutorOptions configures action execution behavior.
type ExecutorOptions struct {
	// OnTimeout selects the bounded-wait expiry policy. Default: TimeoutSkip.
	OnTimeout TimeoutPolicy

	// Allowlist restricts navigate targets. Nil allows everything.
	Allowlist *Allowlist
}

// Outcome is the structured result of executing an action sequence.
type Outcome struct {
	// Data holds values collected by get_text, get_attribute and get_all_text,
	// keyed by selector (get_attribute uses "selector.attribute").
	Data map[string]any

	// Screenshot is the base64-encoded PNG from the last screenshot action.
	Screenshot string

	// CurrentURL is the page URL after the last executed action.
	CurrentURL string

	// Detected reports whether an intervention signal interrupted execution.
	Detected bool

	// MatchedSignal is the selector that triggered detection.
	MatchedSignal string

	// Remaining holds the actions that were not executed because detection
	// interrupted the sequence. Empty when the sequence ran to completion.
	Remaining []Action
}

// Executor runs declarative actions against a live page, strictly in order,
// invoking the detector after every action.
type Executor struct {
	detector *Detector
	opts     ExecutorOptions
	logger   *zap.Logger
}

// NewExecutor creates an executor bound to a detection policy.
func NewExecutor(detector *Detector, opts ExecutorOptions, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OnTimeout == "" {
		opts.OnTimeout = TimeoutSkip
	}
	return &Executor{
		detector: detector,
		opts:     opts,
		logger:   logger.With(zap.String("component", "executor")),
	}
}

// Run executes the actions one at a time. Bounded-wait expiries are absorbed
// per the timeout policy; any other action failure aborts the run and is
// returned for the engine boundary to convert. A positive detection after any
// action halts the sequence immediately with the unexecuted remainder
// recorded; a final detection check runs after the last action.
func (e *Executor) Run(page Page, actions []Action) (*Outcome, error) {
	outcome := &Outcome{
		Data:       make(map[string]any),
		CurrentURL: page.URL(),
		Remaining:  []Action{},
	}

	for i, action := range actions {
		e.logger.Debug("executing action",
			zap.Int("index", i),
			zap.String("type", string(action.Kind)),
			zap.String("selector", action.Selector))

		if err := e.applyWithPolicy(page, action, outcome); err != nil {
			return outcome, err
		}

		if hit, signal := e.detector.Check(page); hit {
			outcome.Detected = true
			outcome.MatchedSignal = signal
			outcome.CurrentURL = page.URL()
			outcome.Remaining = append([]Action{}, actions[i+1:]...)
			return outcome, nil
		}
	}

	// The triggering condition may appear only after the last step.
	if hit, signal := e.detector.Check(page); hit {
		outcome.Detected = true
		outcome.MatchedSignal = signal
	}
	outcome.CurrentURL = page.URL()
	return outcome, nil
}

// applyWithPolicy runs one action, absorbing bounded-wait expiries according
// to the configured timeout policy.
func (e *Executor) applyWithPolicy(page Page, action Action, outcome *Outcome) error {
	err := e.apply(page, action, outcome)
	if err == nil || !errors.Is(err, ErrTimeout) {
		return err
	}

	if e.opts.OnTimeout == TimeoutRetry {
		e.logger.Warn("action timed out, retrying once",
			zap.String("type", string(action.Kind)),
			zap.String("selector", action.Selector))
		err = e.apply(page, action, outcome)
		if err == nil || !errors.Is(err, ErrTimeout) {
			return err
		}
	}

	e.logger.Warn("action timed out, skipping",
		zap.String("type", string(action.Kind)),
		zap.String("selector", action.Selector),
		zap.Error(err))
	return nil
}

func (e *Executor) apply(page Page, action Action, outcome *Outcome) error {
	switch action.Kind {
	case ActionNavigate:
		if e.opts.Allowlist != nil && !e.opts.Allowlist.Allowed(action.URL) {
			return fmt.Errorf("navigation to %q blocked by allowlist", action.URL)
		}
		if err := page.Goto(action.URL, timeoutOr(action.Timeout, DefaultNavigationTimeout)); err != nil {
			return err
		}
		outcome.CurrentURL = page.URL()

	case ActionFill:
		return page.Fill(action.Selector, action.Value, timeoutOr(action.Timeout, DefaultActionTimeout))

	case ActionClick:
		if err := page.Click(action.Selector, timeoutOr(action.Timeout, DefaultActionTimeout)); err != nil {
			return err
		}
		// Brief wait for any navigation or async update the click triggered.
		if err := page.WaitForLoad(DefaultSettleTimeout); err != nil {
			return err
		}
		outcome.CurrentURL = page.URL()

	case ActionWaitForSelector:
		return page.WaitForSelector(action.Selector, timeoutOr(action.Timeout, DefaultActionTimeout))

	case ActionGetText:
		el, err := page.Query(action.Selector)
		if err != nil {
			return err
		}
		text := ""
		if el != nil {
			if text, err = el.Text(); err != nil {
				return err
			}
		}
		outcome.Data[action.Selector] = text

	case ActionGetAttribute:
		el, err := page.Query(action.Selector)
		if err != nil {
			return err
		}
		value := ""
		if el != nil {
			if value, err = el.Attribute(action.Attribute); err != nil {
				return err
			}
		}
		outcome.Data[action.Selector+"."+action.Attribute] = value

	case ActionGetAllText:
		elements, err := page.QueryAll(action.Selector)
		if err != nil {
			return err
		}
		texts := make([]string, 0, len(elements))
		for _, el := range elements {
			text, textErr := el.Text()
			if textErr != nil {
				continue
			}
			texts = append(texts, text)
		}
		outcome.Data[action.Selector] = texts

	case ActionScreenshot:
		outcome.Screenshot = CaptureScreenshot(page, e.logger)

	default:
		e.logger.Warn("unknown action type, skipping", zap.String("type", string(action.Kind)))
	}
	return nil
}

// CaptureScreenshot captures the current view as base64 PNG. Failures are
// logged and yield an empty string; a missing screenshot never aborts a run.
func CaptureScreenshot(page Page, logger *zap.Logger) string {
	raw, err := page.Screenshot()
	if err != nil {
		if logger != nil {
			logger.Warn("screenshot failed", zap.Error(err))
		}
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func timeoutOr(timeout, fallback float64) float64 {
	if timeout > 0 {
		return timeout
	}
	return fallback
}
