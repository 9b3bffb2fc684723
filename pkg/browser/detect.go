package browser

import "go.uber.org/zap"

// DefaultSignals is the ordered list of selectors that indicate a page is
// waiting on a human: CAPTCHA widgets, login forms, and empty credential
// inputs. Order encodes priority; the first visible match wins.
var DefaultSignals = []string{
	"#captcha",
	".g-recaptcha",
	".h-captcha",
	"#loginForm",
	"#login-form",
	`[name="captcha"]`,
	".captcha-container",
	`input[name="username"]:not([value])`,
}

// Detector decides whether the current page needs human intervention.
// It is stateless; one instance can serve concurrent runs.
type Detector struct {
	signals []string
	logger  *zap.Logger
}

// NewDetector creates a detector for the given signal selectors. An empty
// list falls back to DefaultSignals.
func NewDetector(signals []string, logger *zap.Logger) *Detector {
	if len(signals) == 0 {
		signals = DefaultSignals
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		signals: signals,
		logger:  logger.With(zap.String("component", "detector")),
	}
}

// Signals returns the configured signal selectors in priority order.
func (d *Detector) Signals() []string {
	out := make([]string, len(d.signals))
	copy(out, d.signals)
	return out
}

// Check probes the page for each signal in order and returns the first one
// that is present and visible. A hidden match does not trigger. Probe errors
// on individual signals (stale element, navigation mid-check) count as no
// match for that signal; detection never aborts a run.
func (d *Detector) Check(page Page) (bool, string) {
	for _, selector := range d.signals {
		el, err := page.Query(selector)
		if err != nil || el == nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil {
			continue
		}
		if visible {
			d.logger.Info("intervention signal detected", zap.String("selector", selector))
			return true, selector
		}
	}
	return false, ""
}
