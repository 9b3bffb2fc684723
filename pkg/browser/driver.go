package browser

import "errors"

// ErrTimeout is returned by Page operations when a bounded wait expires.
// The executor treats it as recoverable; callers can test with errors.Is.
var ErrTimeout = errors.New("browser: operation timed out")

// Driver launches isolated browser sessions. The production implementation
// drives Playwright; tests substitute fakes.
type Driver interface {
	// NewSession launches a fresh browser, context and page. Sessions are
	// never shared or reused across runs.
	NewSession(opts SessionOptions) (Session, error)

	// Close releases the underlying browser runtime.
	Close() error
}

// Session owns the browser resources for exactly one automation run.
type Session interface {
	// Page returns the session's single page handle.
	Page() Page

	// Cookies captures the full cookie jar of the browsing context.
	Cookies() ([]Cookie, error)

	// AddCookies injects cookies into the browsing context. Used to restore
	// a checkpointed session before the first navigation.
	AddCookies(cookies []Cookie) error

	// Close tears down the page, context and browser.
	Close() error
}

// Page is the narrow page surface the executor and detector operate on.
// All timeouts are in milliseconds; zero means the operation default.
type Page interface {
	// Goto navigates and waits for the initial document parse.
	Goto(url string, timeout float64) error

	// URL reports the current page URL.
	URL() string

	// Fill waits for the selector and sets the input value.
	Fill(selector, value string, timeout float64) error

	// Click waits for the selector and clicks it.
	Click(selector string, timeout float64) error

	// WaitForSelector blocks until the selector is present.
	WaitForSelector(selector string, timeout float64) error

	// WaitForLoad waits for any in-flight navigation to reach document parse.
	WaitForLoad(timeout float64) error

	// Query returns the first match for the selector, or nil if none.
	Query(selector string) (Element, error)

	// QueryAll returns every match for the selector.
	QueryAll(selector string) ([]Element, error)

	// Screenshot captures the current rendered view as PNG bytes.
	Screenshot() ([]byte, error)

	// Content returns the full HTML of the current page.
	Content() (string, error)
}

// Element is a handle to a single DOM element.
type Element interface {
	// Visible reports whether the element is rendered and visible.
	Visible() (bool, error)

	// Text returns the element's visible inner text.
	Text() (string, error)

	// Attribute returns the named attribute value, or "" if absent.
	Attribute(name string) (string, error)
}
