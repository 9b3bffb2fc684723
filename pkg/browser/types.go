package browser

// ActionKind identifies a supported browser action.
type ActionKind string

const (
	ActionNavigate        ActionKind = "navigate"
	ActionFill            ActionKind = "fill"
	ActionClick           ActionKind = "click"
	ActionWaitForSelector ActionKind = "wait_for_selector"
	ActionGetText         ActionKind = "get_text"
	ActionGetAttribute    ActionKind = "get_attribute"
	ActionGetAllText      ActionKind = "get_all_text"
	ActionScreenshot      ActionKind = "screenshot"
)

// Action is a single declarative step in an automation script. Scripts are
// authored in YAML and checkpointed as JSON, so both tag sets are carried.
type Action struct {
	// Kind selects the operation; unknown kinds are skipped, not fatal
	Kind ActionKind `json:"type" yaml:"type"`

	// Selector is a CSS selector (fill, click, wait_for_selector, get_*)
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`

	// Value is the input text for fill
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// URL is the target for navigate
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Attribute names the attribute to read for get_attribute
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`

	// Timeout overrides the default bounded wait, in milliseconds
	Timeout float64 `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Cookie is a browser cookie in a form that survives JSON checkpointing.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// SessionOptions configures a new isolated browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// UserAgent overrides the browser user agent string
	UserAgent string

	// Timeout sets the default timeout for page operations (in milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for browser operations.
const (
	// DefaultNavigationTimeout bounds page loads (milliseconds).
	DefaultNavigationTimeout = 30000.0

	// DefaultActionTimeout bounds element waits for fill/click/wait_for_selector.
	DefaultActionTimeout = 10000.0

	// DefaultSettleTimeout bounds the post-click wait for triggered navigation.
	DefaultSettleTimeout = 15000.0

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
)

// DefaultUserAgent is presented to target pages unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
