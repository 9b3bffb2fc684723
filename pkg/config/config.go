// Package config loads Waypoint's YAML configuration: checkpoint store
// connection, browser behavior, detection signals, and logging. Missing
// fields fall back to defaults so a minimal config file stays minimal.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/store"
)

// Config is the full process configuration.
type Config struct {
	Redis     store.RedisConfig `yaml:"redis"`
	Browser   BrowserConfig     `yaml:"browser"`
	Detection DetectionConfig   `yaml:"detection"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// BrowserConfig controls the per-run browser sessions.
type BrowserConfig struct {
	Headless          bool    `yaml:"headless"`
	ViewportWidth     int     `yaml:"viewport_width"`
	ViewportHeight    int     `yaml:"viewport_height"`
	UserAgent         string  `yaml:"user_agent"`
	NavigationTimeout float64 `yaml:"navigation_timeout_ms"`

	// OnTimeout selects what happens when a bounded element wait expires:
	// "skip" (default) or "retry" (retry once, then skip).
	OnTimeout string `yaml:"on_timeout"`

	// AllowedHosts restricts navigation to matching hostnames (glob
	// patterns, e.g. "*.gst.gov.in"). Empty allows every host.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// DetectionConfig overrides the intervention signal selectors.
type DetectionConfig struct {
	// Signals is an ordered, priority-first selector list. Empty uses the
	// built-in defaults.
	Signals []string `yaml:"signals"`
}

// LoggingConfig controls process logging.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Redis: store.DefaultRedisConfig(),
		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     browser.DefaultViewportWidth,
			ViewportHeight:    browser.DefaultViewportHeight,
			NavigationTimeout: browser.DefaultNavigationTimeout,
			OnTimeout:         string(browser.TimeoutSkip),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would fail mid-run.
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Browser.ViewportWidth < 100 || c.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("browser.viewport_width must be between 100 and 5000 pixels")
	}
	if c.Browser.ViewportHeight < 100 || c.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("browser.viewport_height must be between 100 and 5000 pixels")
	}
	switch browser.TimeoutPolicy(c.Browser.OnTimeout) {
	case browser.TimeoutSkip, browser.TimeoutRetry, "":
	default:
		return fmt.Errorf("browser.on_timeout must be %q or %q", browser.TimeoutSkip, browser.TimeoutRetry)
	}
	if c.Browser.NavigationTimeout < 0 {
		return fmt.Errorf("browser.navigation_timeout_ms must not be negative")
	}
	// Compile allowlist patterns up front so typos fail at startup.
	if _, err := browser.NewAllowlist(c.Browser.AllowedHosts); err != nil {
		return err
	}
	return nil
}

// SessionOptions maps the browser section onto driver session options.
func (c *Config) SessionOptions() browser.SessionOptions {
	return browser.SessionOptions{
		Headless: c.Browser.Headless,
		Viewport: &browser.Viewport{
			Width:  c.Browser.ViewportWidth,
			Height: c.Browser.ViewportHeight,
		},
		UserAgent: c.Browser.UserAgent,
		Timeout:   c.Browser.NavigationTimeout,
	}
}
