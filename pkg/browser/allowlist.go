package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Allowlist restricts which hosts the automation may navigate to. Patterns
// are glob-matched against the target hostname, e.g. "*.gst.gov.in" or
// "portal.example.com". An empty allowlist permits every host.
type Allowlist struct {
	patterns []glob.Glob
	sources  []string
}

// NewAllowlist compiles host patterns. Invalid patterns are rejected up front
// so a misconfigured allowlist fails at startup, not mid-run.
func NewAllowlist(patterns []string) (*Allowlist, error) {
	a := &Allowlist{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(p), '.')
		if err != nil {
			return nil, fmt.Errorf("invalid allowlist pattern %q: %w", p, err)
		}
		a.patterns = append(a.patterns, g)
		a.sources = append(a.sources, p)
	}
	return a, nil
}

// Allowed reports whether the raw URL's host matches any pattern. Unparseable
// URLs are rejected when patterns are configured.
func (a *Allowlist) Allowed(rawURL string) bool {
	if a == nil || len(a.patterns) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, g := range a.patterns {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// Patterns returns the configured source patterns.
func (a *Allowlist) Patterns() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.sources))
	copy(out, a.sources)
	return out
}
