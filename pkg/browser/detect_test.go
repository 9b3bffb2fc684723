package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorDefaults(t *testing.T) {
	d := NewDetector(nil, nil)
	require.Equal(t, DefaultSignals, d.Signals())

	d = NewDetector([]string{".custom"}, nil)
	require.Equal(t, []string{".custom"}, d.Signals())
}

func TestDetectorCheck(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(p *fakePage)
		wantHit    bool
		wantSignal string
	}{
		{
			name:    "clean page",
			setup:   func(p *fakePage) {},
			wantHit: false,
		},
		{
			name: "visible captcha",
			setup: func(p *fakePage) {
				p.elements[".g-recaptcha"] = []*fakeElement{{visible: true}}
			},
			wantHit:    true,
			wantSignal: ".g-recaptcha",
		},
		{
			name: "hidden signal does not trigger",
			setup: func(p *fakePage) {
				p.elements["#loginForm"] = []*fakeElement{{visible: false}}
			},
			wantHit: false,
		},
		{
			name: "first visible match wins in priority order",
			setup: func(p *fakePage) {
				p.elements["#login-form"] = []*fakeElement{{visible: true}}
				p.elements["#captcha"] = []*fakeElement{{visible: true}}
			},
			wantHit:    true,
			wantSignal: "#captcha",
		},
		{
			name: "hidden higher priority yields to visible lower priority",
			setup: func(p *fakePage) {
				p.elements["#captcha"] = []*fakeElement{{visible: false}}
				p.elements["#loginForm"] = []*fakeElement{{visible: true}}
			},
			wantHit:    true,
			wantSignal: "#loginForm",
		},
		{
			name: "query error counts as no match",
			setup: func(p *fakePage) {
				p.queryErr["#captcha"] = errors.New("stale context")
				p.elements[".h-captcha"] = []*fakeElement{{visible: true}}
			},
			wantHit:    true,
			wantSignal: ".h-captcha",
		},
		{
			name: "visibility probe error counts as no match",
			setup: func(p *fakePage) {
				p.elements["#captcha"] = []*fakeElement{{visibleErr: errors.New("detached")}}
			},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage("https://example.com")
			tt.setup(page)

			hit, signal := NewDetector(nil, nil).Check(page)
			assert.Equal(t, tt.wantHit, hit)
			assert.Equal(t, tt.wantSignal, signal)
		})
	}
}

func TestDetectorCheckDeterministic(t *testing.T) {
	page := newFakePage("https://example.com")
	page.elements[".g-recaptcha"] = []*fakeElement{{visible: true}}
	page.elements[".captcha-container"] = []*fakeElement{{visible: true}}

	d := NewDetector(nil, nil)
	for i := 0; i < 10; i++ {
		hit, signal := d.Check(page)
		require.True(t, hit)
		require.Equal(t, ".g-recaptcha", signal)
	}
}
