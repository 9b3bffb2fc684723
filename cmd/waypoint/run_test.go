package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/waypoint/pkg/browser"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScript(t *testing.T) {
	path := writeScript(t, `
url: https://services.gst.gov.in/services/login
actions:
  - type: fill
    selector: "#username"
    value: taxpayer01
  - type: click
    selector: "#submit"
  - type: get_text
    selector: ".status"
    timeout: 5000
`)

	s, err := loadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "https://services.gst.gov.in/services/login", s.URL)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, browser.ActionFill, s.Actions[0].Kind)
	assert.Equal(t, "taxpayer01", s.Actions[0].Value)
	assert.Equal(t, browser.ActionGetText, s.Actions[2].Kind)
	assert.Equal(t, 5000.0, s.Actions[2].Timeout)
}

func TestLoadScriptMissingURL(t *testing.T) {
	path := writeScript(t, "actions:\n  - type: click\n    selector: a\n")
	_, err := loadScript(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no url")
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := loadScript("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestBuildResolution(t *testing.T) {
	t.Cleanup(func() {
		resolveToken = ""
		resolveCookies = ""
		resolveData = nil
	})

	resolveToken = ""
	resolveCookies = ""
	resolveData = nil
	_, err := buildResolution()
	require.Error(t, err, "an empty resolution is rejected")

	resolveToken = "tok"
	resolveData = []string{"otp=123456", "ref=ab=cd"}
	resolution, err := buildResolution()
	require.NoError(t, err)
	assert.Equal(t, "tok", resolution.CaptchaToken)
	assert.Equal(t, "123456", resolution.ManualData["otp"])
	assert.Equal(t, "ab=cd", resolution.ManualData["ref"], "values may contain equals signs")

	resolveData = []string{"missing-separator"}
	_, err = buildResolution()
	require.Error(t, err)
}

func TestBuildResolutionCookiesFile(t *testing.T) {
	t.Cleanup(func() {
		resolveToken = ""
		resolveCookies = ""
		resolveData = nil
	})

	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"name":"sid","value":"fresh","domain":".example.com"}]`), 0o644))

	resolveToken = ""
	resolveData = nil
	resolveCookies = path
	resolution, err := buildResolution()
	require.NoError(t, err)
	require.Len(t, resolution.Cookies, 1)
	assert.Equal(t, "fresh", resolution.Cookies[0].Value)
}
