package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExcerpt(t *testing.T) {
	raw := `<html>
	  <head>
	    <title> Login Required </title>
	    <style>body { color: red; }</style>
	  </head>
	  <body>
	    <script>var tracking = "noise";</script>
	    <h1>Sign   in</h1>
	    <p>Please complete the
	       CAPTCHA below.</p>
	    <noscript>Enable JavaScript</noscript>
	  </body>
	</html>`

	excerpt := ExtractExcerpt(raw, 0)
	assert.Equal(t, "Login Required", excerpt.Title)
	assert.Equal(t, "Sign in Please complete the CAPTCHA below.", excerpt.Text)
	assert.NotContains(t, excerpt.Text, "tracking")
	assert.NotContains(t, excerpt.Text, "Enable JavaScript")
	assert.NotContains(t, excerpt.Text, "color: red")
}

func TestExtractExcerptTruncates(t *testing.T) {
	raw := "<body><p>" + strings.Repeat("word ", 100) + "</p></body>"
	excerpt := ExtractExcerpt(raw, 50)
	assert.Len(t, excerpt.Text, 53) // 50 chars plus the ellipsis
	assert.True(t, strings.HasSuffix(excerpt.Text, "..."))
}

func TestExtractExcerptEmptyInput(t *testing.T) {
	excerpt := ExtractExcerpt("", 100)
	assert.Empty(t, excerpt.Title)
	assert.Empty(t, excerpt.Text)
}
