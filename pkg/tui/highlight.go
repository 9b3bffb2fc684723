package tui

import (
	"bytes"
	"encoding/json"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// highlightJSON pretty-prints and syntax-highlights a value for the detail
// view. Any failure falls back to plain JSON; highlighting is cosmetic.
func highlightJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return string(raw)
	}
	iterator, err := lexer.Tokenise(nil, string(raw))
	if err != nil {
		return string(raw)
	}

	var buf bytes.Buffer
	formatter := formatters.Get("terminal256")
	if err := formatter.Format(&buf, chromastyles.Get("monokai"), iterator); err != nil {
		return string(raw)
	}
	return buf.String()
}
