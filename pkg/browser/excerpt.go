package browser

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultExcerptLength bounds the page excerpt stored in a checkpoint.
const DefaultExcerptLength = 2000

// PageExcerpt is a readable snapshot of a page captured at suspend time so a
// reviewer can see what the browser hit without decoding the screenshot.
type PageExcerpt struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// ExtractExcerpt parses raw HTML and returns the page title plus the visible
// text, with scripts, styles and markup noise stripped and whitespace
// collapsed. Text beyond maxLength is truncated with an ellipsis.
func ExtractExcerpt(rawHTML string, maxLength int) PageExcerpt {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		// Best-effort: an unparseable page yields an empty excerpt.
		return PageExcerpt{}
	}

	var words []string
	collectText(doc, &words)

	excerpt := PageExcerpt{Title: findTitle(doc)}
	text := strings.Join(words, " ")
	if len(text) > maxLength {
		text = text[:maxLength] + "..."
	}
	excerpt.Text = text
	return excerpt
}

func collectText(n *html.Node, words *[]string) {
	if n.Type == html.CommentNode {
		return
	}
	if n.Type == html.ElementNode && isNoiseElement(strings.ToLower(n.Data)) {
		return
	}
	if n.Type == html.TextNode {
		for _, w := range strings.Fields(n.Data) {
			*words = append(*words, w)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, words)
	}
}

// isNoiseElement reports elements whose text never renders to the user.
func isNoiseElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "iframe", "embed", "object", "svg", "head":
		return true
	}
	return false
}

func findTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return title
}
