package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are subtrees that carry chrome or code, not content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
}

// CleanPage reduces an HTML page to its visible text: script, style, and
// navigation chrome are dropped, whitespace is collapsed, and the result is
// truncated to maxChars runes (maxChars <= 0 means no cap). Unparseable input
// falls back to the raw string with tags left in, truncated the same way.
func CleanPage(rawHTML string, maxChars int) string {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return truncate(collapse(rawHTML), maxChars)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return truncate(collapse(b.String()), maxChars)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
