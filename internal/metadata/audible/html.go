package audible

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// stripHTML converts an HTML summary to plain text, collapsing
// whitespace. Falls back to regex stripping if parsing fails.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		stripped := htmlTagRegex.ReplaceAllString(s, " ")
		return strings.TrimSpace(whitespaceRegex.ReplaceAllString(html.UnescapeString(stripped), " "))
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && blockElement(n.Data) {
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && n.Data != "br" && blockElement(n.Data) {
			buf.WriteString(" ")
		}
	}
	walk(doc)

	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(buf.String(), " "))
}

func blockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
