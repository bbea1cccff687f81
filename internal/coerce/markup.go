package coerce

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// markdownMarkPattern strips the inline markers left after HTML
// conversion so rich text carries plain prose.
var markdownMarkPattern = regexp.MustCompile(`[*_#>` + "`" + `]+`)

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// stripMarkup converts HTML descriptions to plain text. Source records
// frequently carry description HTML; the destination's rich text wants
// prose. Input without markup passes through unchanged.
func stripMarkup(s string) string {
	if s == "" {
		return s
	}
	if containsHTML(s) {
		if markdown, err := htmltomarkdown.ConvertString(s); err == nil {
			s = markdown
		}
	}
	s = markdownMarkPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
