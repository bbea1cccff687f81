package category

import (
	"regexp"
	"strings"
)

// Geographic category names that must never be auto-suggested for
// merging into unrelated genres. Similarity scoring happily pairs
// "Ireland" with "Iceland"; a human almost never wants that merge.
var protectedPlaces = map[string]bool{
	"africa":        true,
	"america":       true,
	"asia":          true,
	"australia":     true,
	"austria":       true,
	"canada":        true,
	"china":         true,
	"england":       true,
	"europe":        true,
	"france":        true,
	"germany":       true,
	"great britain": true,
	"iceland":       true,
	"india":         true,
	"ireland":       true,
	"italy":         true,
	"japan":         true,
	"london":        true,
	"new york":      true,
	"paris":         true,
	"poland":        true,
	"russia":        true,
	"scotland":      true,
	"spain":         true,
	"sweden":        true,
	"united states": true,
	"wales":         true,
}

// Era and period names: "19th Century", "1920s", "Middle Ages" and the
// like. These look similar to each other without being mergeable.
var eraPattern = regexp.MustCompile(`(?i)^(\d{1,2}(st|nd|rd|th)\s+century|\d{4}s|(early|mid|late)\s+\d{4}s|middle\s+ages|ancient|medieval|renaissance|victorian|edwardian|regency|colonial(\s+period)?|prehistor(y|ic))$`)

// Protected reports whether a category is a geographic or era name that
// the merge suggester must leave alone.
func Protected(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	return protectedPlaces[c] || eraPattern.MatchString(c)
}
