// Package match proposes semantic-field to destination-property mappings
// using tiered string similarity, kind compatibility filtering, and a
// greedy priority-ordered assignment.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Similarity tier scores. Tiers are evaluated in order and the first
// match wins; tiers are never combined.
const (
	scoreExact     = 100
	scoreSubstring = 80
	scoreKeyword   = 70
)

// Scorer computes string similarity between a semantic field name and a
// destination property name. Keywords registered for the left-hand side
// participate in the keyword tier. A Scorer has no side effects and is
// deterministic for repeated calls with the same arguments.
type Scorer struct {
	keywords map[string][]string
}

// NewScorer creates an empty scorer.
func NewScorer() *Scorer {
	return &Scorer{keywords: make(map[string][]string)}
}

// RegisterKeywords associates keywords with a left-hand-side name.
func (s *Scorer) RegisterKeywords(name string, keywords []string) {
	if len(keywords) == 0 {
		return
	}
	s.keywords[name] = keywords
}

// Score returns a similarity between 0 and 100.
//
// Tiers, first match wins:
//  1. Exact match after normalization.
//  2. One normalized string contains the other.
//  3. A keyword registered for a, contained in or containing b.
//  4. Normalized Levenshtein distance converted to similarity.
func (s *Scorer) Score(a, b string) int {
	na := normalize(a)
	nb := normalize(b)
	if na == "" || nb == "" {
		return 0
	}

	if na == nb {
		return scoreExact
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return scoreSubstring
	}

	for _, kw := range s.keywords[a] {
		nk := normalize(kw)
		if nk == "" {
			continue
		}
		if strings.Contains(nb, nk) || strings.Contains(nk, nb) {
			return scoreKeyword
		}
	}

	return editSimilarity(na, nb)
}

// deaccent decomposes characters and strips combining marks so
// "Café" and "Cafe" compare equal.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize folds accents, lowercases, and strips non-alphanumerics so
// "ISBN-13" and "isbn 13" compare equal.
func normalize(s string) string {
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// editSimilarity converts Levenshtein distance into a 0..100 score:
// max(0, (maxLen - distance) / maxLen * 100).
func editSimilarity(a, b string) int {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}
	d := levenshtein(a, b)
	score := (maxLen - d) * 100 / maxLen
	if score < 0 {
		return 0
	}
	return score
}

// levenshtein computes edit distance with a two-row DP table.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
