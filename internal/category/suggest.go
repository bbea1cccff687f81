package category

import (
	"github.com/shelfmark/shelfmark-server/internal/match"
)

// suggestThreshold is the similarity score a pair of canonical
// categories must exceed to be surfaced as a merge suggestion.
const suggestThreshold = 70

// Suggestion pairs two canonical categories the user may want to merge.
type Suggestion struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Score int    `json:"score"`
}

// SuggestSimilar surfaces pairs of canonical categories whose similarity
// clears the threshold, skipping any pair with a protected member.
// Suggestions are advisory; nothing merges without an explicit call to
// Merge.
func SuggestSimilar(canonical []string) []Suggestion {
	scorer := match.NewScorer()

	var out []Suggestion
	for i := 0; i < len(canonical); i++ {
		if Protected(canonical[i]) {
			continue
		}
		for j := i + 1; j < len(canonical); j++ {
			if Protected(canonical[j]) {
				continue
			}
			score := scorer.Score(canonical[i], canonical[j])
			if score >= suggestThreshold {
				out = append(out, Suggestion{A: canonical[i], B: canonical[j], Score: score})
			}
		}
	}
	return out
}
