package match

import (
	"slices"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// suggestThreshold is the score a candidate property must exceed to be
// mapped. A score of exactly 50 is rejected; 51 is accepted. False
// positives below this are worse than a missed mapping, which is why the
// mapper is greedy and threshold-gated rather than a global bipartite
// matcher.
const suggestThreshold = 50

// kindBonus is added when the value kind equals the property kind exactly.
const kindBonus = 10

// Suggest proposes a mapping from semantic fields to target properties.
//
// Fields are processed in ascending priority order (lower number first,
// so ISBN-13 claims before ISBN-10). For each field the best-scoring
// unclaimed compatible property wins if its score exceeds the threshold;
// the property is then claimed so no two fields share one. Fields with
// no qualifying property are left unmapped, never errored; no target
// properties at all yields an empty mapping set.
func Suggest(fields []domain.FieldSpec, properties []domain.TargetProperty) domain.MappingSet {
	ordered := make([]domain.FieldSpec, len(fields))
	copy(ordered, fields)
	slices.SortStableFunc(ordered, func(a, b domain.FieldSpec) int {
		return a.Priority - b.Priority
	})

	scorer := NewScorer()
	for _, fs := range ordered {
		scorer.RegisterKeywords(string(fs.Field), fs.Keywords)
	}

	claimed := make(map[string]bool, len(properties))
	mappings := make(domain.MappingSet, 0, len(ordered))

	for _, fs := range ordered {
		bestScore := 0
		bestProp := ""
		for _, prop := range properties {
			if claimed[prop.Name] || !Compatible(fs.Kind, prop.Kind) {
				continue
			}
			score := scorer.Score(string(fs.Field), prop.Name)
			if kindMatches(fs.Kind, prop.Kind) {
				score += kindBonus
			}
			if score > 100 {
				score = 100
			}
			if score > bestScore {
				bestScore = score
				bestProp = prop.Name
			}
		}

		if bestScore <= suggestThreshold {
			continue
		}

		claimed[bestProp] = true
		mappings = append(mappings, domain.FieldMapping{
			Field:        fs.Field,
			PropertyName: bestProp,
			Confidence:   bestScore,
		})
	}

	return mappings
}
