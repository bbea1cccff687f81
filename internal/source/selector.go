// Package source resolves a semantic field's competing candidate values
// (original record, alternate editions, audiobook) into the single value
// that feeds the effective record.
package source

import (
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/dateparse"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/logger"
)

// Config tunes selection policy.
type Config struct {
	// PreferEarlierAudiobookDate uses the audiobook release date for
	// date fields when it predates the book's own date. Audiobook
	// catalogs often carry the first-publication date where edition
	// records carry a reprint date. Editorial policy, not an invariant,
	// so it stays configurable.
	PreferEarlierAudiobookDate bool
}

// DefaultConfig enables the earlier-audiobook-date preference.
func DefaultConfig() Config {
	return Config{PreferEarlierAudiobookDate: true}
}

// Selector picks effective values from candidate sets.
type Selector struct {
	cfg Config
	log *logger.Logger
}

// New creates a selector.
func New(cfg Config, log *logger.Logger) *Selector {
	return &Selector{cfg: cfg, log: log}
}

// Select resolves a field's candidates to one value. An explicit choice
// naming an existing, non-empty candidate always wins. Otherwise date
// fields prefer complete dates over year-only values, and the
// consolidated original source outranks raw per-edition values. With no
// candidate at all the second return is false and the field is omitted.
func (s *Selector) Select(field domain.SemanticField, candidates []domain.CandidateValue, explicit *domain.CandidateSource) (domain.CandidateValue, bool) {
	if len(candidates) == 0 {
		return domain.CandidateValue{}, false
	}

	if explicit != nil {
		for _, c := range candidates {
			if c.Source == *explicit {
				return c, true
			}
		}
		// The chosen source has no value for this field; fall back to
		// the default policy rather than omitting silently.
	}

	if field.IsDate() {
		return s.selectDate(field, candidates), true
	}

	if len(candidates) > 1 {
		s.log.Debug("multiple candidates for field, taking highest priority source",
			"field", string(field),
			"chosen", candidates[0].Source.String(),
			"candidates", len(candidates))
	}
	// Candidates arrive in source priority order: original first, then
	// editions, then audiobook.
	return candidates[0], true
}

// selectDate prefers complete dates over year-only values and, when
// configured, an audiobook date that predates the book date.
func (s *Selector) selectDate(field domain.SemanticField, candidates []domain.CandidateValue) domain.CandidateValue {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if completeDate(c.Value) && !completeDate(best.Value) {
			s.log.Debug("date candidate collision, preferring complete date",
				"field", string(field),
				"kept", c.Source.String(),
				"dropped", best.Source.String())
			best = c
		}
	}

	if s.cfg.PreferEarlierAudiobookDate {
		for _, c := range candidates {
			if c.Source.Kind != domain.SourceAudiobook {
				continue
			}
			if earlierDate(c.Value, best.Value) {
				s.log.Debug("using earlier audiobook release date",
					"field", string(field),
					"audiobook", stringValue(c.Value),
					"book", stringValue(best.Value))
				best = c
			}
			break
		}
	}
	return best
}

// EffectiveIdentifier picks the most specific identifier available from
// an already-selected field set: ISBN-13 over generic ISBN over ISBN-10.
func EffectiveIdentifier(values map[domain.SemanticField]domain.CandidateValue) (string, bool) {
	for _, field := range []domain.SemanticField{domain.FieldISBN13, domain.FieldISBN, domain.FieldISBN10} {
		if v, ok := values[field]; ok {
			if s := stringValue(v.Value); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// completeDate reports whether a raw date value carries more than a bare
// year: it has a separator, or is longer than four characters.
func completeDate(v any) bool {
	s := stringValue(v)
	if s == "" {
		return false
	}
	return strings.ContainsAny(s, "-/.") || len(s) > 4
}

// earlierDate reports whether a resolves strictly before b. Unresolvable
// values never win.
func earlierDate(a, b any) bool {
	ra, okA := dateparse.Resolve(stringValue(a))
	if !okA {
		return false
	}
	rb, okB := dateparse.Resolve(stringValue(b))
	if !okB {
		return true
	}
	return ra.ISO < rb.ISO
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
