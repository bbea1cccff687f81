// Package category maintains the canonical category vocabulary: raw
// strings from bibliographic sources are split, run through a persisted
// alias map, and filtered against a persisted ignore set. The settings
// object is always passed in explicitly; nothing in this package reads
// persisted state on its own.
package category

import (
	"strings"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

// Result is the output of Process: the selectable canonical set plus the
// bookkeeping the UI needs to show struck-through and merged entries.
type Result struct {
	Processed []string               `json:"processed"`
	Ignored   []string               `json:"ignored,omitempty"`
	Mapped    map[string]string      `json:"mapped,omitempty"`
	Entries   []domain.CategoryEntry `json:"entries,omitempty"`
}

// Split breaks raw category strings on the separators the policy
// enables, trims the pieces, and drops empties. Splitting always runs
// before alias and ignore lookup.
func Split(categories []string, policy domain.SplitPolicy) []string {
	var out []string
	for _, raw := range categories {
		parts := []string{raw}
		if policy.Comma {
			parts = splitAll(parts, ",")
		}
		if policy.Ampersand {
			parts = splitAll(parts, "&")
		}
		if policy.Slash {
			parts = splitAll(parts, "/")
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func splitAll(values []string, sep string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, sep)...)
	}
	return out
}

// Canonicalize follows the alias map transitively to the final canonical
// form. A visited guard stops on cycles, so canonicalization is total
// and idempotent even if persisted state is somehow corrupt.
func Canonicalize(original string, settings domain.CategorySettings) string {
	current := original
	visited := map[string]bool{current: true}
	for {
		next, ok := settings.Aliases[current]
		if !ok || visited[next] {
			return current
		}
		visited[next] = true
		current = next
	}
}

// Process applies split, alias, then ignore to the raw categories plus
// any audiobook genres, deduplicates, and returns the selectable set.
// Re-running Process on its own Processed output yields the same set:
// an alias target that itself carries an enabled separator is re-split
// and its pieces fed back through the pipeline in the same pass, so no
// separator-bearing string ever reaches the output.
func Process(raw []string, settings domain.CategorySettings, audiobookGenres []string) Result {
	queue := Split(raw, settings.Split)
	queue = append(queue, Split(audiobookGenres, settings.Split)...)

	result := Result{Mapped: make(map[string]string)}
	seen := make(map[string]bool)
	ignoredSeen := make(map[string]bool)
	visited := make(map[string]bool)

	for len(queue) > 0 {
		original := queue[0]
		queue = queue[1:]
		if visited[original] {
			continue
		}
		visited[original] = true

		canonical := Canonicalize(original, settings)
		if canonical != original {
			result.Mapped[original] = canonical
		}

		if pieces := Split([]string{canonical}, settings.Split); len(pieces) != 1 || pieces[0] != canonical {
			queue = append(queue, pieces...)
			continue
		}

		entry := domain.CategoryEntry{Original: original, Canonical: canonical}
		if canonical != original {
			entry.MappedFrom = original
		}

		if settings.Ignored[original] || settings.Ignored[canonical] {
			if !ignoredSeen[canonical] {
				ignoredSeen[canonical] = true
				result.Ignored = append(result.Ignored, canonical)
				entry.Ignored = true
				result.Entries = append(result.Entries, entry)
			}
			continue
		}
		if !seen[canonical] {
			seen[canonical] = true
			result.Processed = append(result.Processed, canonical)
			result.Entries = append(result.Entries, entry)
		}
	}
	return result
}

// Ignore adds a category to the ignore set.
func Ignore(settings *domain.CategorySettings, original string) {
	if settings.Ignored == nil {
		settings.Ignored = make(map[string]bool)
	}
	settings.Ignored[original] = true
	settings.UpdatedAt = time.Now()
}

// Unignore removes a category from the ignore set.
func Unignore(settings *domain.CategorySettings, original string) {
	delete(settings.Ignored, original)
	settings.UpdatedAt = time.Now()
}

// Merge records that from should canonicalize to to. Merging a category
// into itself, or creating an alias cycle, is rejected.
func Merge(settings *domain.CategorySettings, from, to string) error {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return domainerrors.Validation("merge requires both a source and a target category")
	}
	if from == to {
		return domainerrors.Validationf("cannot merge %q into itself", from)
	}
	if Canonicalize(to, *settings) == from {
		return domainerrors.Validationf("merging %q into %q would create an alias cycle", from, to)
	}
	if settings.Aliases == nil {
		settings.Aliases = make(map[string]string)
	}
	settings.Aliases[from] = to
	settings.UpdatedAt = time.Now()
	return nil
}

// Unmap removes the alias relationships touching a category: its own
// outgoing mapping, and every mapping that points to it.
func Unmap(settings *domain.CategorySettings, category string) {
	delete(settings.Aliases, category)
	for from, to := range settings.Aliases {
		if to == category {
			delete(settings.Aliases, from)
		}
	}
	settings.UpdatedAt = time.Now()
}

// ApplySelection reconciles the previous category selection with a fresh
// processed set. With reset, the selection becomes the whole processed
// set (first load); otherwise the previous selection is kept, filtered
// to categories still present, so a settings tweak does not discard the
// user's explicit choices.
func ApplySelection(previous []string, processed []string, reset bool) []string {
	if reset {
		return append([]string(nil), processed...)
	}
	present := make(map[string]bool, len(processed))
	for _, c := range processed {
		present[c] = true
	}
	var out []string
	for _, c := range previous {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}
