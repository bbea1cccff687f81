package domain

import "time"

// SplitPolicy controls which separators the category normalizer splits
// raw category strings on, before alias and ignore lookup.
type SplitPolicy struct {
	Comma     bool `json:"comma"`
	Ampersand bool `json:"ampersand"`
	Slash     bool `json:"slash"`
}

// DefaultSplitPolicy splits on commas only, the separator the
// bibliographic sources actually use between distinct categories.
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{Comma: true}
}

// CategorySettings is the persisted category vocabulary state: an ignore
// set and an alias map, both keyed on the original (pre-canonicalization)
// string, plus the split policy. It is process-wide, read fresh for every
// category render and mutated only through explicit operations; the
// engine receives it as an explicit value object, never reads it as a
// hidden global.
type CategorySettings struct {
	Ignored   map[string]bool   `json:"ignored,omitempty"`
	Aliases   map[string]string `json:"aliases,omitempty"`
	Split     SplitPolicy       `json:"split"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

// NewCategorySettings returns empty settings with the default split policy.
func NewCategorySettings() CategorySettings {
	return CategorySettings{
		Ignored: make(map[string]bool),
		Aliases: make(map[string]string),
		Split:   DefaultSplitPolicy(),
	}
}

// Clone returns a deep copy: the maps are independent, so the caller
// can hand out settings without exposing its own state to mutation.
func (cs CategorySettings) Clone() CategorySettings {
	out := CategorySettings{
		Ignored:   make(map[string]bool, len(cs.Ignored)),
		Aliases:   make(map[string]string, len(cs.Aliases)),
		Split:     cs.Split,
		UpdatedAt: cs.UpdatedAt,
	}
	for k, v := range cs.Ignored {
		out.Ignored[k] = v
	}
	for k, v := range cs.Aliases {
		out.Aliases[k] = v
	}
	return out
}

// MappedFrom returns the originals that alias to the given canonical
// category, for "mapped from: …" display.
func (cs CategorySettings) MappedFrom(canonical string) []string {
	var out []string
	for from, to := range cs.Aliases {
		if to == canonical {
			out = append(out, from)
		}
	}
	return out
}

// CategoryEntry is one category as shown to the user: the original
// string, its canonical form, and whether it is ignored. MappedFrom is
// set when the canonical form was produced by an alias.
type CategoryEntry struct {
	Original   string `json:"original"`
	Canonical  string `json:"canonical"`
	Ignored    bool   `json:"ignored,omitempty"`
	MappedFrom string `json:"mapped_from,omitempty"`
}
