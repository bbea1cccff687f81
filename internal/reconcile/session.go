// Package reconcile drives a book's reconciliation session: building the
// effective record from candidate values, checking the destination for a
// duplicate, and writing the final payload once the user has decided.
package reconcile

import (
	"sort"
	"sync"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/category"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/match"
	"github.com/shelfmark/shelfmark-server/internal/notion"
)

// State is a session's position in the reconciliation state machine.
type State string

// Session states. A session starts unknown, moves through checking to a
// duplicate verdict, parks on duplicate until the user decides, and ends
// in completed, cancelled, or failed.
const (
	StateUnknown     State = "unknown"
	StateChecking    State = "checking"
	StateDuplicate   State = "duplicate"
	StateUnique      State = "unique"
	StateCancelled   State = "cancelled"
	StateReplacing   State = "replacing"
	StateKeepingBoth State = "keepingBoth"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Closed reports whether the session has ended and accepts no further
// transitions.
func (s State) Closed() bool {
	switch s {
	case StateCancelled, StateCompleted, StateFailed:
		return true
	}
	return false
}

// Session is the aggregate root of one reconciliation: the source record
// with its candidate sets, the field mappings, the user's source and
// category selections, and the duplicate verdict. Created when a book is
// opened for integration, discarded when its write completes or is
// cancelled.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time

	Record    *domain.SourceRecord
	Editions  []domain.Edition
	Audiobook *domain.AudiobookRecord

	// Properties is the destination schema snapshot for this session.
	Properties []domain.TargetProperty
	Mappings   domain.MappingSet
	Selection  domain.FieldSelection

	// SelectedCategories is nil until the first render resets it to the
	// full processed set. Category settings are never snapshotted here;
	// every render reads the live settings.
	SelectedCategories []string

	State       State
	Duplicate   *domain.DuplicateMatch
	FailureKind string

	// checkedFingerprint is the identifying-field fingerprint at the
	// last duplicate check. While it matches, repeated checks return
	// the cached verdict without a network query.
	checkedFingerprint string
}

// NewSession opens a session and suggests the initial mapping set.
func NewSession(id string, rec *domain.SourceRecord, editions []domain.Edition, audio *domain.AudiobookRecord, properties []domain.TargetProperty) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		Record:     rec,
		Editions:   editions,
		Audiobook:  audio,
		Properties: properties,
		Mappings:   match.Suggest(domain.Registry(), properties),
		Selection:  make(domain.FieldSelection),
		State:      StateUnknown,
	}
}

// PropertyKind looks up the kind of a destination property by name.
func (s *Session) PropertyKind(name string) (domain.PropertyKind, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Kind, true
		}
	}
	return "", false
}

// SelectSource records an explicit source choice for a field. If an
// identifying field changed, the next duplicate check re-queries because
// the fingerprint no longer matches.
func (s *Session) SelectSource(field domain.SemanticField, src domain.CandidateSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Selection[field] = src
}

// EditMapping applies a user mapping edit. The duplicate verdict is kept;
// re-checking happens lazily when the fingerprint no longer matches.
func (s *Session) EditMapping(field domain.SemanticField, propertyName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Mappings = s.Mappings.Set(field, propertyName)
}

// RemoveMapping drops a field's mapping.
func (s *Session) RemoveMapping(field domain.SemanticField) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Mappings = s.Mappings.Remove(field)
}

// RenderCategories runs the session's raw categories through the given
// settings and reconciles the stored selection with the fresh processed
// set. With reset, or on the first render, the selection becomes the
// full processed set.
func (s *Session) RenderCategories(settings domain.CategorySettings, reset bool) (category.Result, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := category.Process(s.Record.Categories, settings, s.audiobookGenres())
	selected := category.ApplySelection(s.SelectedCategories, result.Processed, reset || s.SelectedCategories == nil)
	s.SelectedCategories = selected
	return result, selected
}

// SelectCategories replaces the session's category selection, filtered
// to the set the given settings currently produce.
func (s *Session) SelectCategories(settings domain.CategorySettings, selected []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := category.Process(s.Record.Categories, settings, s.audiobookGenres())
	s.SelectedCategories = category.ApplySelection(selected, result.Processed, false)
	return s.SelectedCategories
}

// categoriesLocked derives the category list for a write: the processed
// vocabulary under the given settings, filtered to the session's
// selection when the user has made one. The caller holds s.mu.
func (s *Session) categoriesLocked(settings domain.CategorySettings) []string {
	result := category.Process(s.Record.Categories, settings, s.audiobookGenres())
	if s.SelectedCategories == nil {
		return result.Processed
	}
	return category.ApplySelection(s.SelectedCategories, result.Processed, false)
}

func (s *Session) audiobookGenres() []string {
	if s.Audiobook == nil {
		return nil
	}
	return s.Audiobook.Genres
}

// TargetPropertiesFromSchema converts a fetched destination schema into
// the session's read-only property list, sorted by name so mapping
// suggestions are stable across runs.
func TargetPropertiesFromSchema(schema *notion.Schema) []domain.TargetProperty {
	out := make([]domain.TargetProperty, 0, len(schema.Properties))
	for name, p := range schema.Properties {
		out = append(out, domain.TargetProperty{
			ID:   p.ID,
			Name: name,
			Kind: domain.PropertyKind(p.Type),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
