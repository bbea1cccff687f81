package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/coerce"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/notion"
	"github.com/shelfmark/shelfmark-server/internal/source"
)

// Destination is the narrow surface of the destination service the
// controller needs.
type Destination interface {
	QueryCollection(ctx context.Context, collectionID string, filter notion.Filter) ([]notion.Record, error)
	CreateRecord(ctx context.Context, req notion.CreateRecordRequest) (*notion.Record, error)
	UpdateRecord(ctx context.Context, recordID string, properties map[string]notion.PropertyValue) (*notion.Record, error)
}

// SettingsSource supplies the current category settings. Sessions never
// hold a settings snapshot: every category render reads through this, so
// a settings edit is visible on the very next operation.
type SettingsSource interface {
	GetCategorySettings(ctx context.Context) (domain.CategorySettings, error)
}

// Controller orchestrates reconciliation sessions against one
// destination collection.
type Controller struct {
	dest         Destination
	settings     SettingsSource
	coercer      *coerce.Coercer
	selector     *source.Selector
	collectionID string
	log          *logger.Logger
}

// NewController creates a controller.
func NewController(dest Destination, settings SettingsSource, coercer *coerce.Coercer, selector *source.Selector, collectionID string, log *logger.Logger) *Controller {
	return &Controller{
		dest:         dest,
		settings:     settings,
		coercer:      coercer,
		selector:     selector,
		collectionID: collectionID,
		log:          log,
	}
}

// EffectiveValues resolves every semantic field's candidates to a single
// value using the session's explicit selections and the default source
// policy. Fields with no candidate are absent from the result.
func (c *Controller) EffectiveValues(s *Session) map[domain.SemanticField]domain.CandidateValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.effectiveValuesLocked(s)
}

// CheckDuplicate queries the destination for records whose identifying
// fields overlap the effective record. The verdict is cached: repeated
// checks without intervening edits to identifying fields return the same
// answer with no further query.
func (c *Controller) CheckDuplicate(ctx context.Context, s *Session) (*domain.DuplicateMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.checkDuplicateLocked(ctx, s)
}

func (c *Controller) checkDuplicateLocked(ctx context.Context, s *Session) (*domain.DuplicateMatch, error) {
	if s.State.Closed() {
		return nil, domainerrors.Validationf("session %s is %s", s.ID, s.State)
	}

	values := c.effectiveValuesLocked(s)
	fp := fingerprint(s, values)
	if (s.State == StateUnique || s.State == StateDuplicate) && fp == s.checkedFingerprint {
		return s.Duplicate, nil
	}

	prev := s.State
	s.State = StateChecking

	filter := identifyingFilter(s, values)
	if len(filter.Or) == 0 {
		// Nothing identifying is mapped; without a queryable property
		// the record is treated as unique.
		s.State = StateUnique
		s.Duplicate = nil
		s.checkedFingerprint = fp
		return nil, nil
	}

	records, err := c.dest.QueryCollection(ctx, c.collectionID, filter)
	if err != nil {
		s.State = prev
		return nil, err
	}

	if len(records) == 0 {
		s.State = StateUnique
		s.Duplicate = nil
		s.checkedFingerprint = fp
		return nil, nil
	}

	first := records[0]
	s.State = StateDuplicate
	s.Duplicate = &domain.DuplicateMatch{
		RecordID:  first.ID,
		RecordURL: first.URL,
		Title:     first.Title(),
	}
	s.checkedFingerprint = fp

	c.log.Info("duplicate record found",
		"session", s.ID,
		"record", first.ID,
		"matches", len(records))
	return s.Duplicate, nil
}

// Resolve applies the user's duplicate decision. Only a session parked
// in the duplicate state accepts one.
func (c *Controller) Resolve(s *Session, decision domain.DuplicateDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !decision.Valid() {
		return domainerrors.Validationf("unknown decision %q", decision)
	}
	if s.State != StateDuplicate {
		return domainerrors.Validationf("session %s is %s, not awaiting a duplicate decision", s.ID, s.State)
	}

	switch decision {
	case domain.DecisionCancel:
		s.State = StateCancelled
	case domain.DecisionReplace:
		s.State = StateReplacing
	case domain.DecisionKeepBoth:
		s.State = StateKeepingBoth
	}
	return nil
}

// Write performs the session's destination write. A session still in the
// unknown state is checked for duplicates first; one parked on duplicate
// refuses to write until resolved. Destination failures move the session
// to failed with the error kind preserved; there is no automatic retry.
func (c *Controller) Write(ctx context.Context, s *Session) (*notion.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State == StateUnknown {
		if _, err := c.checkDuplicateLocked(ctx, s); err != nil {
			return nil, err
		}
	}

	switch s.State {
	case StateDuplicate:
		return nil, domainerrors.DuplicateAmbiguous("an existing record matches; choose cancel, replace, or keep both")
	case StateUnique, StateReplacing, StateKeepingBoth:
	default:
		return nil, domainerrors.Validationf("session %s is %s and cannot write", s.ID, s.State)
	}

	properties, err := c.buildProperties(ctx, s)
	if err != nil {
		return nil, err
	}

	var rec *notion.Record
	if s.State == StateReplacing {
		// Re-use the existing record's identity; only mapped fields are
		// in the payload, so unrelated properties survive untouched.
		rec, err = c.dest.UpdateRecord(ctx, s.Duplicate.RecordID, properties)
	} else {
		req := notion.CreateRecordRequest{
			Parent:     notion.CollectionRef{DatabaseID: c.collectionID},
			Properties: properties,
		}
		if icon := c.recordIcon(s); icon != nil {
			req.Icon = icon
		}
		rec, err = c.dest.CreateRecord(ctx, req)
	}

	if err != nil {
		s.State = StateFailed
		var derr *domainerrors.Error
		if errors.As(err, &derr) {
			s.FailureKind = string(derr.Code)
		}
		c.log.WithError(err).Error("destination write failed", "session", s.ID)
		return nil, err
	}

	s.State = StateCompleted
	c.log.Info("record written", "session", s.ID, "record", rec.ID)
	return rec, nil
}

// buildProperties coerces the effective value of every mapped field into
// its destination payload. Fields whose value cannot be coerced are
// skipped, never sent as null; a single bad field must not spoil the
// write. Category settings are read fresh so an edit made while the
// session was open lands in this write.
func (c *Controller) buildProperties(ctx context.Context, s *Session) (map[string]notion.PropertyValue, error) {
	settings, err := c.settings.GetCategorySettings(ctx)
	if err != nil {
		return nil, domainerrors.Internal("load category settings").WithCause(err)
	}

	values := c.effectiveValuesLocked(s)
	properties := make(map[string]notion.PropertyValue, len(s.Mappings))

	for _, fm := range s.Mappings {
		kind, ok := s.PropertyKind(fm.PropertyName)
		if !ok {
			continue
		}

		raw := c.rawValue(s, fm.Field, values, settings)
		pv := c.coercer.Coerce(raw, kind)
		if pv == nil {
			c.log.Debug("field omitted from write",
				"session", s.ID,
				"field", string(fm.Field),
				"property", fm.PropertyName)
			continue
		}
		properties[fm.PropertyName] = *pv
	}
	return properties, nil
}

// rawValue returns the raw value feeding a field's coercion. Categories
// run through the vocabulary pipeline and the session's selection first.
func (c *Controller) rawValue(s *Session, field domain.SemanticField, values map[domain.SemanticField]domain.CandidateValue, settings domain.CategorySettings) any {
	if field == domain.FieldCategories {
		return s.categoriesLocked(settings)
	}
	if v, ok := values[field]; ok {
		return v.Value
	}
	return nil
}

// recordIcon uses the effective thumbnail as the created record's icon.
func (c *Controller) recordIcon(s *Session) *notion.Icon {
	values := c.effectiveValuesLocked(s)
	v, ok := values[domain.FieldThumbnail]
	if !ok {
		return nil
	}
	u, _ := v.Value.(string)
	if !strings.HasPrefix(u, "http") {
		return nil
	}
	return &notion.Icon{
		Type:     "external",
		External: &notion.ExternalFile{URL: u},
	}
}

// effectiveValuesLocked is EffectiveValues for callers already holding
// the session lock.
func (c *Controller) effectiveValuesLocked(s *Session) map[domain.SemanticField]domain.CandidateValue {
	out := make(map[domain.SemanticField]domain.CandidateValue)
	for _, spec := range domain.Registry() {
		candidates := domain.Candidates(spec.Field, s.Record, s.Editions, s.Audiobook)

		var explicit *domain.CandidateSource
		if src, ok := s.Selection[spec.Field]; ok {
			explicit = &src
		}

		if v, ok := c.selector.Select(spec.Field, candidates, explicit); ok {
			out[spec.Field] = v
		}
	}
	return out
}

// identifyingFilter builds the duplicate-lookup filter from the mapped
// identifying fields. Only properties of a text-search kind participate.
func identifyingFilter(s *Session, values map[domain.SemanticField]domain.CandidateValue) notion.Filter {
	var filter notion.Filter

	add := func(field domain.SemanticField) {
		fm, ok := s.Mappings.ByField(field)
		if !ok {
			return
		}
		kind, ok := s.PropertyKind(fm.PropertyName)
		if !ok {
			return
		}

		v, ok := values[field]
		if !ok {
			return
		}
		text, _ := v.Value.(string)
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}

		switch kind {
		case domain.KindTitle:
			filter.Or = append(filter.Or, notion.PropertyFilter{
				Property: fm.PropertyName,
				Title:    &notion.TextFilter{Contains: text},
			})
		case domain.KindRichText:
			filter.Or = append(filter.Or, notion.PropertyFilter{
				Property: fm.PropertyName,
				RichText: &notion.TextFilter{Contains: text},
			})
		}
	}

	add(domain.FieldISBN13)
	add(domain.FieldISBN10)
	add(domain.FieldISBN)
	add(domain.FieldTitle)
	return filter
}

// fingerprint captures the identifying fields and their mappings; while
// it is unchanged a cached duplicate verdict stays valid.
func fingerprint(s *Session, values map[domain.SemanticField]domain.CandidateValue) string {
	var b strings.Builder
	for _, field := range []domain.SemanticField{domain.FieldTitle, domain.FieldISBN13, domain.FieldISBN10, domain.FieldISBN} {
		if fm, ok := s.Mappings.ByField(field); ok {
			b.WriteString(fm.PropertyName)
		}
		b.WriteByte('=')
		if v, ok := values[field]; ok {
			if text, ok := v.Value.(string); ok {
				b.WriteString(text)
			}
		}
		b.WriteByte(';')
	}
	return b.String()
}
