package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shelfmark/shelfmark-server/internal/category"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/notion"
	"github.com/shelfmark/shelfmark-server/internal/reconcile"
)

// ReconcileService owns the registry of live reconciliation sessions and
// drives them through the controller. Sessions are in-memory only: one
// is created when a book is opened for integration and dropped when its
// write completes or it is cancelled.
type ReconcileService struct {
	mu       sync.RWMutex
	sessions map[string]*reconcile.Session

	controller   *reconcile.Controller
	metadata     *MetadataService
	settings     *SettingsService
	dest         *notion.Client
	collectionID string
	logger       *slog.Logger
}

// NewReconcileService creates a reconcile service.
func NewReconcileService(controller *reconcile.Controller, metadata *MetadataService, settings *SettingsService, dest *notion.Client, collectionID string, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		sessions:     make(map[string]*reconcile.Session),
		controller:   controller,
		metadata:     metadata,
		settings:     settings,
		dest:         dest,
		collectionID: collectionID,
		logger:       logger,
	}
}

// OpenParams identifies the book a session is opened for. Exactly one of
// VolumeID or ISBN must be set.
type OpenParams struct {
	VolumeID string
	ISBN     string
}

// Open fetches the book's record, enriches it with editions and the
// audiobook counterpart, snapshots the destination schema, and registers
// a new session.
func (s *ReconcileService) Open(ctx context.Context, params OpenParams) (*reconcile.Session, error) {
	if params.VolumeID == "" && params.ISBN == "" {
		return nil, domainerrors.Validation("a volume id or ISBN is required to open a session")
	}

	rec, err := s.metadata.Lookup(ctx, params.VolumeID, params.ISBN)
	if err != nil {
		return nil, err
	}

	editions, audiobook := s.metadata.Enrich(ctx, rec)

	schema, err := s.dest.GetSchema(ctx, s.collectionID)
	if err != nil {
		return nil, err
	}
	properties := reconcile.TargetPropertiesFromSchema(schema)

	sessionID, err := id.Generate("rec")
	if err != nil {
		return nil, domainerrors.Internal("generate session id").WithCause(err)
	}

	session := reconcile.NewSession(sessionID, rec, editions, audiobook, properties)

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	s.logger.Info("reconciliation session opened",
		"session", sessionID,
		"volume", rec.ID,
		"editions", len(editions),
		"audiobook", audiobook != nil,
	)
	return session, nil
}

// Get returns a live session by id.
func (s *ReconcileService) Get(sessionID string) (*reconcile.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domainerrors.NotFoundf("session %s not found", sessionID)
	}
	return session, nil
}

// Close drops a session from the registry.
func (s *ReconcileService) Close(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// EffectiveValues resolves the session's per-field candidates.
func (s *ReconcileService) EffectiveValues(sessionID string) (map[domain.SemanticField]domain.CandidateValue, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.controller.EffectiveValues(session), nil
}

// CheckDuplicate runs (or reuses) the session's duplicate lookup.
func (s *ReconcileService) CheckDuplicate(ctx context.Context, sessionID string) (*reconcile.Session, *domain.DuplicateMatch, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	match, err := s.controller.CheckDuplicate(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	return session, match, nil
}

// Resolve applies a duplicate decision. A cancel decision drops the
// session.
func (s *ReconcileService) Resolve(sessionID string, decision domain.DuplicateDecision) (*reconcile.Session, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.controller.Resolve(session, decision); err != nil {
		return nil, err
	}

	if decision == domain.DecisionCancel {
		s.Close(sessionID)
	}
	return session, nil
}

// Write performs the session's destination write and drops the session
// on success.
func (s *ReconcileService) Write(ctx context.Context, sessionID string) (*notion.Record, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	rec, err := s.controller.Write(ctx, session)
	if err != nil {
		return nil, err
	}

	s.Close(sessionID)
	return rec, nil
}

// SessionCategories runs the vocabulary pipeline for a session's record
// with the live category settings, optionally resetting the selection to
// the full processed set. A settings edit made after the session opened
// is reflected here without any reload step.
func (s *ReconcileService) SessionCategories(ctx context.Context, sessionID string, reset bool) (category.Result, []string, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return category.Result{}, nil, err
	}

	settings, err := s.settings.GetCategorySettings(ctx)
	if err != nil {
		return category.Result{}, nil, err
	}

	result, selected := session.RenderCategories(settings, reset)
	return result, selected, nil
}

// SelectCategories replaces a session's category selection, filtered to
// the set the live settings currently produce.
func (s *ReconcileService) SelectCategories(ctx context.Context, sessionID string, selected []string) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}

	settings, err := s.settings.GetCategorySettings(ctx)
	if err != nil {
		return err
	}

	session.SelectCategories(settings, selected)
	return nil
}
