package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/reconcile"
	"github.com/shelfmark/shelfmark-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "openSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions",
		Summary:     "Open reconciliation session",
		Description: "Fetches the book record, enriches it with editions and the audiobook counterpart, and opens a session against the destination schema",
		Tags:        []string{"Sessions"},
	}, s.handleOpenSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns a live reconciliation session by ID",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Close session",
		Description: "Discards a session without writing",
		Tags:        []string{"Sessions"},
	}, s.handleCloseSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEffectiveValues",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/values",
		Summary:     "Get effective values",
		Description: "Resolves the winning candidate for every semantic field",
		Tags:        []string{"Sessions"},
	}, s.handleGetEffectiveValues)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectFieldSource",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/fields/{field}/source",
		Summary:     "Select field source",
		Description: "Records an explicit source choice for a semantic field",
		Tags:        []string{"Sessions"},
	}, s.handleSelectFieldSource)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkDuplicate",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/duplicate-check",
		Summary:     "Check for duplicate",
		Description: "Queries the destination for an existing record matching the session's identifying fields",
		Tags:        []string{"Sessions"},
	}, s.handleCheckDuplicate)

	huma.Register(s.api, huma.Operation{
		OperationID: "resolveDuplicate",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/resolve",
		Summary:     "Resolve duplicate",
		Description: "Applies the user's duplicate decision: cancel, replace, or keepBoth",
		Tags:        []string{"Sessions"},
	}, s.handleResolveDuplicate)

	huma.Register(s.api, huma.Operation{
		OperationID: "writeSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/write",
		Summary:     "Write session",
		Description: "Writes the effective record to the destination and closes the session",
		Tags:        []string{"Sessions"},
	}, s.handleWriteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSessionCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/categories",
		Summary:     "Get session categories",
		Description: "Runs the category pipeline for the session's record and returns the selectable set",
		Tags:        []string{"Sessions"},
	}, s.handleGetSessionCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectSessionCategories",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/categories",
		Summary:     "Select session categories",
		Description: "Replaces the session's category selection",
		Tags:        []string{"Sessions"},
	}, s.handleSelectSessionCategories)
}

// === DTOs ===

type OpenSessionInput struct {
	Body struct {
		VolumeID string `json:"volume_id,omitempty" doc:"Catalog volume ID"`
		ISBN     string `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
	}
}

type SessionPathInput struct {
	ID string `path:"id" doc:"Session ID"`
}

type PropertyResponse struct {
	Name string `json:"name" doc:"Property name"`
	Type string `json:"type" doc:"Property type"`
}

type MappingResponse struct {
	Field        string `json:"field" doc:"Semantic field"`
	PropertyName string `json:"property_name" doc:"Mapped destination property"`
	Confidence   int    `json:"confidence" doc:"Mapper confidence score"`
	UserEdited   bool   `json:"user_edited,omitempty" doc:"Set when the mapping was edited by the user"`
}

type DuplicateResponse struct {
	RecordID  string `json:"record_id" doc:"Existing destination record ID"`
	RecordURL string `json:"record_url,omitempty" doc:"Existing destination record URL"`
	Title     string `json:"title,omitempty" doc:"Existing record title"`
}

type SessionResponse struct {
	ID          string                  `json:"id" doc:"Session ID"`
	State       string                  `json:"state" doc:"Session state"`
	CreatedAt   time.Time               `json:"created_at" doc:"Session creation time"`
	Record      *domain.SourceRecord    `json:"record" doc:"Original bibliographic record"`
	Editions    []domain.Edition        `json:"editions,omitempty" doc:"Alternate editions"`
	Audiobook   *domain.AudiobookRecord `json:"audiobook,omitempty" doc:"Audiobook counterpart, if found"`
	Properties  []PropertyResponse      `json:"properties" doc:"Destination schema snapshot"`
	Mappings    []MappingResponse       `json:"mappings" doc:"Current field mappings"`
	Duplicate   *DuplicateResponse      `json:"duplicate,omitempty" doc:"Detected duplicate, if any"`
	FailureKind string                  `json:"failure_kind,omitempty" doc:"Error code of a failed write"`
}

type SessionOutput struct {
	Body SessionResponse
}

type CandidateResponse struct {
	Source string `json:"source" doc:"Winning source tag, e.g. original or edition:1"`
	Value  any    `json:"value" doc:"Effective value"`
}

type EffectiveValuesResponse struct {
	Values map[string]CandidateResponse `json:"values" doc:"Effective value per semantic field"`
}

type EffectiveValuesOutput struct {
	Body EffectiveValuesResponse
}

type SelectFieldSourceInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Field string `path:"field" doc:"Semantic field"`
	Body  struct {
		Source string `json:"source" doc:"Source tag: original, edition:N, audiobook, or audiobookSummary"`
	}
}

type DuplicateCheckResponse struct {
	State     string             `json:"state" doc:"Session state after the check"`
	Duplicate *DuplicateResponse `json:"duplicate,omitempty" doc:"Detected duplicate, if any"`
}

type DuplicateCheckOutput struct {
	Body DuplicateCheckResponse
}

type ResolveDuplicateInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body struct {
		Decision string `json:"decision" doc:"Duplicate decision: cancel, replace, or keepBoth"`
	}
}

type WriteSessionResponse struct {
	RecordID  string `json:"record_id" doc:"Written destination record ID"`
	RecordURL string `json:"record_url,omitempty" doc:"Written destination record URL"`
	State     string `json:"state" doc:"Final session state"`
}

type WriteSessionOutput struct {
	Body WriteSessionResponse
}

type SessionCategoriesInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Reset bool   `query:"reset" doc:"Reset the selection to the full processed set"`
}

type SessionCategoriesResponse struct {
	Processed []string          `json:"processed" doc:"Selectable canonical categories"`
	Ignored   []string          `json:"ignored,omitempty" doc:"Categories removed by the ignore list"`
	Mapped    map[string]string `json:"mapped,omitempty" doc:"Alias substitutions applied, original to canonical"`
	Selected  []string          `json:"selected" doc:"Current selection"`
}

type SessionCategoriesOutput struct {
	Body SessionCategoriesResponse
}

type SelectSessionCategoriesInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body struct {
		Selected []string `json:"selected" doc:"Categories to include in the write"`
	}
}

// === Handlers ===

func (s *Server) handleOpenSession(ctx context.Context, input *OpenSessionInput) (*SessionOutput, error) {
	session, err := s.services.Reconcile.Open(ctx, service.OpenParams{
		VolumeID: input.Body.VolumeID,
		ISBN:     input.Body.ISBN,
	})
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSession(session)}, nil
}

func (s *Server) handleGetSession(_ context.Context, input *SessionPathInput) (*SessionOutput, error) {
	session, err := s.services.Reconcile.Get(input.ID)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSession(session)}, nil
}

func (s *Server) handleCloseSession(_ context.Context, input *SessionPathInput) (*struct{}, error) {
	if _, err := s.services.Reconcile.Get(input.ID); err != nil {
		return nil, err
	}

	s.services.Reconcile.Close(input.ID)
	return nil, nil
}

func (s *Server) handleGetEffectiveValues(_ context.Context, input *SessionPathInput) (*EffectiveValuesOutput, error) {
	values, err := s.services.Reconcile.EffectiveValues(input.ID)
	if err != nil {
		return nil, err
	}

	return &EffectiveValuesOutput{Body: mapEffectiveValues(values)}, nil
}

func (s *Server) handleSelectFieldSource(_ context.Context, input *SelectFieldSourceInput) (*EffectiveValuesOutput, error) {
	session, err := s.services.Reconcile.Get(input.ID)
	if err != nil {
		return nil, err
	}

	field := domain.SemanticField(input.Field)
	if _, ok := domain.Spec(field); !ok {
		return nil, domainerrors.Validationf("unknown semantic field %q", input.Field)
	}

	src, err := domain.ParseSource(input.Body.Source)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	session.SelectSource(field, src)

	values, err := s.services.Reconcile.EffectiveValues(input.ID)
	if err != nil {
		return nil, err
	}
	return &EffectiveValuesOutput{Body: mapEffectiveValues(values)}, nil
}

func (s *Server) handleCheckDuplicate(ctx context.Context, input *SessionPathInput) (*DuplicateCheckOutput, error) {
	session, match, err := s.services.Reconcile.CheckDuplicate(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := DuplicateCheckResponse{State: string(session.State)}
	if match != nil {
		resp.Duplicate = &DuplicateResponse{
			RecordID:  match.RecordID,
			RecordURL: match.RecordURL,
			Title:     match.Title,
		}
	}
	return &DuplicateCheckOutput{Body: resp}, nil
}

func (s *Server) handleResolveDuplicate(_ context.Context, input *ResolveDuplicateInput) (*SessionOutput, error) {
	session, err := s.services.Reconcile.Resolve(input.ID, domain.DuplicateDecision(input.Body.Decision))
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSession(session)}, nil
}

func (s *Server) handleWriteSession(ctx context.Context, input *SessionPathInput) (*WriteSessionOutput, error) {
	rec, err := s.services.Reconcile.Write(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &WriteSessionOutput{
		Body: WriteSessionResponse{
			RecordID:  rec.ID,
			RecordURL: rec.URL,
			State:     string(reconcile.StateCompleted),
		},
	}, nil
}

func (s *Server) handleGetSessionCategories(ctx context.Context, input *SessionCategoriesInput) (*SessionCategoriesOutput, error) {
	result, selected, err := s.services.Reconcile.SessionCategories(ctx, input.ID, input.Reset)
	if err != nil {
		return nil, err
	}

	return &SessionCategoriesOutput{
		Body: SessionCategoriesResponse{
			Processed: result.Processed,
			Ignored:   result.Ignored,
			Mapped:    result.Mapped,
			Selected:  selected,
		},
	}, nil
}

func (s *Server) handleSelectSessionCategories(ctx context.Context, input *SelectSessionCategoriesInput) (*SessionCategoriesOutput, error) {
	if err := s.services.Reconcile.SelectCategories(ctx, input.ID, input.Body.Selected); err != nil {
		return nil, err
	}

	result, selected, err := s.services.Reconcile.SessionCategories(ctx, input.ID, false)
	if err != nil {
		return nil, err
	}

	return &SessionCategoriesOutput{
		Body: SessionCategoriesResponse{
			Processed: result.Processed,
			Ignored:   result.Ignored,
			Mapped:    result.Mapped,
			Selected:  selected,
		},
	}, nil
}

// === Mapping helpers ===

func mapSession(session *reconcile.Session) SessionResponse {
	properties := make([]PropertyResponse, len(session.Properties))
	for i, p := range session.Properties {
		properties[i] = PropertyResponse{Name: p.Name, Type: string(p.Kind)}
	}

	resp := SessionResponse{
		ID:          session.ID,
		State:       string(session.State),
		CreatedAt:   session.CreatedAt,
		Record:      session.Record,
		Editions:    session.Editions,
		Audiobook:   session.Audiobook,
		Properties:  properties,
		Mappings:    mapMappings(session.Mappings),
		FailureKind: session.FailureKind,
	}

	if session.Duplicate != nil {
		resp.Duplicate = &DuplicateResponse{
			RecordID:  session.Duplicate.RecordID,
			RecordURL: session.Duplicate.RecordURL,
			Title:     session.Duplicate.Title,
		}
	}
	return resp
}

func mapMappings(mappings domain.MappingSet) []MappingResponse {
	out := make([]MappingResponse, len(mappings))
	for i, m := range mappings {
		out[i] = MappingResponse{
			Field:        string(m.Field),
			PropertyName: m.PropertyName,
			Confidence:   m.Confidence,
			UserEdited:   m.UserEdited,
		}
	}
	return out
}

func mapEffectiveValues(values map[domain.SemanticField]domain.CandidateValue) EffectiveValuesResponse {
	out := make(map[string]CandidateResponse, len(values))
	for field, cv := range values {
		out[string(field)] = CandidateResponse{
			Source: cv.Source.String(),
			Value:  cv.Value,
		}
	}
	return EffectiveValuesResponse{Values: out}
}
