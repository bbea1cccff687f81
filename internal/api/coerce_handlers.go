package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/notion"
)

func (s *Server) registerCoerceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "previewCoercion",
		Method:      http.MethodPost,
		Path:        "/api/v1/coerce/preview",
		Summary:     "Preview value coercion",
		Description: "Shows the destination payload a raw value would produce for a property type",
		Tags:        []string{"Coercion"},
	}, s.handlePreviewCoercion)

	huma.Register(s.api, huma.Operation{
		OperationID: "resolveDate",
		Method:      http.MethodPost,
		Path:        "/api/v1/dates/resolve",
		Summary:     "Resolve date string",
		Description: "Resolves a raw date string to ISO form, falling back to a bare year",
		Tags:        []string{"Coercion"},
	}, s.handleResolveDate)
}

// === DTOs ===

type PreviewCoercionInput struct {
	Body struct {
		Value any    `json:"value" doc:"Raw value to coerce"`
		Type  string `json:"type" doc:"Destination property type"`
	}
}

type PreviewCoercionResponse struct {
	Accepted bool                  `json:"accepted" doc:"Whether the value produced a payload"`
	Payload  *notion.PropertyValue `json:"payload,omitempty" doc:"Payload the write would carry; absent when the property would be omitted"`
}

type PreviewCoercionOutput struct {
	Body PreviewCoercionResponse
}

type ResolveDateInput struct {
	Body struct {
		Value string `json:"value" doc:"Raw date string"`
	}
}

type ResolveDateResponse struct {
	ISO      string `json:"iso" doc:"Resolved date in YYYY-MM-DD form"`
	YearOnly bool   `json:"year_only,omitempty" doc:"Set when only the year could be recovered"`
	Display  string `json:"display" doc:"User-facing form: bare year for year-only results"`
}

type ResolveDateOutput struct {
	Body ResolveDateResponse
}

// === Handlers ===

var knownPropertyKinds = map[domain.PropertyKind]bool{
	domain.KindTitle:       true,
	domain.KindRichText:    true,
	domain.KindMultiSelect: true,
	domain.KindSelect:      true,
	domain.KindNumber:      true,
	domain.KindDate:        true,
	domain.KindURL:         true,
	domain.KindFiles:       true,
	domain.KindCheckbox:    true,
}

func (s *Server) handlePreviewCoercion(_ context.Context, input *PreviewCoercionInput) (*PreviewCoercionOutput, error) {
	kind := domain.PropertyKind(input.Body.Type)
	if !knownPropertyKinds[kind] {
		return nil, domainerrors.Validationf("unknown property type %q", input.Body.Type)
	}

	payload := s.coercer.Coerce(input.Body.Value, kind)
	return &PreviewCoercionOutput{
		Body: PreviewCoercionResponse{
			Accepted: payload != nil,
			Payload:  payload,
		},
	}, nil
}

func (s *Server) handleResolveDate(_ context.Context, input *ResolveDateInput) (*ResolveDateOutput, error) {
	result, ok := s.coercer.ResolveDate(input.Body.Value)
	if !ok {
		return nil, domainerrors.DateUnresolvable("no date or year recoverable from value")
	}

	return &ResolveDateOutput{
		Body: ResolveDateResponse{
			ISO:      result.ISO,
			YearOnly: result.YearOnly,
			Display:  result.Display(),
		},
	}, nil
}
