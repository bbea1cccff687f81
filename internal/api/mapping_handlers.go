package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/match"
)

func (s *Server) registerMappingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "suggestMappings",
		Method:      http.MethodPost,
		Path:        "/api/v1/mappings/suggest",
		Summary:     "Suggest field mappings",
		Description: "Maps semantic book fields onto an arbitrary destination property list",
		Tags:        []string{"Mappings"},
	}, s.handleSuggestMappings)

	huma.Register(s.api, huma.Operation{
		OperationID: "editMapping",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/mappings/{field}",
		Summary:     "Edit field mapping",
		Description: "Points a semantic field at a different destination property",
		Tags:        []string{"Mappings"},
	}, s.handleEditMapping)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeMapping",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/mappings/{field}",
		Summary:     "Remove field mapping",
		Description: "Unmaps a semantic field so it is omitted from the write",
		Tags:        []string{"Mappings"},
	}, s.handleRemoveMapping)
}

// === DTOs ===

type SuggestMappingsInput struct {
	Body struct {
		Properties []PropertyResponse `json:"properties" doc:"Destination properties to map against"`
	}
}

type MappingsResponse struct {
	Mappings []MappingResponse `json:"mappings" doc:"Field mappings"`
}

type MappingsOutput struct {
	Body MappingsResponse
}

type EditMappingInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Field string `path:"field" doc:"Semantic field"`
	Body  struct {
		PropertyName string `json:"property_name" doc:"Destination property to map the field to"`
	}
}

type RemoveMappingInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Field string `path:"field" doc:"Semantic field"`
}

// === Handlers ===

func (s *Server) handleSuggestMappings(_ context.Context, input *SuggestMappingsInput) (*MappingsOutput, error) {
	properties := make([]domain.TargetProperty, len(input.Body.Properties))
	for i, p := range input.Body.Properties {
		properties[i] = domain.TargetProperty{Name: p.Name, Kind: domain.PropertyKind(p.Type)}
	}

	suggested := match.Suggest(domain.Registry(), properties)
	return &MappingsOutput{Body: MappingsResponse{Mappings: mapMappings(suggested)}}, nil
}

func (s *Server) handleEditMapping(_ context.Context, input *EditMappingInput) (*MappingsOutput, error) {
	session, err := s.services.Reconcile.Get(input.ID)
	if err != nil {
		return nil, err
	}

	field := domain.SemanticField(input.Field)
	if _, ok := domain.Spec(field); !ok {
		return nil, domainerrors.Validationf("unknown semantic field %q", input.Field)
	}
	if _, ok := session.PropertyKind(input.Body.PropertyName); !ok {
		return nil, domainerrors.Validationf("property %q is not in the destination schema", input.Body.PropertyName)
	}

	session.EditMapping(field, input.Body.PropertyName)
	return &MappingsOutput{Body: MappingsResponse{Mappings: mapMappings(session.Mappings)}}, nil
}

func (s *Server) handleRemoveMapping(_ context.Context, input *RemoveMappingInput) (*MappingsOutput, error) {
	session, err := s.services.Reconcile.Get(input.ID)
	if err != nil {
		return nil, err
	}

	field := domain.SemanticField(input.Field)
	if _, ok := domain.Spec(field); !ok {
		return nil, domainerrors.Validationf("unknown semantic field %q", input.Field)
	}

	session.RemoveMapping(field)
	return &MappingsOutput{Body: MappingsResponse{Mappings: mapMappings(session.Mappings)}}, nil
}
