package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCategorySettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/categories",
		Summary:     "Get category settings",
		Description: "Returns the persisted category vocabulary state",
		Tags:        []string{"Categories"},
	}, s.handleGetCategorySettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "ignoreCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/categories/ignore",
		Summary:     "Ignore category",
		Description: "Adds a category to the ignore list",
		Tags:        []string{"Categories"},
	}, s.handleIgnoreCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "unignoreCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/categories/unignore",
		Summary:     "Unignore category",
		Description: "Removes a category from the ignore list",
		Tags:        []string{"Categories"},
	}, s.handleUnignoreCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeCategories",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/categories/merge",
		Summary:     "Merge categories",
		Description: "Aliases one category to another so both resolve to the same canonical name",
		Tags:        []string{"Categories"},
	}, s.handleMergeCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "unmapCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/categories/unmap",
		Summary:     "Unmap category",
		Description: "Removes a category's alias and any aliases pointing at it",
		Tags:        []string{"Categories"},
	}, s.handleUnmapCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSplitPolicy",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/categories/split",
		Summary:     "Set split policy",
		Description: "Controls which separators raw category strings are split on",
		Tags:        []string{"Categories"},
	}, s.handleSetSplitPolicy)

	huma.Register(s.api, huma.Operation{
		OperationID: "processCategories",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/process",
		Summary:     "Process categories",
		Description: "Runs raw category strings through split, alias, and ignore with the current settings",
		Tags:        []string{"Categories"},
	}, s.handleProcessCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestCategoryMerges",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/suggestions",
		Summary:     "Suggest category merges",
		Description: "Surfaces near-duplicate pairs in a canonical category list",
		Tags:        []string{"Categories"},
	}, s.handleSuggestCategoryMerges)
}

// === DTOs ===

type SplitPolicyResponse struct {
	Comma     bool `json:"comma" doc:"Split on commas"`
	Ampersand bool `json:"ampersand" doc:"Split on ampersands"`
	Slash     bool `json:"slash" doc:"Split on slashes"`
}

type CategorySettingsResponse struct {
	Ignored   []string            `json:"ignored" doc:"Ignored categories"`
	Aliases   map[string]string   `json:"aliases" doc:"Alias map, original to canonical"`
	Split     SplitPolicyResponse `json:"split" doc:"Split policy"`
	UpdatedAt time.Time           `json:"updated_at,omitempty" doc:"Last settings change"`
}

type CategorySettingsOutput struct {
	Body CategorySettingsResponse
}

type CategoryNameInput struct {
	Body struct {
		Category string `json:"category" doc:"Category name"`
	}
}

type MergeCategoriesInput struct {
	Body struct {
		From string `json:"from" doc:"Category to alias away"`
		To   string `json:"to" doc:"Canonical category it should resolve to"`
	}
}

type SetSplitPolicyInput struct {
	Body SplitPolicyResponse
}

type ProcessCategoriesInput struct {
	Body struct {
		Categories      []string `json:"categories" doc:"Raw category strings"`
		AudiobookGenres []string `json:"audiobook_genres,omitempty" doc:"Genres contributed by the audiobook record"`
	}
}

type CategoryEntryResponse struct {
	Original   string `json:"original" doc:"Raw category string after splitting"`
	Canonical  string `json:"canonical" doc:"Canonical form after alias resolution"`
	Ignored    bool   `json:"ignored,omitempty" doc:"Set when the category is on the ignore list"`
	MappedFrom string `json:"mapped_from,omitempty" doc:"Original name when an alias was applied"`
}

type ProcessCategoriesResponse struct {
	Processed []string                `json:"processed" doc:"Selectable canonical categories"`
	Ignored   []string                `json:"ignored,omitempty" doc:"Categories removed by the ignore list"`
	Mapped    map[string]string       `json:"mapped,omitempty" doc:"Alias substitutions applied"`
	Entries   []CategoryEntryResponse `json:"entries,omitempty" doc:"Per-category display entries"`
}

type ProcessCategoriesOutput struct {
	Body ProcessCategoriesResponse
}

type SuggestCategoryMergesInput struct {
	Body struct {
		Categories []string `json:"categories" doc:"Canonical categories to compare"`
	}
}

type CategorySuggestionResponse struct {
	A     string `json:"a" doc:"First category of the pair"`
	B     string `json:"b" doc:"Second category of the pair"`
	Score int    `json:"score" doc:"Similarity score"`
}

type SuggestCategoryMergesResponse struct {
	Suggestions []CategorySuggestionResponse `json:"suggestions" doc:"Merge candidates"`
}

type SuggestCategoryMergesOutput struct {
	Body SuggestCategoryMergesResponse
}

// === Handlers ===

func (s *Server) handleGetCategorySettings(ctx context.Context, _ *struct{}) (*CategorySettingsOutput, error) {
	settings, err := s.services.Settings.GetCategorySettings(ctx)
	if err != nil {
		return nil, err
	}

	return &CategorySettingsOutput{Body: mapCategorySettings(settings)}, nil
}

func (s *Server) handleIgnoreCategory(ctx context.Context, input *CategoryNameInput) (*CategorySettingsOutput, error) {
	settings, err := s.services.Settings.IgnoreCategory(ctx, input.Body.Category)
	if err != nil {
		return nil, err
	}

	return &CategorySettingsOutput{Body: mapCategorySettings(settings)}, nil
}

func (s *Server) handleUnignoreCategory(ctx context.Context, input *CategoryNameInput) (*CategorySettingsOutput, error) {
	settings, err := s.services.Settings.UnignoreCategory(ctx, input.Body.Category)
	if err != nil {
		return nil, err
	}

	return &CategorySettingsOutput{Body: mapCategorySettings(settings)}, nil
}

func (s *Server) handleMergeCategories(ctx context.Context, input *MergeCategoriesInput) (*CategorySettingsOutput, error) {
	settings, err := s.services.Settings.MergeCategories(ctx, input.Body.From, input.Body.To)
	if err != nil {
		return nil, err
	}

	return &CategorySettingsOutput{Body: mapCategorySettings(settings)}, nil
}

func (s *Server) handleUnmapCategory(ctx context.Context, input *CategoryNameInput) (*CategorySettingsOutput, error) {
	settings, err := s.services.Settings.UnmapCategory(ctx, input.Body.Category)
	if err != nil {
		return nil, err
	}

	return &CategorySettingsOutput{Body: mapCategorySettings(settings)}, nil
}

func (s *Server) handleSetSplitPolicy(ctx context.Context, input *SetSplitPolicyInput) (*CategorySettingsOutput, error) {
	settings, err := s.services.Settings.SetSplitPolicy(ctx, domain.SplitPolicy{
		Comma:     input.Body.Comma,
		Ampersand: input.Body.Ampersand,
		Slash:     input.Body.Slash,
	})
	if err != nil {
		return nil, err
	}

	return &CategorySettingsOutput{Body: mapCategorySettings(settings)}, nil
}

func (s *Server) handleProcessCategories(ctx context.Context, input *ProcessCategoriesInput) (*ProcessCategoriesOutput, error) {
	result, err := s.services.Settings.ProcessCategories(ctx, input.Body.Categories, input.Body.AudiobookGenres)
	if err != nil {
		return nil, err
	}

	entries := make([]CategoryEntryResponse, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = CategoryEntryResponse{
			Original:   e.Original,
			Canonical:  e.Canonical,
			Ignored:    e.Ignored,
			MappedFrom: e.MappedFrom,
		}
	}

	return &ProcessCategoriesOutput{
		Body: ProcessCategoriesResponse{
			Processed: result.Processed,
			Ignored:   result.Ignored,
			Mapped:    result.Mapped,
			Entries:   entries,
		},
	}, nil
}

func (s *Server) handleSuggestCategoryMerges(_ context.Context, input *SuggestCategoryMergesInput) (*SuggestCategoryMergesOutput, error) {
	suggestions := s.services.Settings.SuggestMerges(input.Body.Categories)

	out := make([]CategorySuggestionResponse, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CategorySuggestionResponse{A: sg.A, B: sg.B, Score: sg.Score}
	}
	return &SuggestCategoryMergesOutput{Body: SuggestCategoryMergesResponse{Suggestions: out}}, nil
}

func mapCategorySettings(settings domain.CategorySettings) CategorySettingsResponse {
	ignored := make([]string, 0, len(settings.Ignored))
	for name := range settings.Ignored {
		ignored = append(ignored, name)
	}
	sort.Strings(ignored)

	aliases := settings.Aliases
	if aliases == nil {
		aliases = map[string]string{}
	}

	return CategorySettingsResponse{
		Ignored: ignored,
		Aliases: aliases,
		Split: SplitPolicyResponse{
			Comma:     settings.Split.Comma,
			Ampersand: settings.Split.Ampersand,
			Slash:     settings.Split.Slash,
		},
		UpdatedAt: settings.UpdatedAt,
	}
}
