package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shelfmark/shelfmark-server/internal/category"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
	"github.com/shelfmark/shelfmark-server/internal/validation"
)

// SettingsService manages the persisted category vocabulary. Edits are
// load-modify-save under a process-wide lock; the settings are shared by
// every session, and a session sees an edit on its next process call.
type SettingsService struct {
	mu        sync.Mutex
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSettingsService creates a settings service.
func NewSettingsService(store *store.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
	}
}

type mergeCategoriesRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required,nefield=From"`
}

// GetCategorySettings returns the current category settings.
func (s *SettingsService) GetCategorySettings(ctx context.Context) (domain.CategorySettings, error) {
	return s.store.GetCategorySettings(ctx)
}

// IgnoreCategory adds a category to the ignore set.
func (s *SettingsService) IgnoreCategory(ctx context.Context, original string) (domain.CategorySettings, error) {
	return s.update(ctx, func(settings *domain.CategorySettings) error {
		category.Ignore(settings, original)
		return nil
	})
}

// UnignoreCategory removes a category from the ignore set.
func (s *SettingsService) UnignoreCategory(ctx context.Context, original string) (domain.CategorySettings, error) {
	return s.update(ctx, func(settings *domain.CategorySettings) error {
		category.Unignore(settings, original)
		return nil
	})
}

// MergeCategories records an alias from one category to another.
func (s *SettingsService) MergeCategories(ctx context.Context, from, to string) (domain.CategorySettings, error) {
	if err := s.validator.Validate(mergeCategoriesRequest{From: from, To: to}); err != nil {
		return domain.CategorySettings{}, err
	}
	return s.update(ctx, func(settings *domain.CategorySettings) error {
		return category.Merge(settings, from, to)
	})
}

// UnmapCategory removes the alias relationships touching a category.
func (s *SettingsService) UnmapCategory(ctx context.Context, name string) (domain.CategorySettings, error) {
	return s.update(ctx, func(settings *domain.CategorySettings) error {
		category.Unmap(settings, name)
		return nil
	})
}

// SetSplitPolicy replaces the category split policy.
func (s *SettingsService) SetSplitPolicy(ctx context.Context, policy domain.SplitPolicy) (domain.CategorySettings, error) {
	return s.update(ctx, func(settings *domain.CategorySettings) error {
		settings.Split = policy
		return nil
	})
}

// ProcessCategories runs the vocabulary pipeline over raw categories
// with the current settings.
func (s *SettingsService) ProcessCategories(ctx context.Context, raw, audiobookGenres []string) (category.Result, error) {
	settings, err := s.store.GetCategorySettings(ctx)
	if err != nil {
		return category.Result{}, err
	}
	return category.Process(raw, settings, audiobookGenres), nil
}

// SuggestMerges surfaces near-duplicate pairs in a canonical category
// list, skipping protected names.
func (s *SettingsService) SuggestMerges(canonical []string) []category.Suggestion {
	return category.SuggestSimilar(canonical)
}

func (s *SettingsService) update(ctx context.Context, mutate func(*domain.CategorySettings) error) (domain.CategorySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.GetCategorySettings(ctx)
	if err != nil {
		return domain.CategorySettings{}, fmt.Errorf("load category settings: %w", err)
	}

	if err := mutate(&settings); err != nil {
		return domain.CategorySettings{}, err
	}

	if err := s.store.SaveCategorySettings(ctx, settings); err != nil {
		return domain.CategorySettings{}, err
	}
	return settings, nil
}
