package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

const keyCategorySettings = "settings:categories"

// GetCategorySettings retrieves the persisted category vocabulary state.
// Returns empty settings with the default split policy if none exist.
func (s *Store) GetCategorySettings(ctx context.Context) (domain.CategorySettings, error) {
	var settings domain.CategorySettings

	err := s.get(ctx, []byte(keyCategorySettings), &settings)
	if isNotFound(err) {
		return domain.NewCategorySettings(), nil
	}
	if err != nil {
		return domain.CategorySettings{}, fmt.Errorf("get category settings: %w", err)
	}

	if settings.Ignored == nil {
		settings.Ignored = make(map[string]bool)
	}
	if settings.Aliases == nil {
		settings.Aliases = make(map[string]string)
	}
	return settings, nil
}

// SaveCategorySettings persists the category vocabulary state.
func (s *Store) SaveCategorySettings(ctx context.Context, settings domain.CategorySettings) error {
	settings.UpdatedAt = time.Now()
	if err := s.set(ctx, []byte(keyCategorySettings), settings); err != nil {
		return fmt.Errorf("save category settings: %w", err)
	}
	return nil
}
