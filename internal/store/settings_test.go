package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetCategorySettings_Defaults(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.GetCategorySettings(context.Background())
	require.NoError(t, err)

	assert.Empty(t, settings.Ignored)
	assert.Empty(t, settings.Aliases)
	assert.True(t, settings.Split.Comma)
	assert.False(t, settings.Split.Ampersand)
}

func TestSaveAndGetCategorySettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings := domain.NewCategorySettings()
	settings.Ignored["Juvenile"] = true
	settings.Aliases["Sci-Fi"] = "Science Fiction"
	settings.Split.Ampersand = true

	require.NoError(t, s.SaveCategorySettings(ctx, settings))

	loaded, err := s.GetCategorySettings(ctx)
	require.NoError(t, err)

	assert.True(t, loaded.Ignored["Juvenile"])
	assert.Equal(t, "Science Fiction", loaded.Aliases["Sci-Fi"])
	assert.True(t, loaded.Split.Ampersand)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestGetCategorySettings_CancelledContext(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetCategorySettings(ctx)
	assert.Error(t, err)
}
