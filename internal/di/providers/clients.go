package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/metadata/audible"
	"github.com/shelfmark/shelfmark-server/internal/metadata/googlebooks"
	"github.com/shelfmark/shelfmark-server/internal/notion"
)

// DestinationClientHandle wraps the destination client with shutdown capability.
type DestinationClientHandle struct {
	*notion.Client
}

// Shutdown implements do.Shutdownable.
func (h *DestinationClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideDestinationClient provides the destination database client.
func ProvideDestinationClient(i do.Injector) (*DestinationClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := notion.New(cfg.Destination.Token, log.Logger)
	if cfg.Destination.BaseURL != "" {
		client = client.WithBaseURL(cfg.Destination.BaseURL)
	}

	log.Info("Destination client initialized", "collection_id", cfg.Destination.CollectionID)

	return &DestinationClientHandle{Client: client}, nil
}

// BookClientHandle wraps the book catalog client with shutdown capability.
type BookClientHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *BookClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideBookClient provides the book catalog API client.
func ProvideBookClient(i do.Injector) (*BookClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := googlebooks.New(cfg.Sources.GoogleBooksAPIKey, log.Logger)
	log.Info("Book catalog client initialized", "keyed", cfg.Sources.GoogleBooksAPIKey != "")

	return &BookClientHandle{Client: client}, nil
}

// AudibleClientHandle wraps the Audible client with shutdown capability.
type AudibleClientHandle struct {
	*audible.Client
}

// Shutdown implements do.Shutdownable.
func (h *AudibleClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideAudibleClient provides the Audible API client.
func ProvideAudibleClient(i do.Injector) (*AudibleClientHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	client := audible.New(log.Logger)
	log.Info("Audible client initialized")

	return &AudibleClientHandle{Client: client}, nil
}
