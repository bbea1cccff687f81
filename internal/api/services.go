package api

import (
	"github.com/shelfmark/shelfmark-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Reconcile *service.ReconcileService // Reconciliation session lifecycle
	Settings  *service.SettingsService  // Category vocabulary settings
	Metadata  *service.MetadataService  // Bibliographic and audiobook lookups
}
