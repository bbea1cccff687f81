// Package di provides dependency injection configuration for the Shelfmark server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/coerce"
	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/di/providers"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/reconcile"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/source"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Upstream clients
	do.Provide(injector, providers.ProvideDestinationClient)
	do.Provide(injector, providers.ProvideBookClient)
	do.Provide(injector, providers.ProvideAudibleClient)

	// Reconciliation core
	do.Provide(injector, providers.ProvideCoercer)
	do.Provide(injector, providers.ProvideSelector)
	do.Provide(injector, providers.ProvideController)

	// Business services
	do.Provide(injector, providers.ProvideMetadataService)
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideReconcileService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.DestinationClientHandle](injector)
	_ = do.MustInvoke[*providers.BookClientHandle](injector)
	_ = do.MustInvoke[*providers.AudibleClientHandle](injector)
	_ = do.MustInvoke[*coerce.Coercer](injector)
	_ = do.MustInvoke[*source.Selector](injector)
	_ = do.MustInvoke[*reconcile.Controller](injector)
	_ = do.MustInvoke[*service.MetadataService](injector)
	_ = do.MustInvoke[*service.SettingsService](injector)
	_ = do.MustInvoke[*service.ReconcileService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
