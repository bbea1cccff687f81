package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/coerce"
	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/metadata/audible"
	"github.com/shelfmark/shelfmark-server/internal/reconcile"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/source"
)

// ProvideCoercer provides the property value coercer.
func ProvideCoercer(i do.Injector) (*coerce.Coercer, error) {
	return coerce.New(), nil
}

// ProvideSelector provides the field source selector.
func ProvideSelector(i do.Injector) (*source.Selector, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return source.New(source.Config{
		PreferEarlierAudiobookDate: cfg.Reconcile.PreferEarlierAudiobookDate,
	}, log), nil
}

// ProvideController provides the reconciliation controller. The store
// doubles as its settings source so category renders always see the
// persisted settings.
func ProvideController(i do.Injector) (*reconcile.Controller, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	destHandle := do.MustInvoke[*DestinationClientHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	coercer := do.MustInvoke[*coerce.Coercer](i)
	selector := do.MustInvoke[*source.Selector](i)

	return reconcile.NewController(destHandle.Client, storeHandle.Store, coercer, selector, cfg.Destination.CollectionID, log), nil
}

// ProvideMetadataService provides the metadata lookup service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	bookHandle := do.MustInvoke[*BookClientHandle](i)
	audibleHandle := do.MustInvoke[*AudibleClientHandle](i)

	region := audible.Region(cfg.Sources.AudibleRegion)
	if !region.Valid() {
		region = audible.RegionUS
		log.Warn("Invalid Audible region, falling back to US",
			"configured", cfg.Sources.AudibleRegion,
		)
	}

	svc := service.NewMetadataService(bookHandle.Client, audibleHandle.Client, region, log.Logger)

	log.Info("Metadata service initialized", "region", region)

	return svc, nil
}

// ProvideSettingsService provides the category settings service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewSettingsService(storeHandle.Store, log.Logger), nil
}

// ProvideReconcileService provides the reconciliation session service.
func ProvideReconcileService(i do.Injector) (*service.ReconcileService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	controller := do.MustInvoke[*reconcile.Controller](i)
	metadataService := do.MustInvoke[*service.MetadataService](i)
	settingsService := do.MustInvoke[*service.SettingsService](i)
	destHandle := do.MustInvoke[*DestinationClientHandle](i)

	return service.NewReconcileService(
		controller,
		metadataService,
		settingsService,
		destHandle.Client,
		cfg.Destination.CollectionID,
		log.Logger,
	), nil
}
