package cmd

import (
	"context"
	"fmt"
	"log"

	"texture-manager/core/asset"
	"texture-manager/core/catalog"
	"texture-manager/core/config"
	"texture-manager/core/database"
	"texture-manager/core/device"
	"texture-manager/core/logger"
	"texture-manager/core/metrics"
	"texture-manager/core/storage"
	"texture-manager/core/texture"

	"go.uber.org/zap"
)

// engine is the texture pipeline shared by the commands.
type engine struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Client
	host     *device.HostContext
	provider *asset.Provider
	manager  *texture.Manager
	repo     *catalog.Repository
}

// bootstrap loads the configuration and builds the logger, exiting on failure.
func bootstrap() (*config.Config, *zap.Logger) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, logg
}

// newEngine wires storage, the host execution context, the decoder and the manager. The
// catalog is optional: without a database repo is nil.
func newEngine(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*engine, error) {
	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	var rm texture.Metrics
	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		rm = metrics.NewResidencyMetrics(reg)
	}

	host := device.NewHostContext(cfg.Device, logg.Named("device"))
	if reg := metrics.Registry(); reg != nil {
		metrics.RegisterMemoryCollector(reg, host)
	}

	provider := asset.NewProvider(store, cfg.Storage.Bucket, logg.Named("asset"))
	manager := texture.NewManager(host, provider, texture.Options{
		Config:  cfg.Residency,
		Logger:  logg.Named("residency"),
		Metrics: rm,
	})

	e := &engine{
		cfg:      cfg,
		logger:   logg,
		store:    store,
		host:     host,
		provider: provider,
		manager:  manager,
	}

	if db, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional catalog database connection failed", zap.Error(err))
	} else {
		repo := catalog.NewRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			logg.Warn("Catalog migration failed", zap.Error(err))
		} else {
			e.repo = repo
			logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
		}
	}
	return e, nil
}

// Close stops the manager and the host context.
func (e *engine) Close() {
	e.manager.Close()
	e.host.Close()
}
