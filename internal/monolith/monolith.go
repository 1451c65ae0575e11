// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"

	"github.com/fd1az/solana-router/internal/asset"
	"github.com/fd1az/solana-router/internal/config"
	"github.com/fd1az/solana-router/internal/di"
	"github.com/fd1az/solana-router/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	container     di.Container
}

// New creates a new Monolith instance. The asset registry holds the
// well-known mints plus every asset listed in configuration.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	assetRegistry, err := NewAssetRegistry(cfg.Assets)
	if err != nil {
		return nil, err
	}

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("assetRegistry", assetRegistry)

	return &app{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		container:     container,
	}, nil
}

// NewAssetRegistry extends the default registry with configured assets.
// A configured mint that is already well known is skipped.
func NewAssetRegistry(assets []config.AssetConfig) (*asset.Registry, error) {
	reg := asset.DefaultRegistry()
	for _, ac := range assets {
		id, err := asset.ParseAssetID(ac.Mint)
		if err != nil {
			return nil, fmt.Errorf("asset %s: invalid mint %q: %w", ac.Symbol, ac.Mint, err)
		}
		if reg.Has(id) {
			continue
		}
		if ac.Decimals > 30 {
			return nil, fmt.Errorf("asset %s: decimals %d out of range", ac.Symbol, ac.Decimals)
		}
		name := ac.Name
		if name == "" {
			name = ac.Symbol
		}
		if err := reg.Add(asset.NewAssetWithName(id, ac.Symbol, name, ac.Decimals)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close releases shared resources. The router holds none today.
func (a *app) Close() error {
	return nil
}
