// Package routing implements the routing bounded context: venue snapshots,
// the three routing strategies and their presentation.
package routing

import (
	"context"
	"fmt"

	"github.com/fd1az/solana-router/business/routing/app"
	routingDI "github.com/fd1az/solana-router/business/routing/di"
	"github.com/fd1az/solana-router/business/routing/infra"
	"github.com/fd1az/solana-router/internal/asset"
	"github.com/fd1az/solana-router/internal/config"
	"github.com/fd1az/solana-router/internal/di"
	"github.com/fd1az/solana-router/internal/logger"
	"github.com/fd1az/solana-router/internal/monolith"
)

// Module implements the routing bounded context.
type Module struct{}

// RegisterServices registers all routing services with the DI container.
// Router policy is validated here so bad tuning fails at startup.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)

	split, err := app.NewSplitRouter(app.SplitConfig{
		GranularityPct: cfg.Routing.Split.GranularityPct,
		MaxVenues:      cfg.Routing.Split.MaxVenues,
		Allocator:      app.Allocator(cfg.Routing.Split.Allocator),
	})
	if err != nil {
		return fmt.Errorf("split router: %w", err)
	}
	multihop, err := app.NewMultiHopRouter(cfg.Routing.MaxHops, cfg.Routing.MaxHopsLimit)
	if err != nil {
		return fmt.Errorf("multi-hop router: %w", err)
	}

	di.RegisterToken(c, routingDI.SingleVenueRouter, func(di.ServiceRegistry) *app.SingleVenueRouter {
		return app.NewSingleVenueRouter()
	})
	di.RegisterToken(c, routingDI.SplitRouter, func(di.ServiceRegistry) *app.SplitRouter {
		return split
	})
	di.RegisterToken(c, routingDI.MultiHopRouter, func(di.ServiceRegistry) *app.MultiHopRouter {
		return multihop
	})

	// Register VenueProvider - private dependency
	di.RegisterToken(c, routingDI.VenueProvider, func(sr di.ServiceRegistry) infra.Provider {
		cfg := sr.Get("config").(*config.Config)
		reg := sr.Get("assetRegistry").(*asset.Registry)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Source.Kind == config.SourceHTTP {
			provider, err := infra.NewHTTPProvider(cfg.Source, cfg.Routing.Liquidity, reg, log)
			if err != nil {
				panic("failed to create venue source: " + err.Error())
			}
			return provider
		}

		provider, err := infra.NewStaticProvider(cfg.Venues, cfg.Routing.Liquidity, reg)
		if err != nil {
			panic("failed to build venue snapshot: " + err.Error())
		}
		return provider
	})

	// Register RouterService (public)
	di.RegisterToken(c, routingDI.RouterService, func(sr di.ServiceRegistry) *app.RouterService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewRouterService(
			routingDI.GetVenueProvider(sr),
			di.GetToken(sr, routingDI.SingleVenueRouter),
			di.GetToken(sr, routingDI.SplitRouter),
			di.GetToken(sr, routingDI.MultiHopRouter),
			log,
		)
	})

	di.RegisterToken(c, routingDI.Executor, func(sr di.ServiceRegistry) app.Executor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return infra.NewDryRunExecutor(uint16(cfg.Execution.SlippageBps), log)
	})

	di.RegisterToken(c, routingDI.Reporter, func(sr di.ServiceRegistry) *infra.ConsoleReporter {
		return infra.NewConsoleReporter(sr.Get("assetRegistry").(*asset.Registry))
	})

	return nil
}

// Startup builds the venue snapshot and reports its size.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	provider := routingDI.GetVenueProvider(mono.Services())
	snap, err := provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("venue snapshot: %w", err)
	}

	log.Info(ctx, "routing module started",
		"venues", snap.Len(),
		"assets", len(snap.Assets()),
		"source", mono.Config().Source.Kind,
		"max_hops", mono.Config().Routing.MaxHops,
		"split_allocator", mono.Config().Routing.Split.Allocator,
	)
	return nil
}
