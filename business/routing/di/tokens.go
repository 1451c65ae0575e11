// Package di contains dependency injection tokens for the routing context.
package di

import (
	"github.com/fd1az/solana-router/business/routing/app"
	"github.com/fd1az/solana-router/business/routing/infra"
	"github.com/fd1az/solana-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	RouterService = di.NewToken[*app.RouterService]("routing.RouterService")
	Executor      = di.NewToken[app.Executor]("routing.Executor")
	Reporter      = di.NewToken[*infra.ConsoleReporter]("routing.Reporter")
)

// Private dependency tokens - internal to routing module
var (
	VenueProvider     = di.NewToken[infra.Provider]("routing:venueProvider")
	SingleVenueRouter = di.NewToken[*app.SingleVenueRouter]("routing:singleVenueRouter")
	SplitRouter       = di.NewToken[*app.SplitRouter]("routing:splitRouter")
	MultiHopRouter    = di.NewToken[*app.MultiHopRouter]("routing:multiHopRouter")
)

// Helper functions for type-safe access
func GetRouterService(c di.ServiceRegistry) *app.RouterService {
	return di.GetToken(c, RouterService)
}

func GetExecutor(c di.ServiceRegistry) app.Executor {
	return di.GetToken(c, Executor)
}

func GetReporter(c di.ServiceRegistry) *infra.ConsoleReporter {
	return di.GetToken(c, Reporter)
}

func GetVenueProvider(c di.ServiceRegistry) infra.Provider {
	return di.GetToken(c, VenueProvider)
}
