package app

import (
	"context"

	"github.com/fd1az/solana-router/business/routing/domain"
)

// VenueProvider supplies frozen venue snapshots. Freshness is the
// provider's concern; routers never check staleness.
type VenueProvider interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Executor turns a winning route into on-ledger operations. Quotes are
// advisory: the executor owns what happens when execution returns less
// than quoted.
type Executor interface {
	Execute(ctx context.Context, route *domain.Route) (*ExecutionPlan, error)
}

// Reporter presents routing results.
type Reporter interface {
	Report(result *Result)
}

// ExecutionPlan is what an executor would submit for a route.
type ExecutionPlan struct {
	RouteID      string
	Strategy     domain.Strategy
	Steps        []domain.Quote
	AmountIn     uint64
	QuotedOut    uint64
	MinAmountOut uint64
	SlippageBps  uint16
	Submitted    bool
}
