package infra

import (
	"context"

	"github.com/fd1az/solana-router/business/routing/app"
	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/logger"
)

// DryRunExecutor builds the execution plan for a route and logs it
// without submitting anything.
type DryRunExecutor struct {
	slippageBps uint16
	log         logger.LoggerInterface
}

// NewDryRunExecutor creates a DryRunExecutor with the given tolerance.
func NewDryRunExecutor(slippageBps uint16, log logger.LoggerInterface) *DryRunExecutor {
	return &DryRunExecutor{slippageBps: slippageBps, log: log}
}

// Execute returns the plan the route would be submitted with.
func (e *DryRunExecutor) Execute(ctx context.Context, route *domain.Route) (*app.ExecutionPlan, error) {
	if route == nil {
		return nil, apperror.New(apperror.CodeInvalidRequest, apperror.WithContext("nil route"))
	}

	plan := &app.ExecutionPlan{
		RouteID:      route.IDHex(),
		Strategy:     route.Strategy(),
		Steps:        route.Hops(),
		AmountIn:     route.AmountIn(),
		QuotedOut:    route.AmountOut(),
		MinAmountOut: route.MinAmountOut(e.slippageBps),
		SlippageBps:  e.slippageBps,
	}

	for i, step := range plan.Steps {
		e.log.Info(ctx, "dry-run swap",
			"route_id", plan.RouteID,
			"step", i+1,
			"venue", step.Venue.ID(),
			"dex", step.Venue.Dex(),
			"address", step.Venue.Address().String(),
			"token_in", step.TokenIn().Short(),
			"token_out", step.TokenOut().Short(),
			"amount_in", step.AmountIn,
			"amount_out", step.AmountOut,
		)
	}
	e.log.Info(ctx, "dry-run plan ready",
		"route_id", plan.RouteID,
		"strategy", plan.Strategy,
		"quoted_out", plan.QuotedOut,
		"min_out", plan.MinAmountOut,
		"slippage_bps", plan.SlippageBps,
	)
	return plan, nil
}
