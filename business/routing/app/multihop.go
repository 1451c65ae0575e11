package app

import (
	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
)

const (
	// DefaultMaxHops is the hop budget when none is configured.
	DefaultMaxHops = 2
	// DefaultMaxHopsLimit bounds any configured or requested hop budget.
	DefaultMaxHopsLimit = 3
)

// MultiHopRouter searches paths through intermediate assets.
type MultiHopRouter struct {
	maxHops int
	limit   int
}

// NewMultiHopRouter creates a router with a default hop budget of maxHops,
// never exceeding limit.
func NewMultiHopRouter(maxHops, limit int) (*MultiHopRouter, error) {
	if limit < 1 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContextf("max hops limit %d", limit))
	}
	if maxHops < 1 || maxHops > limit {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContextf("max hops %d outside [1, %d]", maxHops, limit))
	}
	return &MultiHopRouter{maxHops: maxHops, limit: limit}, nil
}

// MaxHops is the default hop budget.
func (r *MultiHopRouter) MaxHops() int { return r.maxHops }

// FindBest searches with the router's default hop budget.
func (r *MultiHopRouter) FindBest(s domain.Snapshot, req domain.Request) (*domain.Route, error) {
	return r.FindBestWithin(s, req, r.maxHops)
}

// FindBestWithin returns the path of at most maxHops hops with the largest
// final output. Ties go to fewer hops, then lower compounded impact, then
// discovery order.
func (r *MultiHopRouter) FindBestWithin(s domain.Snapshot, req domain.Request, maxHops int) (*domain.Route, error) {
	if maxHops < 1 || maxHops > r.limit {
		return nil, apperror.New(apperror.CodeInvalidRequest,
			apperror.WithContextf("max hops %d outside [1, %d]", maxHops, r.limit))
	}
	if err := checkRequest(s, req); err != nil {
		return nil, err
	}

	g := domain.NewGraph(s)
	var best *domain.Route
	for _, p := range g.SimplePaths(req.TokenIn, req.TokenOut, maxHops) {
		route, err := Simulate(s, p, req.AmountIn)
		if err != nil {
			if apperror.IsVenueLocal(err) {
				continue
			}
			return nil, err
		}
		if best == nil || domain.Better(route, best) {
			best = route
		}
	}

	if best == nil {
		return nil, noRoute(req, domain.StrategyMultiHop)
	}
	return best, nil
}

// Simulate executes p hop by hop: the first hop sells amountIn and every
// later hop sells exactly what the previous hop returned. Any hop that
// fails its liquidity check fails the whole path.
func Simulate(s domain.Snapshot, p domain.Path, amountIn uint64) (*domain.Route, error) {
	hops := make([]domain.Quote, 0, len(p))
	amount := amountIn
	for _, e := range p {
		q, err := s.At(e.Venue).Quote(amount, e.Direction)
		if err != nil {
			return nil, err
		}
		hops = append(hops, q)
		amount = q.AmountOut
	}
	return domain.NewMultiHopRoute(hops)
}
