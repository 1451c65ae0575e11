// Package app contains the routing strategies and the service that runs
// them against a venue snapshot.
package app

import (
	"slices"

	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
)

// candidate is one venue that trades the requested pair, quoted for the
// full request amount.
type candidate struct {
	index int // position in the snapshot
	venue domain.Venue
	dir   domain.Direction
	quote domain.Quote
}

// directCandidates returns every venue that trades req's pair and can
// absorb the full amount, in snapshot order. Venue-local failures drop
// the venue; anything else is returned.
func directCandidates(s domain.Snapshot, req domain.Request) ([]candidate, error) {
	var out []candidate
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		dir, ok := v.DirectionFor(req.TokenIn, req.TokenOut)
		if !ok {
			continue
		}
		q, err := v.Quote(req.AmountIn, dir)
		if err != nil {
			if apperror.IsVenueLocal(err) {
				continue
			}
			return nil, err
		}
		out = append(out, candidate{index: i, venue: v, dir: dir, quote: q})
	}
	return out, nil
}

func checkRequest(s domain.Snapshot, req domain.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if s.IsEmpty() {
		return apperror.New(apperror.CodeInvalidRequest, apperror.WithContext("snapshot has no venues"))
	}
	return nil
}

func noRoute(req domain.Request, strategy domain.Strategy) error {
	return apperror.New(apperror.CodeNoRouteFound,
		apperror.WithContextf("%s: %s -> %s amount=%d", strategy, req.TokenIn.Short(), req.TokenOut.Short(), req.AmountIn))
}

// SingleVenueRouter picks the one venue with the highest output.
type SingleVenueRouter struct{}

// NewSingleVenueRouter creates a SingleVenueRouter.
func NewSingleVenueRouter() *SingleVenueRouter {
	return &SingleVenueRouter{}
}

// FindBest returns the direct route with the largest output. Ties go to
// the venue that appears first in the snapshot.
func (r *SingleVenueRouter) FindBest(s domain.Snapshot, req domain.Request) (*domain.Route, error) {
	if err := checkRequest(s, req); err != nil {
		return nil, err
	}

	cands, err := directCandidates(s, req)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, noRoute(req, domain.StrategySingle)
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if c.quote.AmountOut > best.quote.AmountOut {
			best = c
		}
	}
	return domain.NewSingleRoute(best.quote), nil
}

// AllRoutes returns every eligible direct route, best output first.
// Equal outputs keep snapshot order.
func (r *SingleVenueRouter) AllRoutes(s domain.Snapshot, req domain.Request) ([]*domain.Route, error) {
	if err := checkRequest(s, req); err != nil {
		return nil, err
	}

	cands, err := directCandidates(s, req)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, noRoute(req, domain.StrategySingle)
	}

	routes := make([]*domain.Route, len(cands))
	for i, c := range cands {
		routes[i] = domain.NewSingleRoute(c.quote)
	}
	slices.SortStableFunc(routes, func(a, b *domain.Route) int {
		switch {
		case a.AmountOut() > b.AmountOut():
			return -1
		case a.AmountOut() < b.AmountOut():
			return 1
		}
		return 0
	})
	return routes, nil
}
