package app

import (
	"math/bits"
	"slices"

	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
)

// Allocator selects how the split router searches allocations.
type Allocator string

const (
	// AllocatorSimplex enumerates every allocation on the granularity grid
	// over the top MaxVenues venues.
	AllocatorSimplex Allocator = "simplex"
	// AllocatorGreedy hands out one granularity step at a time to the
	// venue with the highest marginal output. It is exact for concave
	// venues and scales linearly with venue count.
	AllocatorGreedy Allocator = "greedy"
)

// SplitConfig is the split search policy.
type SplitConfig struct {
	// GranularityPct is the allocation step in percent; it must divide 100.
	GranularityPct int
	// MaxVenues caps how many venues enter the simplex search. Venues able
	// to fill the whole amount rank first, by output. The greedy allocator considers every venue.
	MaxVenues int
	Allocator Allocator
}

// DefaultSplitConfig is 10% steps over at most five venues.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{GranularityPct: 10, MaxVenues: 5, Allocator: AllocatorSimplex}
}

// SplitRouter spreads one input across several venues of the same pair.
type SplitRouter struct {
	cfg SplitConfig
}

// NewSplitRouter validates cfg and creates a SplitRouter.
func NewSplitRouter(cfg SplitConfig) (*SplitRouter, error) {
	g := cfg.GranularityPct
	if g < 1 || g > 100 || 100%g != 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContextf("split granularity %d%% does not divide 100", g))
	}
	if cfg.MaxVenues < 2 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContextf("split max venues %d, need at least 2", cfg.MaxVenues))
	}
	switch cfg.Allocator {
	case AllocatorSimplex, AllocatorGreedy:
	case "":
		cfg.Allocator = AllocatorSimplex
	default:
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContextf("unknown split allocator %q", cfg.Allocator))
	}
	return &SplitRouter{cfg: cfg}, nil
}

// Config returns the router's policy.
func (r *SplitRouter) Config() SplitConfig { return r.cfg }

// FindBest returns the allocation with the largest total output. Every
// venue on the pair is eligible; allocations with a leg the venue cannot
// absorb are skipped. With one eligible venue it returns the single-venue
// route.
func (r *SplitRouter) FindBest(s domain.Snapshot, req domain.Request) (*domain.Route, error) {
	if err := checkRequest(s, req); err != nil {
		return nil, err
	}

	cands, err := splitCandidates(s, req)
	if err != nil {
		return nil, err
	}
	switch {
	case len(cands) == 0:
		return nil, noRoute(req, domain.StrategySplit)
	case len(cands) == 1 && cands[0].full:
		return domain.NewSingleRoute(cands[0].quote), nil
	case len(cands) == 1:
		return nil, noRoute(req, domain.StrategySplit)
	}

	if r.cfg.Allocator == AllocatorSimplex && len(cands) > r.cfg.MaxVenues {
		cands = cands[:r.cfg.MaxVenues]
	}
	book := newLegBook(req.AmountIn, 100/r.cfg.GranularityPct, cands)

	var parts []int
	if r.cfg.Allocator == AllocatorGreedy {
		parts = book.greedy()
	} else {
		parts = book.simplex()
	}
	if parts == nil {
		return nil, noRoute(req, domain.StrategySplit)
	}

	legs, _, ok := book.evaluate(parts, nil)
	if !ok || len(legs) == 0 {
		return nil, noRoute(req, domain.StrategySplit)
	}
	return domain.NewSplitRoute(legs)
}

// splitCandidate is a venue on the pair. full is set when it can also
// take the whole amount alone, in which case quote holds that fill.
type splitCandidate struct {
	candidate
	full bool
}

// splitCandidates returns every tradeable venue on req's pair. Venues that
// can absorb the full amount come first, best output first; the rest
// follow in snapshot order and only take smaller legs.
func splitCandidates(s domain.Snapshot, req domain.Request) ([]splitCandidate, error) {
	var out []splitCandidate
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		dir, ok := v.DirectionFor(req.TokenIn, req.TokenOut)
		if !ok || !v.CanTrade(dir) {
			continue
		}
		c := splitCandidate{candidate: candidate{index: i, venue: v, dir: dir}}
		q, err := v.Quote(req.AmountIn, dir)
		switch {
		case err == nil:
			c.quote, c.full = q, true
		case !apperror.IsVenueLocal(err):
			return nil, err
		}
		out = append(out, c)
	}

	slices.SortStableFunc(out, func(a, b splitCandidate) int {
		switch {
		case a.full != b.full:
			if a.full {
				return -1
			}
			return 1
		case a.quote.AmountOut > b.quote.AmountOut:
			return -1
		case a.quote.AmountOut < b.quote.AmountOut:
			return 1
		}
		return 0
	})
	return out, nil
}

type legKey struct {
	cand   int
	amount uint64
}

type legQuote struct {
	quote domain.Quote
	ok    bool
}

// legBook prices allocations over a fixed candidate list. Each
// (venue, amount) pair is quoted at most once per request.
type legBook struct {
	total uint64
	units int
	cands []splitCandidate
	cache map[legKey]legQuote
}

func newLegBook(total uint64, units int, cands []splitCandidate) *legBook {
	return &legBook{
		total: total,
		units: units,
		cands: cands,
		cache: make(map[legKey]legQuote, len(cands)*(units+1)),
	}
}

// amount is total * parts / units, floored.
func (b *legBook) amount(parts int) uint64 {
	hi, lo := bits.Mul64(b.total, uint64(parts))
	q, _ := bits.Div64(hi, lo, uint64(b.units))
	return q
}

func (b *legBook) quote(cand int, amount uint64) (domain.Quote, bool) {
	k := legKey{cand: cand, amount: amount}
	if lq, ok := b.cache[k]; ok {
		return lq.quote, lq.ok
	}
	c := b.cands[cand]
	q, err := c.venue.Quote(amount, c.dir)
	lq := legQuote{quote: q, ok: err == nil}
	b.cache[k] = lq
	return lq.quote, lq.ok
}

// evaluate prices an allocation given in grid units per candidate. The
// last funded candidate absorbs the rounding remainder so the legs sum to
// exactly total. Legs are appended to buf.
func (b *legBook) evaluate(parts []int, buf []domain.Quote) ([]domain.Quote, uint64, bool) {
	last := -1
	for i, p := range parts {
		if p > 0 {
			last = i
		}
	}
	if last < 0 {
		return buf, 0, false
	}

	var allocated, total uint64
	for i, p := range parts {
		if p == 0 {
			continue
		}
		amt := b.amount(p)
		if i == last {
			amt = b.total - allocated
		}
		allocated += amt
		if amt == 0 {
			continue
		}

		q, ok := b.quote(i, amt)
		if !ok {
			return buf, 0, false
		}
		var carry uint64
		if total, carry = bits.Add64(total, q.AmountOut, 0); carry != 0 {
			return buf, 0, false
		}
		buf = append(buf, q)
	}
	return buf, total, true
}

// simplex walks every composition of units into len(cands) parts,
// starting from everything on the top-ranked venue. Ties keep the first
// allocation found unless a later one needs fewer legs.
func (b *legBook) simplex() []int {
	k := len(b.cands)
	parts := make([]int, k)
	var (
		best      []int
		bestTotal uint64
		bestLegs  int
	)
	buf := make([]domain.Quote, 0, k)

	var walk func(i, left int)
	walk = func(i, left int) {
		if i == k-1 {
			parts[i] = left
			legs, total, ok := b.evaluate(parts, buf[:0])
			if !ok {
				return
			}
			if best == nil || total > bestTotal || (total == bestTotal && len(legs) < bestLegs) {
				best = slices.Clone(parts)
				bestTotal, bestLegs = total, len(legs)
			}
			return
		}
		for p := left; p >= 0; p-- {
			parts[i] = p
			walk(i+1, left-p)
		}
	}
	walk(0, b.units)
	return best
}

// greedy awards each grid step to the venue whose output grows the most
// from it. The result is never worse than routing everything through the
// top-ranked venue when that venue can take it all.
func (b *legBook) greedy() []int {
	k := len(b.cands)
	parts := make([]int, k)
	outs := make([]uint64, k)

	for step := 0; step < b.units; step++ {
		pick := -1
		var pickGain, pickOut uint64
		for i := range parts {
			q, ok := b.quote(i, b.amount(parts[i]+1))
			if !ok || q.AmountOut < outs[i] {
				continue
			}
			if gain := q.AmountOut - outs[i]; pick < 0 || gain > pickGain {
				pick, pickGain, pickOut = i, gain, q.AmountOut
			}
		}
		if pick < 0 {
			break
		}
		parts[pick]++
		outs[pick] = pickOut
	}

	whole := make([]int, k)
	whole[0] = b.units

	_, greedyTotal, greedyOK := b.evaluate(parts, nil)
	_, wholeTotal, wholeOK := b.evaluate(whole, nil)
	switch {
	case greedyOK && (!wholeOK || greedyTotal > wholeTotal):
		return parts
	case wholeOK:
		return whole
	}
	return nil
}
