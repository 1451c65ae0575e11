package domain

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/holiman/uint256"

	pricing "github.com/fd1az/solana-router/business/pricing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
)

// Strategy tags how a route was constructed.
type Strategy string

const (
	StrategySingle   Strategy = "single"
	StrategySplit    Strategy = "split"
	StrategyMultiHop Strategy = "multihop"
)

// Strategies lists every strategy in the order they are reported.
var Strategies = []Strategy{StrategySingle, StrategySplit, StrategyMultiHop}

// ParseStrategy maps a config or flag value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategySingle, StrategySplit, StrategyMultiHop:
		return st, nil
	}
	return "", apperror.New(apperror.CodeInvalidRequest, apperror.WithContextf("unknown strategy %q", s))
}

// Route is an immutable routing result. For StrategySplit the hops are
// parallel legs over the same pair; otherwise they execute in sequence.
type Route struct {
	strategy       Strategy
	tokenIn        asset.AssetID
	tokenOut       asset.AssetID
	hops           []Quote
	amountIn       uint64
	amountOut      uint64
	priceImpactBps uint16
}

// NewSingleRoute wraps one venue quote.
func NewSingleRoute(q Quote) *Route {
	return &Route{
		strategy:       StrategySingle,
		tokenIn:        q.TokenIn(),
		tokenOut:       q.TokenOut(),
		hops:           []Quote{q},
		amountIn:       q.AmountIn,
		amountOut:      q.AmountOut,
		priceImpactBps: q.PriceImpactBps,
	}
}

// NewSplitRoute combines parallel legs over the same pair. The route's
// impact is the input-weighted mean of the legs' impacts.
func NewSplitRoute(legs []Quote) (*Route, error) {
	if len(legs) == 0 {
		return nil, apperror.New(apperror.CodeInvalidRequest, apperror.WithContext("split route without legs"))
	}

	tokenIn, tokenOut := legs[0].TokenIn(), legs[0].TokenOut()
	var totalIn, totalOut uint64
	weighted := new(uint256.Int)

	for i, leg := range legs {
		if !leg.TokenIn().Equals(tokenIn) || !leg.TokenOut().Equals(tokenOut) {
			return nil, apperror.New(apperror.CodeInvalidRequest,
				apperror.WithContextf("split leg %d trades a different pair", i))
		}

		var carry uint64
		if totalIn, carry = bits.Add64(totalIn, leg.AmountIn, 0); carry != 0 {
			return nil, apperror.New(apperror.CodeArithmeticOverflow, apperror.WithContext("split total input"))
		}
		if totalOut, carry = bits.Add64(totalOut, leg.AmountOut, 0); carry != 0 {
			return nil, apperror.New(apperror.CodeArithmeticOverflow, apperror.WithContext("split total output"))
		}

		w := new(uint256.Int).Mul(uint256.NewInt(uint64(leg.PriceImpactBps)), uint256.NewInt(leg.AmountIn))
		weighted.Add(weighted, w)
	}

	var impact uint16
	if totalIn > 0 {
		impact = uint16(weighted.Div(weighted, uint256.NewInt(totalIn)).Uint64())
	}

	return &Route{
		strategy:       StrategySplit,
		tokenIn:        tokenIn,
		tokenOut:       tokenOut,
		hops:           append([]Quote(nil), legs...),
		amountIn:       totalIn,
		amountOut:      totalOut,
		priceImpactBps: impact,
	}, nil
}

// NewMultiHopRoute chains sequential hops. Each hop must sell what the
// previous one bought, in exactly the amount it bought.
func NewMultiHopRoute(hops []Quote) (*Route, error) {
	if len(hops) == 0 {
		return nil, apperror.New(apperror.CodeInvalidRequest, apperror.WithContext("multi-hop route without hops"))
	}

	impacts := make([]uint16, len(hops))
	for i, h := range hops {
		impacts[i] = h.PriceImpactBps
		if i == 0 {
			continue
		}
		prev := hops[i-1]
		if !prev.TokenOut().Equals(h.TokenIn()) {
			return nil, apperror.New(apperror.CodeInvalidRequest,
				apperror.WithContextf("hop %d sells %s, previous hop bought %s", i, h.TokenIn().Short(), prev.TokenOut().Short()))
		}
		if prev.AmountOut != h.AmountIn {
			return nil, apperror.New(apperror.CodeInvalidRequest,
				apperror.WithContextf("hop %d input %d != previous output %d", i, h.AmountIn, prev.AmountOut))
		}
	}

	last := hops[len(hops)-1]
	return &Route{
		strategy:       StrategyMultiHop,
		tokenIn:        hops[0].TokenIn(),
		tokenOut:       last.TokenOut(),
		hops:           append([]Quote(nil), hops...),
		amountIn:       hops[0].AmountIn,
		amountOut:      last.AmountOut,
		priceImpactBps: CompoundImpactBps(impacts...),
	}, nil
}

// CompoundImpactBps combines sequential impacts multiplicatively:
// 1 - prod(1 - i_k). Each step keeps the retained fraction rounded up so
// the result rounds toward zero.
func CompoundImpactBps(impacts ...uint16) uint16 {
	retained := pricing.BasisPoints
	for _, i := range impacts {
		if uint64(i) >= pricing.BasisPoints {
			return uint16(pricing.BasisPoints)
		}
		num := retained * (pricing.BasisPoints - uint64(i))
		retained = (num + pricing.BasisPoints - 1) / pricing.BasisPoints
	}
	return uint16(pricing.BasisPoints - retained)
}

func (r *Route) Strategy() Strategy { return r.strategy }
func (r *Route) TokenIn() asset.AssetID { return r.tokenIn }
func (r *Route) TokenOut() asset.AssetID { return r.tokenOut }
func (r *Route) AmountIn() uint64 { return r.amountIn }
func (r *Route) AmountOut() uint64 { return r.amountOut }
func (r *Route) PriceImpactBps() uint16 { return r.priceImpactBps }

// Hops returns a copy of the route's hops (legs, for split routes).
func (r *Route) Hops() []Quote {
	return append([]Quote(nil), r.hops...)
}

// HopCount is the number of hops, or legs for split routes.
func (r *Route) HopCount() int {
	return len(r.hops)
}

// IsDirect reports whether the route trades through a single venue.
func (r *Route) IsDirect() bool {
	return len(r.hops) == 1
}

// MinAmountOut applies a slippage tolerance to the quoted output.
func (r *Route) MinAmountOut(slippageBps uint16) uint64 {
	if uint64(slippageBps) >= pricing.BasisPoints {
		return 0
	}
	v := new(uint256.Int).Mul(uint256.NewInt(r.amountOut), uint256.NewInt(pricing.BasisPoints-uint64(slippageBps)))
	return v.Div(v, uint256.NewInt(pricing.BasisPoints)).Uint64()
}

// ID is a content fingerprint: two routes with the same strategy, venues,
// directions and amounts share an ID.
func (r *Route) ID() uint64 {
	d := xxhash.New()
	var buf [8]byte

	_, _ = d.WriteString(string(r.strategy))
	mint := r.tokenIn.Mint()
	_, _ = d.Write(mint[:])
	mint = r.tokenOut.Mint()
	_, _ = d.Write(mint[:])

	for _, h := range r.hops {
		_, _ = d.WriteString(h.Venue.ID())
		_, _ = d.Write([]byte{byte(h.Direction)})
		binary.LittleEndian.PutUint64(buf[:], h.AmountIn)
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], h.AmountOut)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// IDHex is ID formatted for logs.
func (r *Route) IDHex() string {
	return fmt.Sprintf("%016x", r.ID())
}

func (r *Route) String() string {
	return fmt.Sprintf("%s route %s: %d -> %d (%d hops, %d bps)",
		r.strategy, r.IDHex(), r.amountIn, r.amountOut, len(r.hops), r.priceImpactBps)
}

// CompareRoutes orders routes best first: higher output, then fewer hops,
// then lower price impact. Usable directly with slices.SortStableFunc.
func CompareRoutes(a, b *Route) int {
	switch {
	case a.amountOut != b.amountOut:
		if a.amountOut > b.amountOut {
			return -1
		}
		return 1
	case len(a.hops) != len(b.hops):
		if len(a.hops) < len(b.hops) {
			return -1
		}
		return 1
	case a.priceImpactBps != b.priceImpactBps:
		if a.priceImpactBps < b.priceImpactBps {
			return -1
		}
		return 1
	}
	return 0
}

// Better reports whether a strictly outranks b.
func Better(a, b *Route) bool {
	return CompareRoutes(a, b) < 0
}
