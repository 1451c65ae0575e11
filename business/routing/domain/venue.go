// Package domain contains the routing model: venues, quotes, routes and
// the token graph used for multi-hop search.
package domain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	pricing "github.com/fd1az/solana-router/business/pricing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
)

// Kind is the closed set of venue pricing models.
type Kind uint8

const (
	KindConstantProduct Kind = iota + 1
	KindConcentrated
	KindOrderbook
)

func (k Kind) String() string {
	switch k {
	case KindConstantProduct:
		return "constant_product"
	case KindConcentrated:
		return "concentrated"
	case KindOrderbook:
		return "orderbook"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "constant_product":
		return KindConstantProduct, nil
	case "concentrated":
		return KindConcentrated, nil
	case "orderbook":
		return KindOrderbook, nil
	}
	return 0, apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("unknown kind %q", s))
}

// Direction names the asset being sold.
type Direction uint8

const (
	AToB Direction = iota // sell token A, receive token B
	BToA                  // sell token B, receive token A
)

func (d Direction) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == AToB {
		return BToA
	}
	return AToB
}

// DefaultAMMMaxInputBps caps a single AMM trade at 30% of the input reserve.
const DefaultAMMMaxInputBps uint16 = 3000

// VenueParams carries the snapshot fields of a venue. Which fields matter
// depends on the kind: reserves and fee for AMMs, bid/ask and max input
// for orderbooks.
type VenueParams struct {
	ID      string
	Address solana.PublicKey
	Dex     Dex
	TokenA  asset.AssetID
	TokenB  asset.AssetID

	// AMM reserves. For orderbooks, the resting depth on each side; zero
	// means depth is not modelled.
	ReserveA uint64
	ReserveB uint64
	FeeBps   uint16
	// MaxInputBps is the share of the input reserve one AMM trade may use.
	// Zero selects DefaultAMMMaxInputBps.
	MaxInputBps uint16

	// Orderbook prices, scaled by pricing.OrderbookPricePrecision.
	BestBid uint64
	BestAsk uint64
	// MaxInput is the orderbook capacity per trade. Zero means unbounded.
	MaxInput uint64
}

// Venue is an immutable snapshot of one liquidity venue. The zero value is
// not usable; build venues with the New*Venue constructors.
type Venue struct {
	kind        Kind
	id          string
	address     solana.PublicKey
	dex         Dex
	tokenA      asset.AssetID
	tokenB      asset.AssetID
	reserveA    uint64
	reserveB    uint64
	feeBps      uint16
	maxInputBps uint16
	bestBid     uint64
	bestAsk     uint64
	maxInput    uint64
}

// NewConstantProductVenue builds an x*y=k pool.
func NewConstantProductVenue(p VenueParams) Venue {
	return newVenue(KindConstantProduct, p)
}

// NewConcentratedVenue builds a per-instance-fee pool, priced with the
// constant-product invariant over its snapshot reserves.
func NewConcentratedVenue(p VenueParams) Venue {
	return newVenue(KindConcentrated, p)
}

// NewOrderbookVenue builds a venue priced from top-of-book only.
func NewOrderbookVenue(p VenueParams) Venue {
	v := newVenue(KindOrderbook, p)
	v.feeBps, v.maxInputBps = 0, 0
	return v
}

func newVenue(kind Kind, p VenueParams) Venue {
	maxBps := p.MaxInputBps
	if maxBps == 0 {
		maxBps = DefaultAMMMaxInputBps
	}
	return Venue{
		kind:        kind,
		id:          p.ID,
		address:     p.Address,
		dex:         p.Dex,
		tokenA:      p.TokenA,
		tokenB:      p.TokenB,
		reserveA:    p.ReserveA,
		reserveB:    p.ReserveB,
		feeBps:      p.FeeBps,
		maxInputBps: maxBps,
		bestBid:     p.BestBid,
		bestAsk:     p.BestAsk,
		maxInput:    p.MaxInput,
	}
}

func (v Venue) Kind() Kind { return v.kind }
func (v Venue) ID() string { return v.id }
func (v Venue) Address() solana.PublicKey { return v.address }
func (v Venue) Dex() Dex { return v.dex }
func (v Venue) BestBid() uint64 { return v.bestBid }
func (v Venue) BestAsk() uint64 { return v.bestAsk }

// AssetPair returns (token A, token B).
func (v Venue) AssetPair() (asset.AssetID, asset.AssetID) {
	return v.tokenA, v.tokenB
}

// Reserves returns (reserve A, reserve B), or the book depth per side.
func (v Venue) Reserves() (uint64, uint64) {
	return v.reserveA, v.reserveB
}

// FeeBps is the swap fee for AMMs and the bid/ask spread for orderbooks.
func (v Venue) FeeBps() uint16 {
	if v.kind == KindOrderbook {
		return pricing.SpreadBps(v.bestBid, v.bestAsk)
	}
	return v.feeBps
}

// IsAMM reports whether the venue is reserve-priced.
func (v Venue) IsAMM() bool {
	return v.kind == KindConstantProduct || v.kind == KindConcentrated
}

// Validate checks the snapshot for values no quote could accept.
func (v Venue) Validate() error {
	switch v.kind {
	case KindConstantProduct, KindConcentrated, KindOrderbook:
	default:
		return apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: %s", v.id, v.kind))
	}
	if v.tokenA.IsZero() || v.tokenB.IsZero() {
		return apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: missing token mint", v.id))
	}
	if v.tokenA.Equals(v.tokenB) {
		return apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: token_a == token_b", v.id))
	}
	if uint64(v.feeBps) >= pricing.BasisPoints {
		return apperror.New(apperror.CodeInvalidFee, apperror.WithContextf("venue %s: fee_bps=%d", v.id, v.feeBps))
	}
	if uint64(v.maxInputBps) > pricing.BasisPoints {
		return apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: max_input_bps=%d", v.id, v.maxInputBps))
	}
	return nil
}

// DirectionFor returns the direction that sells tokenIn for tokenOut.
func (v Venue) DirectionFor(tokenIn, tokenOut asset.AssetID) (Direction, bool) {
	switch {
	case v.tokenA.Equals(tokenIn) && v.tokenB.Equals(tokenOut):
		return AToB, true
	case v.tokenB.Equals(tokenIn) && v.tokenA.Equals(tokenOut):
		return BToA, true
	}
	return 0, false
}

// Tokens returns (sold, received) for dir.
func (v Venue) Tokens(dir Direction) (asset.AssetID, asset.AssetID) {
	if dir == AToB {
		return v.tokenA, v.tokenB
	}
	return v.tokenB, v.tokenA
}

// CanTrade reports whether dir has anything on the other side at all.
func (v Venue) CanTrade(dir Direction) bool {
	switch v.kind {
	case KindConstantProduct, KindConcentrated:
		return v.reserveA > 0 && v.reserveB > 0
	case KindOrderbook:
		return v.orderbookPrice(dir) > 0
	}
	return false
}

// CalculateOutput prices amountIn without any liquidity-sufficiency check.
func (v Venue) CalculateOutput(amountIn uint64, dir Direction) (Quote, error) {
	q := Quote{Venue: v, Direction: dir, AmountIn: amountIn}

	switch v.kind {
	case KindConstantProduct, KindConcentrated:
		rIn, rOut := v.ammReserves(dir)
		out, err := pricing.QuoteOutput(amountIn, rIn, rOut, v.feeBps)
		if err != nil {
			return Quote{}, v.wrap(err)
		}
		impact, err := pricing.PriceImpactBps(amountIn, out, rIn, rOut)
		if err != nil {
			return Quote{}, v.wrap(err)
		}
		q.AmountOut, q.PriceImpactBps = out, impact

	case KindOrderbook:
		out, err := pricing.OrderbookOutput(amountIn, v.orderbookPrice(dir))
		if err != nil {
			return Quote{}, v.wrap(err)
		}
		q.AmountOut = out
		if amountIn > 0 {
			q.PriceImpactBps = pricing.SpreadBps(v.bestBid, v.bestAsk)
		}

	default:
		return Quote{}, apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: %s", v.id, v.kind))
	}

	return q, nil
}

// RequiredInput returns the smallest input yielding at least amountOut.
func (v Venue) RequiredInput(amountOut uint64, dir Direction) (uint64, error) {
	switch v.kind {
	case KindConstantProduct, KindConcentrated:
		rIn, rOut := v.ammReserves(dir)
		in, err := pricing.QuoteRequiredInput(amountOut, rIn, rOut, v.feeBps)
		return in, v.wrap(err)
	case KindOrderbook:
		in, err := pricing.OrderbookRequiredInput(amountOut, v.orderbookPrice(dir))
		return in, v.wrap(err)
	}
	return 0, apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: %s", v.id, v.kind))
}

// Quote prices amountIn and rejects it with InsufficientLiquidity when the
// venue cannot safely absorb it:
//   - AMMs: amountIn within maxInputBps of the input reserve, and the
//     output strictly below half the output reserve.
//   - Orderbooks: amountIn within the configured max input and the output
//     within the resting depth, where either is set.
func (v Venue) Quote(amountIn uint64, dir Direction) (Quote, error) {
	switch v.kind {
	case KindConstantProduct, KindConcentrated:
		rIn, rOut := v.ammReserves(dir)
		if rIn > 0 && rOut > 0 && !withinBps(amountIn, rIn, v.maxInputBps) {
			return Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
				apperror.WithContextf("venue %s: amount_in=%d above %d bps of reserve %d", v.id, amountIn, v.maxInputBps, rIn))
		}
		q, err := v.CalculateOutput(amountIn, dir)
		if err != nil {
			return Quote{}, err
		}
		if q.AmountOut >= rOut/2 && amountIn > 0 {
			return Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
				apperror.WithContextf("venue %s: amount_out=%d drains half of reserve %d", v.id, q.AmountOut, rOut))
		}
		return q, nil

	case KindOrderbook:
		if v.maxInput > 0 && amountIn > v.maxInput {
			return Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
				apperror.WithContextf("venue %s: amount_in=%d above capacity %d", v.id, amountIn, v.maxInput))
		}
		q, err := v.CalculateOutput(amountIn, dir)
		if err != nil {
			return Quote{}, err
		}
		if _, depth := v.ammReserves(dir); depth > 0 && q.AmountOut > depth {
			return Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
				apperror.WithContextf("venue %s: amount_out=%d above book depth %d", v.id, q.AmountOut, depth))
		}
		return q, nil
	}
	return Quote{}, apperror.New(apperror.CodeInvalidVenue, apperror.WithContextf("venue %s: %s", v.id, v.kind))
}

// HasSufficientLiquidity reports whether Quote would accept amountIn.
func (v Venue) HasSufficientLiquidity(amountIn uint64, dir Direction) bool {
	_, err := v.Quote(amountIn, dir)
	return err == nil
}

func (v Venue) String() string {
	return fmt.Sprintf("%s(%s %s)", v.id, v.dex, v.kind)
}

// ammReserves returns (input side, output side) for dir.
func (v Venue) ammReserves(dir Direction) (uint64, uint64) {
	if dir == AToB {
		return v.reserveA, v.reserveB
	}
	return v.reserveB, v.reserveA
}

// Selling A hits the bid; selling B lifts the ask.
func (v Venue) orderbookPrice(dir Direction) uint64 {
	if dir == AToB {
		return v.bestBid
	}
	return v.bestAsk
}

func (v Venue) wrap(err error) error {
	if err == nil {
		return nil
	}
	return apperror.Wrap(err, apperror.CodeInternalError, "venue "+v.id)
}

// withinBps reports amount <= reserve * bps / 10000.
func withinBps(amount, reserve uint64, bps uint16) bool {
	limit := new(uint256.Int).Mul(uint256.NewInt(reserve), uint256.NewInt(uint64(bps)))
	limit.Div(limit, uint256.NewInt(pricing.BasisPoints))
	return !uint256.NewInt(amount).Gt(limit)
}
