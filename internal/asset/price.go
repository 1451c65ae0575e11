package asset

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceDisplayPlaces is the rounding applied when a Price is rendered.
const PriceDisplayPlaces = 6

var ErrZeroBase = errors.New("asset: price base amount is zero")

// Price is an exchange rate between two assets expressed in whole units:
// one unit of base buys rate units of quote.
// Derived from executed or quoted amounts; display only.
type Price struct {
	rate  decimal.Decimal
	base  *Asset
	quote *Asset
}

// NewPrice creates a price from a decimal rate.
func NewPrice(base, quote *Asset, rate decimal.Decimal) Price {
	if base == nil || quote == nil {
		panic("asset: nil base or quote in price")
	}
	if rate.IsNegative() {
		panic("asset: negative price rate")
	}
	return Price{rate: rate, base: base, quote: quote}
}

// PriceFromAmounts returns the effective rate of trading in for out,
// normalised by each asset's decimals.
func PriceFromAmounts(in, out Amount) (Price, error) {
	if in.asset == nil || out.asset == nil {
		return Price{}, ErrNilAsset
	}
	if in.IsZero() {
		return Price{}, ErrZeroBase
	}
	rate := out.ToDecimal().DivRound(in.ToDecimal(), 18)
	return NewPrice(in.asset, out.asset, rate), nil
}

// String returns e.g. "1 SOL = 49.382410 USDC".
func (p Price) String() string {
	if p.base == nil || p.quote == nil {
		return "?"
	}
	return fmt.Sprintf("1 %s = %s %s", p.base.Symbol(), p.rate.StringFixed(PriceDisplayPlaces), p.quote.Symbol())
}
