package asset

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrAssetMismatch   = errors.New("asset: cannot operate on different assets")
	ErrNegativeResult  = errors.New("asset: operation would result in negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
	ErrAmountOverflow  = errors.New("asset: amount exceeds u64")
)

var maxU64 = decimal.NewFromUint64(math.MaxUint64)

// Amount is an immutable Value Object representing a quantity of an SPL token.
// The raw value is always in the token's smallest unit (lamports for SOL).
type Amount struct {
	raw   uint64
	asset *Asset
}

// NewAmount creates a new Amount from a raw value in the smallest unit.
func NewAmount(asset *Asset, raw uint64) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	return Amount{raw: raw, asset: asset}
}

// Zero creates a zero Amount for the given asset.
func Zero(asset *Asset) Amount {
	return NewAmount(asset, 0)
}

// Raw returns the raw on-chain value.
func (a Amount) Raw() uint64 {
	return a.raw
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw > 0
}

// -----------------------------------------------------------------------------
// Arithmetic Operations (type-safe, same asset only)
// -----------------------------------------------------------------------------

// Add adds two amounts of the same asset.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}

	sum, carry := bits.Add64(a.raw, b.raw, 0)
	if carry != 0 {
		return Amount{}, ErrAmountOverflow
	}
	return NewAmount(a.asset, sum), nil
}

// Sub subtracts b from a (same asset only).
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}

	if a.raw < b.raw {
		return Amount{}, ErrNegativeResult
	}
	return NewAmount(a.asset, a.raw-b.raw), nil
}

// -----------------------------------------------------------------------------
// Comparison Operations
// -----------------------------------------------------------------------------

// Equals returns true if both amounts are equal (same asset and value).
func (a Amount) Equals(b Amount) bool {
	if a.asset == nil || b.asset == nil {
		return a.asset == b.asset && a.raw == b.raw
	}
	return a.asset.ID().Equals(b.asset.ID()) && a.raw == b.raw
}

// -----------------------------------------------------------------------------
// Boundary Functions (decimal conversion - UI/display only)
// -----------------------------------------------------------------------------

// ToDecimal converts the amount to decimal.Decimal for display.
// This is a BOUNDARY function - use only for UI/display, not calculations.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.asset == nil {
		return decimal.Zero
	}
	return decimal.NewFromUint64(a.raw).Shift(-int32(a.asset.Decimals()))
}

// ParseDecimal creates an Amount from a decimal value.
// This is a BOUNDARY function - use for parsing user input.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(asset.Decimals()))

	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}
	if scaled.GreaterThan(maxU64) {
		return Amount{}, ErrAmountOverflow
	}

	return NewAmount(asset, scaled.BigInt().Uint64()), nil
}

// ParseString creates an Amount from a string decimal value.
func ParseString(asset *Asset, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(asset, d)
}

// -----------------------------------------------------------------------------
// Display
// -----------------------------------------------------------------------------

// String returns a human-readable representation (e.g., "1.5 SOL").
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.asset.Symbol())
}

// StringFixed returns a string with fixed decimal places.
func (a Amount) StringFixed(places int32) string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().StringFixed(places), a.asset.Symbol())
}

// -----------------------------------------------------------------------------
// Internal helpers
// -----------------------------------------------------------------------------

func (a Amount) checkSameAsset(b Amount) error {
	if a.asset == nil || b.asset == nil {
		return ErrNilAsset
	}
	if !a.asset.ID().Equals(b.asset.ID()) {
		return fmt.Errorf("%w: %s vs %s", ErrAssetMismatch, a.asset.Symbol(), b.asset.Symbol())
	}
	return nil
}
