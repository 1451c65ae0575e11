package domain

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/fd1az/solana-router/internal/apperror"
)

// OrderbookPricePrecision is the fixed-point scale of orderbook prices:
// a price of 1_000_000 means one unit out per unit in.
const OrderbookPricePrecision uint64 = 1_000_000

// OrderbookOutput fills amountIn at a single top-of-book price.
func OrderbookOutput(amountIn, price uint64) (uint64, error) {
	if price == 0 {
		return 0, apperror.New(apperror.CodeInsufficientLiquidity, apperror.WithContext("no resting orders"))
	}
	v := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(price))
	v.Div(v, uint256.NewInt(OrderbookPricePrecision))
	return narrow(v, "orderbook output")
}

// SpreadBps returns (ask - bid) * 10000 / bid, capped at 10000.
// A missing bid, or a crossed / inverted book, is reported as the cap
// and zero spread respectively.
func SpreadBps(bid, ask uint64) uint16 {
	if bid == 0 {
		return uint16(BasisPoints)
	}
	if ask <= bid {
		return 0
	}
	v := new(uint256.Int).Mul(uint256.NewInt(ask-bid), bps)
	v.Div(v, uint256.NewInt(bid))
	if !v.Lt(bps) {
		return uint16(BasisPoints)
	}
	return uint16(v.Uint64())
}

// ImprovementBps is how much better candidate is than baseline, in basis
// points of baseline. Negative when candidate is worse. Display only.
func ImprovementBps(baseline, candidate uint64) decimal.Decimal {
	if baseline == 0 {
		return decimal.Zero
	}
	b := decimal.NewFromUint64(baseline)
	return decimal.NewFromUint64(candidate).Sub(b).Div(b).Mul(decimal.NewFromInt(10000))
}

// OrderbookRequiredInput is the smallest input that OrderbookOutput fills
// to at least amountOut at price.
func OrderbookRequiredInput(amountOut, price uint64) (uint64, error) {
	if price == 0 {
		return 0, apperror.New(apperror.CodeInsufficientLiquidity, apperror.WithContext("no resting orders"))
	}
	v := new(uint256.Int).Mul(uint256.NewInt(amountOut), uint256.NewInt(OrderbookPricePrecision))
	return narrow(divCeil(v, uint256.NewInt(price)), "orderbook required input")
}
