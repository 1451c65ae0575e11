// Package domain contains the pricing math shared by every venue model.
//
// All amounts are raw integer token units. Intermediate products are
// carried in 256-bit integers and narrowed back to u64 with an explicit
// overflow check, so no quote ever wraps silently.
package domain

import (
	"github.com/holiman/uint256"

	"github.com/fd1az/solana-router/internal/apperror"
)

// BasisPoints is the fee and impact denominator (100% = 10000).
const BasisPoints uint64 = 10_000

var bps = uint256.NewInt(BasisPoints)

// QuoteOutput returns the output of a constant-product swap:
//
//	afterFee = amountIn * (10000 - fee) / 10000
//	out      = afterFee * reserveOut / (reserveIn + afterFee)
//
// Both divisions floor. A zero input quotes zero.
func QuoteOutput(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	if err := checkPool(reserveIn, reserveOut, feeBps); err != nil {
		return 0, err
	}
	if amountIn == 0 {
		return 0, nil
	}

	afterFee := amountAfterFee(amountIn, feeBps)

	num := new(uint256.Int).Mul(afterFee, uint256.NewInt(reserveOut))
	den := new(uint256.Int).Add(uint256.NewInt(reserveIn), afterFee)
	out := num.Div(num, den)

	return narrow(out, "quote output")
}

// QuoteRequiredInput returns the smallest input whose QuoteOutput is at
// least amountOut. Both inverse steps round up, which guarantees
//
//	QuoteOutput(QuoteRequiredInput(y)) >= y
//	QuoteRequiredInput(QuoteOutput(x)) <= x
func QuoteRequiredInput(amountOut, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	if err := checkPool(reserveIn, reserveOut, feeBps); err != nil {
		return 0, err
	}
	if amountOut == 0 {
		return 0, nil
	}
	if amountOut >= reserveOut {
		return 0, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContextf("amount_out=%d reserve_out=%d", amountOut, reserveOut))
	}

	// Minimal post-fee input a with a*(rOut-out) >= out*rIn.
	num := new(uint256.Int).Mul(uint256.NewInt(amountOut), uint256.NewInt(reserveIn))
	den := uint256.NewInt(reserveOut - amountOut)
	afterFee := divCeil(num, den)

	// Minimal gross input x with floor(x*(10000-fee)/10000) >= a.
	num = new(uint256.Int).Mul(afterFee, bps)
	in := divCeil(num, uint256.NewInt(BasisPoints-uint64(feeBps)))

	return narrow(in, "required input")
}

// PriceImpactBps compares the execution rate out/in against the spot rate
// reserveOut/reserveIn:
//
//	impact = 10000 - floor(out * reserveIn * 10000 / (in * reserveOut))
//
// clamped at zero. The fee is included, so any non-zero trade quoted by
// QuoteOutput has a strictly positive impact.
func PriceImpactBps(amountIn, amountOut, reserveIn, reserveOut uint64) (uint16, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, emptyPool(reserveIn, reserveOut)
	}
	if amountIn == 0 {
		return 0, nil
	}

	num := new(uint256.Int).Mul(uint256.NewInt(amountOut), uint256.NewInt(reserveIn))
	num.Mul(num, bps)
	den := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(reserveOut))
	ratio := num.Div(num, den)

	if !ratio.Lt(bps) {
		return 0, nil
	}
	return uint16(BasisPoints - ratio.Uint64()), nil
}

// SpotOutput is amountIn valued at the spot rate, ignoring fees and
// curvature. Every QuoteOutput is strictly below it for amountIn > 0.
func SpotOutput(amountIn, reserveIn, reserveOut uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, emptyPool(reserveIn, reserveOut)
	}
	num := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(reserveOut))
	out := num.Div(num, uint256.NewInt(reserveIn))
	return narrow(out, "spot output")
}

func checkPool(reserveIn, reserveOut uint64, feeBps uint16) error {
	if uint64(feeBps) >= BasisPoints {
		return apperror.New(apperror.CodeInvalidFee, apperror.WithContextf("fee_bps=%d", feeBps))
	}
	if reserveIn == 0 || reserveOut == 0 {
		return emptyPool(reserveIn, reserveOut)
	}
	return nil
}

func emptyPool(reserveIn, reserveOut uint64) error {
	return apperror.New(apperror.CodeEmptyPool,
		apperror.WithContextf("reserve_in=%d reserve_out=%d", reserveIn, reserveOut))
}

func amountAfterFee(amountIn uint64, feeBps uint16) *uint256.Int {
	v := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(BasisPoints-uint64(feeBps)))
	return v.Div(v, bps)
}

// divCeil returns ceil(x/y). y must be non-zero.
func divCeil(x, y *uint256.Int) *uint256.Int {
	q := new(uint256.Int).Div(x, y)
	if !new(uint256.Int).Mod(x, y).IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}

func narrow(v *uint256.Int, what string) (uint64, error) {
	if !v.IsUint64() {
		return 0, apperror.New(apperror.CodeArithmeticOverflow,
			apperror.WithContextf("%s exceeds u64: %s", what, v.Dec()))
	}
	return v.Uint64(), nil
}
