package domain

import "github.com/fd1az/solana-router/internal/asset"

// Quote is one venue's price for one amount in one direction. A Route is
// built from quotes; each quote is also one hop (or leg) of that route.
type Quote struct {
	Venue          Venue
	Direction      Direction
	AmountIn       uint64
	AmountOut      uint64
	PriceImpactBps uint16
}

// TokenIn is the asset sold.
func (q Quote) TokenIn() asset.AssetID {
	in, _ := q.Venue.Tokens(q.Direction)
	return in
}

// TokenOut is the asset received.
func (q Quote) TokenOut() asset.AssetID {
	_, out := q.Venue.Tokens(q.Direction)
	return out
}
