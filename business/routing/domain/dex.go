package domain

import "github.com/gagliardetto/solana-go"

// Dex names the protocol operating a venue.
type Dex string

const (
	DexRaydium Dex = "raydium"
	DexOrca    Dex = "orca"
	DexMeteora Dex = "meteora"
	DexPhoenix Dex = "phoenix"
)

// Fixed protocol fees. Whirlpool and Meteora fees vary per pool.
const (
	RaydiumFeeBps uint16 = 25
	OrcaFeeBps    uint16 = 30
)

// Program IDs, used as the venue address when a snapshot omits one.
var (
	RaydiumAMMProgramID    = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OrcaWhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	MeteoraDLMMProgramID   = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	PhoenixProgramID       = solana.MustPublicKeyFromBase58("PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY")
)

// NewRaydiumPool is a constant-product pool at Raydium's fixed fee.
func NewRaydiumPool(p VenueParams) Venue {
	p.Dex, p.FeeBps = DexRaydium, RaydiumFeeBps
	return NewConstantProductVenue(withAddress(p, RaydiumAMMProgramID))
}

// NewOrcaPool is a legacy constant-product Orca pool at the fixed fee.
func NewOrcaPool(p VenueParams) Venue {
	p.Dex, p.FeeBps = DexOrca, OrcaFeeBps
	return NewConstantProductVenue(p)
}

// NewOrcaWhirlpool is a concentrated pool; fee comes from p.FeeBps.
func NewOrcaWhirlpool(p VenueParams) Venue {
	p.Dex = DexOrca
	return NewConcentratedVenue(withAddress(p, OrcaWhirlpoolProgramID))
}

// NewMeteoraPool is a dynamic-fee pool; fee comes from p.FeeBps.
func NewMeteoraPool(p VenueParams) Venue {
	p.Dex = DexMeteora
	return NewConcentratedVenue(withAddress(p, MeteoraDLMMProgramID))
}

// NewPhoenixMarket is an orderbook market priced from best bid/ask.
func NewPhoenixMarket(p VenueParams) Venue {
	p.Dex = DexPhoenix
	return NewOrderbookVenue(withAddress(p, PhoenixProgramID))
}

func withAddress(p VenueParams, fallback solana.PublicKey) VenueParams {
	if p.Address.IsZero() {
		p.Address = fallback
	}
	return p
}
