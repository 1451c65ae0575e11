package asset

// Well-known mint addresses on Solana mainnet.
const (
	MintWSOL = "So11111111111111111111111111111111111111112"
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	MintRAY  = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
	MintMSOL = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
	MintORCA = "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE"
)

// Well-known AssetIDs
var (
	IDSOL  = MustParseAssetID(MintWSOL)
	IDUSDC = MustParseAssetID(MintUSDC)
	IDUSDT = MustParseAssetID(MintUSDT)
	IDRAY  = MustParseAssetID(MintRAY)
	IDMSOL = MustParseAssetID(MintMSOL)
	IDORCA = MustParseAssetID(MintORCA)
)

// Well-known Assets (pre-created instances)
var (
	SOL  = NewAssetWithName(IDSOL, "SOL", "Wrapped SOL", 9)
	USDC = NewAssetWithName(IDUSDC, "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(IDUSDT, "USDT", "Tether USD", 6)
	RAY  = NewAssetWithName(IDRAY, "RAY", "Raydium", 6)
	MSOL = NewAssetWithName(IDMSOL, "mSOL", "Marinade staked SOL", 9)
	ORCA = NewAssetWithName(IDORCA, "ORCA", "Orca", 6)
)

// DefaultRegistry returns a registry pre-populated with well-known assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(SOL)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(RAY)
	r.Register(MSOL)
	r.Register(ORCA)

	return r
}

// MustNewToken creates a token asset from a base58 mint.
func MustNewToken(mint, symbol, name string, decimals uint8) *Asset {
	return NewAssetWithName(MustParseAssetID(mint), symbol, name, decimals)
}
