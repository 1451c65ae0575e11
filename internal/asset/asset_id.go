// Package asset provides a type-safe model for SPL tokens.
// Raw on-chain amounts are integers in the token's smallest unit.
// decimal.Decimal is only used at boundaries (UI, parsing, display).
package asset

import (
	"github.com/gagliardetto/solana-go"
)

// AssetID uniquely identifies an SPL token by its mint address.
// This is the TRUE identity - not the symbol.
type AssetID struct {
	mint solana.PublicKey
}

// NewAssetID creates an AssetID for the given mint.
func NewAssetID(mint solana.PublicKey) AssetID {
	return AssetID{mint: mint}
}

// ParseAssetID parses a base58 mint address.
func ParseAssetID(mint string) (AssetID, error) {
	pk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return AssetID{}, err
	}
	return AssetID{mint: pk}, nil
}

// MustParseAssetID is ParseAssetID for package-level well-known mints.
func MustParseAssetID(mint string) AssetID {
	return AssetID{mint: solana.MustPublicKeyFromBase58(mint)}
}

// Mint returns the mint public key.
func (id AssetID) Mint() solana.PublicKey {
	return id.mint
}

// IsZero reports whether the id has no mint set.
func (id AssetID) IsZero() bool {
	return id.mint.IsZero()
}

// String returns the base58 mint address.
func (id AssetID) String() string {
	return id.mint.String()
}

// Short returns an abbreviated mint for log lines and tables.
func (id AssetID) Short() string {
	return id.mint.Short(4)
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id.mint.Equals(other.mint)
}
