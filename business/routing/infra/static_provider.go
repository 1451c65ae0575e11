// Package infra contains infrastructure adapters for the routing context.
package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/fd1az/solana-router/business/routing/app"
	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
	"github.com/fd1az/solana-router/internal/config"
)

// Provider is a venue source that can also report its own readiness.
type Provider interface {
	app.VenueProvider
	Ready(ctx context.Context) (bool, string)
}

// StaticProvider serves one snapshot built from configuration.
type StaticProvider struct {
	snap domain.Snapshot
}

// NewStaticProvider builds and validates every configured venue.
func NewStaticProvider(venues []config.VenueConfig, liq config.LiquidityConfig, reg *asset.Registry) (*StaticProvider, error) {
	snap, err := BuildSnapshot(time.Now().UTC(), venues, liq, reg)
	if err != nil {
		return nil, err
	}
	return &StaticProvider{snap: snap}, nil
}

// BuildSnapshot builds every venue entry into one frozen snapshot. The
// first invalid entry fails the whole snapshot.
func BuildSnapshot(takenAt time.Time, venues []config.VenueConfig, liq config.LiquidityConfig, reg *asset.Registry) (domain.Snapshot, error) {
	built := make([]domain.Venue, 0, len(venues))
	for _, vc := range venues {
		v, err := BuildVenue(vc, liq, reg)
		if err != nil {
			return domain.Snapshot{}, err
		}
		built = append(built, v)
	}
	return domain.NewSnapshot(takenAt, built...), nil
}

// Snapshot returns the configured snapshot. It never changes, so every
// caller sees the same frozen view.
func (p *StaticProvider) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	if p.snap.IsEmpty() {
		return domain.Snapshot{}, apperror.New(apperror.CodeSnapshotMissing, apperror.WithContext("no venues configured"))
	}
	return p.snap, nil
}

// Ready is a health check: the provider is ready once it holds venues.
func (p *StaticProvider) Ready(ctx context.Context) (bool, string) {
	if p.snap.IsEmpty() {
		return false, "no venues configured"
	}
	return true, fmt.Sprintf("%d venues, %d assets", p.snap.Len(), len(p.snap.Assets()))
}

// BuildVenue maps one venue config entry onto a domain venue. Known
// dex/kind combinations go through the dex constructors so protocol fees
// and program addresses are applied.
func BuildVenue(vc config.VenueConfig, liq config.LiquidityConfig, reg *asset.Registry) (domain.Venue, error) {
	kind, err := domain.ParseKind(vc.Kind)
	if err != nil {
		return domain.Venue{}, err
	}

	tokenA, err := lookupToken(reg, vc.ID, vc.TokenA)
	if err != nil {
		return domain.Venue{}, err
	}
	tokenB, err := lookupToken(reg, vc.ID, vc.TokenB)
	if err != nil {
		return domain.Venue{}, err
	}

	p := domain.VenueParams{
		ID:          vc.ID,
		Dex:         domain.Dex(vc.Dex),
		TokenA:      tokenA,
		TokenB:      tokenB,
		ReserveA:    vc.ReserveA,
		ReserveB:    vc.ReserveB,
		FeeBps:      uint16(vc.FeeBps),
		MaxInputBps: uint16(liq.AMMMaxInputBps),
		BestBid:     vc.BestBid,
		BestAsk:     vc.BestAsk,
		MaxInput:    vc.MaxInput,
	}
	if p.MaxInput == 0 {
		p.MaxInput = liq.OrderbookMaxInput
	}
	if vc.Address != "" {
		addr, err := solana.PublicKeyFromBase58(vc.Address)
		if err != nil {
			return domain.Venue{}, apperror.New(apperror.CodeInvalidVenue,
				apperror.WithContextf("venue %s: address %q", vc.ID, vc.Address), apperror.WithCause(err))
		}
		p.Address = addr
	}

	var v domain.Venue
	switch {
	case p.Dex == domain.DexRaydium && kind == domain.KindConstantProduct:
		v = domain.NewRaydiumPool(p)
	case p.Dex == domain.DexOrca && kind == domain.KindConstantProduct:
		v = domain.NewOrcaPool(p)
	case p.Dex == domain.DexOrca && kind == domain.KindConcentrated:
		v = domain.NewOrcaWhirlpool(p)
	case p.Dex == domain.DexMeteora && kind == domain.KindConcentrated:
		v = domain.NewMeteoraPool(p)
	case p.Dex == domain.DexPhoenix && kind == domain.KindOrderbook:
		v = domain.NewPhoenixMarket(p)
	case kind == domain.KindConstantProduct:
		v = domain.NewConstantProductVenue(p)
	case kind == domain.KindConcentrated:
		v = domain.NewConcentratedVenue(p)
	default:
		v = domain.NewOrderbookVenue(p)
	}

	if err := v.Validate(); err != nil {
		return domain.Venue{}, err
	}
	return v, nil
}

func lookupToken(reg *asset.Registry, venueID, ref string) (asset.AssetID, error) {
	a, err := reg.Lookup(ref)
	if err != nil {
		return asset.AssetID{}, apperror.New(apperror.CodeUnknownAsset,
			apperror.WithContextf("venue %s: %s", venueID, ref), apperror.WithCause(err))
	}
	return a.ID(), nil
}
