package app

import (
	"errors"
	"testing"

	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
)

// 20_000 USDC / 10_000 RAY at 25 bps.
func usdcRAY(id string) domain.Venue {
	return cp(id, asset.IDUSDC, asset.IDRAY, 20_000_000_000, 10_000_000_000, 25)
}

func mustMultiHopRouter(t testing.TB) *MultiHopRouter {
	t.Helper()
	r, err := NewMultiHopRouter(DefaultMaxHops, DefaultMaxHopsLimit)
	if err != nil {
		t.Fatalf("NewMultiHopRouter() error = %v", err)
	}
	return r
}

func TestMultiHopRouter_FindBestWithin(t *testing.T) {
	snap := snapshot(raydiumSOLUSDC("sol-usdc"), usdcRAY("usdc-ray"))
	req := request(asset.IDSOL, asset.IDRAY, tenSOL)

	tests := []struct {
		name       string
		maxHops    int
		wantOut    uint64
		wantHops   int
		wantImpact uint16
		wantErr    error
	}{
		{"two hops", 2, 240_374_473, 2, 385, nil},
		{"three hops allowed", 3, 240_374_473, 2, 385, nil},
		{"direct only", 1, 0, 0, 0, apperror.ErrNoRouteFound},
		{"zero hops", 0, 0, 0, 0, apperror.ErrInvalidRequest},
		{"above limit", 4, 0, 0, 0, apperror.ErrInvalidRequest},
	}

	r := mustMultiHopRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := r.FindBestWithin(snap, req, tt.maxHops)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FindBestWithin() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindBestWithin() error = %v", err)
			}
			if route.Strategy() != domain.StrategyMultiHop {
				t.Errorf("Strategy() = %s, want multihop", route.Strategy())
			}
			if route.AmountOut() != tt.wantOut {
				t.Errorf("AmountOut() = %d, want %d", route.AmountOut(), tt.wantOut)
			}
			if route.HopCount() != tt.wantHops {
				t.Errorf("HopCount() = %d, want %d", route.HopCount(), tt.wantHops)
			}
			if route.PriceImpactBps() != tt.wantImpact {
				t.Errorf("PriceImpactBps() = %d, want %d", route.PriceImpactBps(), tt.wantImpact)
			}
		})
	}
}

func TestMultiHopRouter_DirectVersusIndirect(t *testing.T) {
	tests := []struct {
		name     string
		direct   domain.Venue
		wantOut  uint64
		wantHops int
	}{
		{
			name:     "poor direct pool loses",
			direct:   cp("sol-ray", asset.IDSOL, asset.IDRAY, solReserve, 20_000_000_000, 25),
			wantOut:  240_374_473,
			wantHops: 2,
		},
		{
			name:     "rich direct pool wins",
			direct:   cp("sol-ray", asset.IDSOL, asset.IDRAY, solReserve, 30_000_000_000, 25),
			wantOut:  296_294_462,
			wantHops: 1,
		},
	}

	r := mustMultiHopRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot(raydiumSOLUSDC("sol-usdc"), usdcRAY("usdc-ray"), tt.direct)
			route, err := r.FindBest(snap, request(asset.IDSOL, asset.IDRAY, tenSOL))
			if err != nil {
				t.Fatalf("FindBest() error = %v", err)
			}
			if route.AmountOut() != tt.wantOut || route.HopCount() != tt.wantHops {
				t.Errorf("route = %s, want out %d over %d hops", route, tt.wantOut, tt.wantHops)
			}
		})
	}
}

func TestMultiHopRouter_NoRepeatedAsset(t *testing.T) {
	// Every pair among SOL, USDC, USDT and RAY is tradeable, so cycles are
	// everywhere.
	tokens := []asset.AssetID{asset.IDSOL, asset.IDUSDC, asset.IDUSDT, asset.IDRAY}
	var venues []domain.Venue
	for i := range tokens {
		for j := i + 1; j < len(tokens); j++ {
			venues = append(venues, cp("pool", tokens[i], tokens[j], 1_000_000_000_000, 1_000_000_000_000, 30))
		}
	}
	snap := snapshot(venues...)
	g := domain.NewGraph(snap)

	paths := g.SimplePaths(asset.IDSOL, asset.IDRAY, 3)
	if len(paths) == 0 {
		t.Fatal("SimplePaths() found nothing")
	}
	for _, p := range paths {
		route, err := Simulate(snap, p, 1_000_000_000)
		if err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}
		seen := map[asset.AssetID]bool{route.TokenIn(): true}
		for _, h := range route.Hops() {
			if seen[h.TokenOut()] {
				t.Errorf("route %s revisits %s", route, h.TokenOut().Short())
			}
			seen[h.TokenOut()] = true
		}
	}

	r, err := NewMultiHopRouter(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	best, err := r.FindBest(snap, request(asset.IDSOL, asset.IDRAY, 1_000_000_000))
	if err != nil {
		t.Fatalf("FindBest() error = %v", err)
	}
	if best.HopCount() != 1 {
		t.Errorf("HopCount() = %d, want the direct pool on equal reserves", best.HopCount())
	}
}

func TestSimulate(t *testing.T) {
	snap := snapshot(raydiumSOLUSDC("sol-usdc"), usdcRAY("usdc-ray"))
	path := domain.Path{
		{Venue: 0, Direction: domain.AToB, From: asset.IDSOL, To: asset.IDUSDC},
		{Venue: 1, Direction: domain.AToB, From: asset.IDUSDC, To: asset.IDRAY},
	}

	route, err := Simulate(snap, path, tenSOL)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	hops := route.Hops()
	if hops[0].AmountOut != 493_824_104 {
		t.Errorf("hop 0 out = %d, want 493824104", hops[0].AmountOut)
	}
	if hops[1].AmountIn != hops[0].AmountOut {
		t.Errorf("hop 1 in = %d, want previous out %d", hops[1].AmountIn, hops[0].AmountOut)
	}
	if route.AmountIn() != tenSOL || route.AmountOut() != hops[1].AmountOut {
		t.Errorf("route = %s", route)
	}
}

func TestSimulate_ShallowSecondHop(t *testing.T) {
	shallow := cp("usdc-ray-thin", asset.IDUSDC, asset.IDRAY, 1_000_000_000, 500_000_000, 25)
	snap := snapshot(raydiumSOLUSDC("sol-usdc"), shallow)
	path := domain.Path{
		{Venue: 0, Direction: domain.AToB, From: asset.IDSOL, To: asset.IDUSDC},
		{Venue: 1, Direction: domain.AToB, From: asset.IDUSDC, To: asset.IDRAY},
	}

	if _, err := Simulate(snap, path, tenSOL); !errors.Is(err, apperror.ErrInsufficientLiquidity) {
		t.Fatalf("Simulate() error = %v, want INSUFFICIENT_LIQUIDITY", err)
	}

	_, err := mustMultiHopRouter(t).FindBest(snap, request(asset.IDSOL, asset.IDRAY, tenSOL))
	if !errors.Is(err, apperror.ErrNoRouteFound) {
		t.Errorf("FindBest() error = %v, want NO_ROUTE_FOUND", err)
	}
}

func TestNewMultiHopRouter(t *testing.T) {
	tests := []struct {
		name           string
		maxHops, limit int
		wantErr        bool
	}{
		{"defaults", DefaultMaxHops, DefaultMaxHopsLimit, false},
		{"budget at limit", 3, 3, false},
		{"zero budget", 0, 3, true},
		{"budget above limit", 4, 3, true},
		{"zero limit", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewMultiHopRouter(tt.maxHops, tt.limit)
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeConfigurationError {
					t.Errorf("NewMultiHopRouter() error = %v, want CONFIGURATION_ERROR", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMultiHopRouter() error = %v", err)
			}
			if r.MaxHops() != tt.maxHops {
				t.Errorf("MaxHops() = %d, want %d", r.MaxHops(), tt.maxHops)
			}
		})
	}
}

func BenchmarkMultiHopRouter_FindBest(b *testing.B) {
	tokens := []asset.AssetID{asset.IDSOL, asset.IDUSDC, asset.IDUSDT, asset.IDRAY, asset.IDMSOL, asset.IDORCA}
	var venues []domain.Venue
	for i := range tokens {
		for j := i + 1; j < len(tokens); j++ {
			venues = append(venues, cp("pool", tokens[i], tokens[j], 1_000_000_000_000, 1_000_000_000_000+uint64(i*j)*1_000_000, 30))
		}
	}
	snap := snapshot(venues...)
	req := request(asset.IDSOL, asset.IDRAY, tenSOL)
	r, err := NewMultiHopRouter(3, 3)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.FindBest(snap, req); err != nil {
			b.Fatal(err)
		}
	}
}
