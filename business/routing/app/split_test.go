package app

import (
	"errors"
	"testing"

	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
)

const fiftySOL uint64 = 50_000_000_000

// (1000 SOL, 50_000 USDC) at 10 bps and (750 SOL, 37_500 USDC) at 20 bps.
func splitPair() (domain.Venue, domain.Venue) {
	return cp("deep", asset.IDSOL, asset.IDUSDC, solReserve, usdcReserve, 10),
		cp("shallow", asset.IDSOL, asset.IDUSDC, 750_000_000_000, 37_500_000_000, 20)
}

func mustSplitRouter(t testing.TB, cfg SplitConfig) *SplitRouter {
	t.Helper()
	r, err := NewSplitRouter(cfg)
	if err != nil {
		t.Fatalf("NewSplitRouter(%+v) error = %v", cfg, err)
	}
	return r
}

func legSum(r *domain.Route) uint64 {
	var sum uint64
	for _, h := range r.Hops() {
		sum += h.AmountIn
	}
	return sum
}

func TestSplitRouter_TwoVenues(t *testing.T) {
	deep, shallow := splitPair()
	snap := snapshot(shallow, deep)
	req := request(asset.IDSOL, asset.IDUSDC, fiftySOL)

	for _, alloc := range []Allocator{AllocatorSimplex, AllocatorGreedy} {
		t.Run(string(alloc), func(t *testing.T) {
			r := mustSplitRouter(t, SplitConfig{GranularityPct: 10, MaxVenues: 5, Allocator: alloc})

			route, err := r.FindBest(snap, req)
			if err != nil {
				t.Fatalf("FindBest() error = %v", err)
			}
			if route.Strategy() != domain.StrategySplit {
				t.Errorf("Strategy() = %s, want split", route.Strategy())
			}
			if route.AmountOut() != 2_427_025_166 {
				t.Errorf("AmountOut() = %d, want 2427025166", route.AmountOut())
			}
			if route.HopCount() != 2 {
				t.Fatalf("HopCount() = %d, want 2", route.HopCount())
			}

			legs := map[string]uint64{}
			for _, h := range route.Hops() {
				legs[h.Venue.ID()] = h.AmountIn
			}
			if legs["deep"] != 30_000_000_000 || legs["shallow"] != 20_000_000_000 {
				t.Errorf("legs = %v, want deep 60%% / shallow 40%%", legs)
			}
			if legSum(route) != fiftySOL {
				t.Errorf("leg inputs sum to %d, want %d", legSum(route), fiftySOL)
			}

			single, err := NewSingleVenueRouter().FindBest(snap, req)
			if err != nil {
				t.Fatalf("single FindBest() error = %v", err)
			}
			if route.AmountOut() <= single.AmountOut() {
				t.Errorf("split %d not above best single %d", route.AmountOut(), single.AmountOut())
			}
		})
	}
}

func TestSplitRouter_NeverWorseThanSingle(t *testing.T) {
	deep, shallow := splitPair()
	third := cp("third", asset.IDSOL, asset.IDUSDC, 400_000_000_000, 20_100_000_000, 30)
	snap := snapshot(deep, shallow, third)
	single := NewSingleVenueRouter()

	for _, alloc := range []Allocator{AllocatorSimplex, AllocatorGreedy} {
		r := mustSplitRouter(t, SplitConfig{GranularityPct: 5, MaxVenues: 3, Allocator: alloc})

		for sol := uint64(1); sol <= 100; sol += 3 {
			amount := sol*1_000_000_000 + sol // off-grid on purpose
			req := request(asset.IDSOL, asset.IDUSDC, amount)

			best, err := single.FindBest(snap, req)
			if err != nil {
				t.Fatalf("%s: single(%d) error = %v", alloc, amount, err)
			}
			route, err := r.FindBest(snap, req)
			if err != nil {
				t.Fatalf("%s: split(%d) error = %v", alloc, amount, err)
			}
			if route.AmountOut() < best.AmountOut() {
				t.Errorf("%s: split(%d) = %d below single %d", alloc, amount, route.AmountOut(), best.AmountOut())
			}
			if legSum(route) != amount {
				t.Errorf("%s: split(%d) legs sum to %d", alloc, amount, legSum(route))
			}
		}
	}
}

func TestSplitRouter_Degenerate(t *testing.T) {
	deep, _ := splitPair()
	r := mustSplitRouter(t, DefaultSplitConfig())

	tests := []struct {
		name         string
		snap         domain.Snapshot
		req          domain.Request
		wantStrategy domain.Strategy
		wantErr      error
	}{
		{
			name:         "one eligible venue",
			snap:         snapshot(deep, cp("other-pair", asset.IDSOL, asset.IDRAY, solReserve, usdcReserve, 25)),
			req:          request(asset.IDSOL, asset.IDUSDC, fiftySOL),
			wantStrategy: domain.StrategySingle,
		},
		{
			name:    "no eligible venue",
			snap:    snapshot(deep),
			req:     request(asset.IDSOL, asset.IDUSDT, fiftySOL),
			wantErr: apperror.ErrNoRouteFound,
		},
		{
			name:    "amount above every cap",
			snap:    snapshot(deep),
			req:     request(asset.IDSOL, asset.IDUSDC, 400_000_000_000),
			wantErr: apperror.ErrNoRouteFound,
		},
		{
			name:    "zero amount",
			snap:    snapshot(deep),
			req:     request(asset.IDSOL, asset.IDUSDC, 0),
			wantErr: apperror.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := r.FindBest(tt.snap, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FindBest() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindBest() error = %v", err)
			}
			if route.Strategy() != tt.wantStrategy {
				t.Errorf("Strategy() = %s, want %s", route.Strategy(), tt.wantStrategy)
			}
		})
	}
}

func TestSplitRouter_AboveEverySingleCap(t *testing.T) {
	// 400 SOL is 40% of each pool, above the 30% per-venue cap; 200 SOL
	// legs fit.
	a := cp("a", asset.IDSOL, asset.IDUSDC, solReserve, usdcReserve, 10)
	b := cp("b", asset.IDSOL, asset.IDUSDC, solReserve, usdcReserve, 10)
	const amount uint64 = 400_000_000_000

	if _, err := NewSingleVenueRouter().FindBest(snapshot(a, b), request(asset.IDSOL, asset.IDUSDC, amount)); !errors.Is(err, apperror.ErrNoRouteFound) {
		t.Fatalf("single FindBest() error = %v, want no route", err)
	}

	for _, alloc := range []Allocator{AllocatorSimplex, AllocatorGreedy} {
		t.Run(string(alloc), func(t *testing.T) {
			r := mustSplitRouter(t, SplitConfig{GranularityPct: 10, MaxVenues: 5, Allocator: alloc})

			route, err := r.FindBest(snapshot(a, b), request(asset.IDSOL, asset.IDUSDC, amount))
			if err != nil {
				t.Fatalf("FindBest() error = %v", err)
			}
			if route.Strategy() != domain.StrategySplit {
				t.Errorf("Strategy() = %s, want split", route.Strategy())
			}
			if route.AmountOut() != 16_652_775_462 {
				t.Errorf("AmountOut() = %d, want 16652775462", route.AmountOut())
			}
			for _, h := range route.Hops() {
				if h.AmountIn != 200_000_000_000 {
					t.Errorf("leg %s AmountIn = %d, want 200 SOL", h.Venue.ID(), h.AmountIn)
				}
			}
			if legSum(route) != amount {
				t.Errorf("leg inputs sum to %d, want %d", legSum(route), amount)
			}

			// 350 SOL per leg still breaks the cap.
			if _, err := r.FindBest(snapshot(a, b), request(asset.IDSOL, asset.IDUSDC, 700_000_000_000)); !errors.Is(err, apperror.ErrNoRouteFound) {
				t.Errorf("FindBest(700 SOL) error = %v, want no route", err)
			}
		})
	}
}

func TestSplitCandidates_Order(t *testing.T) {
	deep, shallow := splitPair()
	small := cp("small", asset.IDSOL, asset.IDUSDC, 100_000_000_000, 5_000_000_000, 10)
	empty := cp("empty", asset.IDSOL, asset.IDUSDC, 0, 0, 10)
	other := cp("other-pair", asset.IDSOL, asset.IDRAY, solReserve, usdcReserve, 10)

	cands, err := splitCandidates(snapshot(small, empty, shallow, other, deep), request(asset.IDSOL, asset.IDUSDC, fiftySOL))
	if err != nil {
		t.Fatalf("splitCandidates() error = %v", err)
	}

	want := []struct {
		id   string
		full bool
	}{{"deep", true}, {"shallow", true}, {"small", false}}
	if len(cands) != len(want) {
		t.Fatalf("len(cands) = %d, want %d", len(cands), len(want))
	}
	for i, w := range want {
		if cands[i].venue.ID() != w.id || cands[i].full != w.full {
			t.Errorf("cands[%d] = %s full=%v, want %s full=%v", i, cands[i].venue.ID(), cands[i].full, w.id, w.full)
		}
	}
}

func TestSplitRouter_MaxVenuesCapsSimplex(t *testing.T) {
	deep, shallow := splitPair()
	third := cp("third", asset.IDSOL, asset.IDUSDC, 400_000_000_000, 20_000_000_000, 30)
	snap := snapshot(third, shallow, deep)

	r := mustSplitRouter(t, SplitConfig{GranularityPct: 10, MaxVenues: 2, Allocator: AllocatorSimplex})
	route, err := r.FindBest(snap, request(asset.IDSOL, asset.IDUSDC, fiftySOL))
	if err != nil {
		t.Fatalf("FindBest() error = %v", err)
	}
	for _, h := range route.Hops() {
		if h.Venue.ID() == "third" {
			t.Errorf("leg on %s, which ranks below the top 2", h.Venue.ID())
		}
	}
}

func TestNewSplitRouter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SplitConfig
		wantErr bool
	}{
		{"default", DefaultSplitConfig(), false},
		{"empty allocator defaults to simplex", SplitConfig{GranularityPct: 25, MaxVenues: 2}, false},
		{"granularity 1", SplitConfig{GranularityPct: 1, MaxVenues: 2, Allocator: AllocatorGreedy}, false},
		{"granularity zero", SplitConfig{GranularityPct: 0, MaxVenues: 2}, true},
		{"granularity not dividing 100", SplitConfig{GranularityPct: 30, MaxVenues: 2}, true},
		{"one venue", SplitConfig{GranularityPct: 10, MaxVenues: 1}, true},
		{"unknown allocator", SplitConfig{GranularityPct: 10, MaxVenues: 2, Allocator: "lp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewSplitRouter(tt.cfg)
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeConfigurationError {
					t.Errorf("NewSplitRouter() error = %v, want CONFIGURATION_ERROR", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSplitRouter() error = %v", err)
			}
			if r.Config().Allocator == "" {
				t.Error("Config().Allocator is empty")
			}
		})
	}
}

func TestLegBook_Amount(t *testing.T) {
	b := newLegBook(^uint64(0), 10, nil)
	if got := b.amount(10); got != ^uint64(0) {
		t.Errorf("amount(10/10) = %d, want max uint64", got)
	}
	if got := b.amount(5); got != ^uint64(0)/2 {
		t.Errorf("amount(5/10) = %d, want %d", got, ^uint64(0)/2)
	}
}

func BenchmarkSplitRouter_Simplex(b *testing.B) {
	venues := make([]domain.Venue, 0, 5)
	for i := 0; i < 5; i++ {
		venues = append(venues, cp("v", asset.IDSOL, asset.IDUSDC, solReserve-uint64(i)*100_000_000_000, usdcReserve-uint64(i)*5_000_000_000, uint16(10+i*5)))
	}
	snap := snapshot(venues...)
	req := request(asset.IDSOL, asset.IDUSDC, fiftySOL)
	r := mustSplitRouter(b, DefaultSplitConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.FindBest(snap, req); err != nil {
			b.Fatal(err)
		}
	}
}
