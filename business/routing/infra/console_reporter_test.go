package infra

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fd1az/solana-router/business/routing/app"
	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
)

func TestConsoleReporter_Report(t *testing.T) {
	route := raydiumRoute(t, 10_000_000_000)
	res := &app.Result{
		Request:    domain.Request{TokenIn: asset.IDSOL, TokenOut: asset.IDUSDC, AmountIn: 10_000_000_000},
		SnapshotAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Best:       route,
		Routes:     []*domain.Route{route},
		Failures: map[domain.Strategy]error{
			domain.StrategyMultiHop: apperror.New(apperror.CodeNoRouteFound),
			domain.StrategySplit:    apperror.New(apperror.CodeNoRouteFound),
		},
	}

	var buf bytes.Buffer
	NewConsoleReporterTo(&buf, asset.DefaultRegistry()).Report(res)
	out := buf.String()

	for _, want := range []string{
		"SOL → USDC",
		"10.000000 SOL",
		"SOL → [ray-sol-usdc] USDC",
		"493.824104 USDC",
		"Best route " + route.IDHex(),
		"effective 1 SOL = 49.382410 USDC",
		"snapshot 2026-01-02 03:04:05Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() output missing %q:\n%s", want, out)
		}
	}

	multi := strings.Index(out, "multihop: NO_ROUTE_FOUND")
	split := strings.Index(out, "split: NO_ROUTE_FOUND")
	if multi < 0 || split < 0 || multi > split {
		t.Errorf("failures not listed in name order:\n%s", out)
	}
}

func TestConsoleReporter_ImprovementOverSingle(t *testing.T) {
	deep := domain.NewConstantProductVenue(domain.VenueParams{
		ID: "deep", TokenA: asset.IDSOL, TokenB: asset.IDUSDC,
		ReserveA: 1_000_000_000_000, ReserveB: 50_000_000_000, FeeBps: 10,
	})
	shallow := domain.NewConstantProductVenue(domain.VenueParams{
		ID: "shallow", TokenA: asset.IDSOL, TokenB: asset.IDUSDC,
		ReserveA: 750_000_000_000, ReserveB: 37_500_000_000, FeeBps: 20,
	})
	quote := func(v domain.Venue, amount uint64) domain.Quote {
		t.Helper()
		q, err := v.Quote(amount, domain.AToB)
		if err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
		return q
	}

	split, err := domain.NewSplitRoute([]domain.Quote{quote(deep, 30_000_000_000), quote(shallow, 20_000_000_000)})
	if err != nil {
		t.Fatal(err)
	}
	single := domain.NewSingleRoute(quote(deep, 50_000_000_000))
	req := domain.Request{TokenIn: asset.IDSOL, TokenOut: asset.IDUSDC, AmountIn: 50_000_000_000}

	tests := []struct {
		name    string
		res     *app.Result
		want    string
		present bool
	}{
		{
			name:    "split beats single",
			res:     &app.Result{Request: req, Best: split, Routes: []*domain.Route{split, single}},
			want:    "+203.22 bps vs best single venue",
			present: true,
		},
		{
			name: "single is best",
			res:  &app.Result{Request: req, Best: single, Routes: []*domain.Route{single}},
			want: "vs best single venue",
		},
		{
			name: "no single route to compare",
			res:  &app.Result{Request: req, Best: split, Routes: []*domain.Route{split}},
			want: "vs best single venue",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsoleReporterTo(&buf, asset.DefaultRegistry()).Report(tt.res)
			if got := strings.Contains(buf.String(), tt.want); got != tt.present {
				t.Errorf("output contains %q = %v, want %v:\n%s", tt.want, got, tt.present, buf.String())
			}
		})
	}
}

func TestConsoleReporter_NoRoute(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf, asset.DefaultRegistry())

	r.Report(nil)
	if buf.Len() != 0 {
		t.Errorf("Report(nil) wrote %q", buf.String())
	}

	r.Report(&app.Result{
		Request:  domain.Request{TokenIn: asset.IDSOL, TokenOut: asset.IDORCA, AmountIn: 1},
		Failures: map[domain.Strategy]error{domain.StrategySingle: apperror.New(apperror.CodeNoRouteFound)},
	})
	out := buf.String()
	if !strings.Contains(out, "No route found") || strings.Contains(out, "Best route") {
		t.Errorf("Report() output:\n%s", out)
	}
}

func TestConsoleReporter_Path(t *testing.T) {
	reg := asset.DefaultRegistry()
	r := NewConsoleReporterTo(&bytes.Buffer{}, reg)

	deep := domain.NewConstantProductVenue(domain.VenueParams{
		ID: "deep", TokenA: asset.IDSOL, TokenB: asset.IDUSDC,
		ReserveA: 1_000_000_000_000, ReserveB: 50_000_000_000, FeeBps: 10,
	})
	shallow := domain.NewConstantProductVenue(domain.VenueParams{
		ID: "shallow", TokenA: asset.IDSOL, TokenB: asset.IDUSDC,
		ReserveA: 750_000_000_000, ReserveB: 37_500_000_000, FeeBps: 20,
	})
	ray := domain.NewConstantProductVenue(domain.VenueParams{
		ID: "usdc-ray", TokenA: asset.IDUSDC, TokenB: asset.IDRAY,
		ReserveA: 20_000_000_000, ReserveB: 10_000_000_000, FeeBps: 25,
	})

	q1, err := deep.Quote(30_000_000_000, domain.AToB)
	if err != nil {
		t.Fatal(err)
	}
	q2, err := shallow.Quote(20_000_000_000, domain.AToB)
	if err != nil {
		t.Fatal(err)
	}
	split, err := domain.NewSplitRoute([]domain.Quote{q1, q2})
	if err != nil {
		t.Fatal(err)
	}

	h1, err := deep.Quote(10_000_000_000, domain.AToB)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ray.Quote(h1.AmountOut, domain.AToB)
	if err != nil {
		t.Fatal(err)
	}
	multi, err := domain.NewMultiHopRoute([]domain.Quote{h1, h2})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		route *domain.Route
		want  string
	}{
		{"split shares", split, "deep 60% + shallow 40%"},
		{"multi-hop chain", multi, "SOL → [deep] USDC → [usdc-ray] RAY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.path(tt.route); got != tt.want {
				t.Errorf("path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleReporter_ReportPlan(t *testing.T) {
	route := raydiumRoute(t, 10_000_000_000)
	plan := &app.ExecutionPlan{
		RouteID:      route.IDHex(),
		Strategy:     route.Strategy(),
		Steps:        route.Hops(),
		AmountIn:     route.AmountIn(),
		QuotedOut:    route.AmountOut(),
		MinAmountOut: route.MinAmountOut(50),
		SlippageBps:  50,
	}

	var buf bytes.Buffer
	NewConsoleReporterTo(&buf, asset.DefaultRegistry()).ReportPlan(plan)
	out := buf.String()

	for _, want := range []string{"Execution plan (dry run)", "493.824104 USDC", "491.354983 USDC (slippage 50 bps)"} {
		if !strings.Contains(out, want) {
			t.Errorf("ReportPlan() output missing %q:\n%s", want, out)
		}
	}
}
