package infra

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	pricing "github.com/fd1az/solana-router/business/pricing/domain"
	"github.com/fd1az/solana-router/business/routing/app"
	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/asset"
	"github.com/fd1az/solana-router/pkg/ui"
	"github.com/fd1az/solana-router/pkg/ui/components"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out      io.Writer
	registry *asset.Registry
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter(registry *asset.Registry) *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout, registry)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer, registry *asset.Registry) *ConsoleReporter {
	return &ConsoleReporter{out: out, registry: registry}
}

// Report prints the ranked routes and the best route's legs.
func (r *ConsoleReporter) Report(res *app.Result) {
	if res == nil {
		return
	}
	req := res.Request

	title := fmt.Sprintf("%s → %s  ·  %s",
		r.symbol(req.TokenIn), r.symbol(req.TokenOut), r.amount(req.TokenIn, req.AmountIn))
	table := components.NewRoutesComponent(title)

	for i, route := range res.Routes {
		table.Add(components.RouteRow{
			Rank:      i + 1,
			Strategy:  string(route.Strategy()),
			Path:      r.path(route),
			AmountOut: r.amount(route.TokenOut(), route.AmountOut()),
			ImpactBps: route.PriceImpactBps(),
			Hops:      route.HopCount(),
			Best:      route == res.Best,
		})
	}

	failed := make([]string, 0, len(res.Failures))
	for st := range res.Failures {
		failed = append(failed, string(st))
	}
	sort.Strings(failed)
	for _, st := range failed {
		table.AddFailure(components.FailureRow{Strategy: st, Reason: res.Failures[domain.Strategy(st)].Error()})
	}

	fmt.Fprintln(r.out, table.View())

	if res.Best == nil {
		return
	}
	fmt.Fprintln(r.out, ui.HeaderStyle.Render("Best route "+res.Best.IDHex()))
	for i, h := range res.Best.Hops() {
		fmt.Fprintf(r.out, "  %d. %-24s %s → %s  (%s bps)\n",
			i+1,
			h.Venue.String(),
			r.amount(h.TokenIn(), h.AmountIn),
			r.amount(h.TokenOut(), h.AmountOut),
			ui.ImpactStyle(h.PriceImpactBps).Render(fmt.Sprint(h.PriceImpactBps)),
		)
	}
	if p, ok := r.price(res.Best); ok {
		fmt.Fprintf(r.out, "  effective %s\n", p)
	}
	if single := bestSingle(res.Routes); single != nil && res.Best.Strategy() != domain.StrategySingle {
		gain := pricing.ImprovementBps(single.AmountOut(), res.Best.AmountOut())
		sign := ""
		if gain.IsPositive() {
			sign = "+"
		}
		fmt.Fprintf(r.out, "  %s%s bps vs best single venue\n", sign, gain.StringFixed(2))
	}
	if !res.SnapshotAt.IsZero() {
		fmt.Fprintln(r.out, ui.MutedValue.Render("  snapshot "+res.SnapshotAt.Format("2006-01-02 15:04:05Z07:00")))
	}
}

// ReportPlan prints an execution plan.
func (r *ConsoleReporter) ReportPlan(plan *app.ExecutionPlan) {
	if plan == nil || len(plan.Steps) == 0 {
		return
	}
	out := plan.Steps[len(plan.Steps)-1].TokenOut()
	fmt.Fprintln(r.out, ui.HeaderStyle.Render("Execution plan (dry run)"))
	fmt.Fprintf(r.out, "  quoted out:  %s\n", r.amount(out, plan.QuotedOut))
	fmt.Fprintf(r.out, "  min out:     %s (slippage %d bps)\n", r.amount(out, plan.MinAmountOut), plan.SlippageBps)
}

func (r *ConsoleReporter) path(route *domain.Route) string {
	hops := route.Hops()
	if route.Strategy() == domain.StrategySplit {
		parts := make([]string, len(hops))
		for i, h := range hops {
			pct := float64(h.AmountIn) * 100 / float64(route.AmountIn())
			parts[i] = fmt.Sprintf("%s %.0f%%", h.Venue.ID(), pct)
		}
		return strings.Join(parts, " + ")
	}

	parts := make([]string, 0, len(hops)+1)
	parts = append(parts, r.symbol(route.TokenIn()))
	for _, h := range hops {
		parts = append(parts, fmt.Sprintf("[%s] %s", h.Venue.ID(), r.symbol(h.TokenOut())))
	}
	return strings.Join(parts, " → ")
}

// bestSingle returns the highest ranked single-venue route. routes is
// already ranked.
func bestSingle(routes []*domain.Route) *domain.Route {
	for _, route := range routes {
		if route.Strategy() == domain.StrategySingle {
			return route
		}
	}
	return nil
}

func (r *ConsoleReporter) price(route *domain.Route) (asset.Price, bool) {
	in, okIn := r.registry.Get(route.TokenIn())
	out, okOut := r.registry.Get(route.TokenOut())
	if !okIn || !okOut {
		return asset.Price{}, false
	}
	p, err := asset.PriceFromAmounts(asset.NewAmount(in, route.AmountIn()), asset.NewAmount(out, route.AmountOut()))
	return p, err == nil
}

func (r *ConsoleReporter) symbol(id asset.AssetID) string {
	if a, ok := r.registry.Get(id); ok {
		return a.Symbol()
	}
	return id.Short()
}

func (r *ConsoleReporter) amount(id asset.AssetID, raw uint64) string {
	if a, ok := r.registry.Get(id); ok {
		return asset.NewAmount(a, raw).StringFixed(int32(min(a.Decimals(), 6)))
	}
	return fmt.Sprintf("%d %s", raw, id.Short())
}
