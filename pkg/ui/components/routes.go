// Package components provides reusable terminal output components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/solana-router/pkg/ui"
)

// RouteRow is one ranked route in the table.
type RouteRow struct {
	Rank      int
	Strategy  string
	Path      string
	AmountOut string
	ImpactBps uint16
	Hops      int
	Best      bool
}

// FailureRow is a strategy that found nothing.
type FailureRow struct {
	Strategy string
	Reason   string
}

// RoutesComponent renders ranked routes and failed strategies.
type RoutesComponent struct {
	title    string
	rows     []RouteRow
	failures []FailureRow
}

// NewRoutesComponent creates a new routes component.
func NewRoutesComponent(title string) *RoutesComponent {
	return &RoutesComponent{title: title}
}

// Add appends a route row.
func (c *RoutesComponent) Add(row RouteRow) {
	c.rows = append(c.rows, row)
}

// AddFailure appends a failed strategy.
func (c *RoutesComponent) AddFailure(row FailureRow) {
	c.failures = append(c.failures, row)
}

// View renders the component.
func (c *RoutesComponent) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(c.title))
	b.WriteString("\n\n")

	if len(c.rows) == 0 {
		b.WriteString(ui.NegativeValue.Render("No route found"))
		b.WriteString("\n")
	} else {
		b.WriteString("┌───┬──────────┬──────────────────────────────────────────┬──────────────────────┬──────────┬──────┐\n")
		b.WriteString("│ # │ Strategy │ Path                                     │ Amount out           │ Impact   │ Hops │\n")
		b.WriteString("├───┼──────────┼──────────────────────────────────────────┼──────────────────────┼──────────┼──────┤\n")
		for _, row := range c.rows {
			marker := " "
			style := lipgloss.NewStyle()
			if row.Best {
				marker = "★"
				style = ui.PositiveValue.Bold(true)
			}
			impact := fmt.Sprintf("%6dbp", row.ImpactBps)
			fmt.Fprintf(&b, "│%s%d │ %-8s │ %-40s │ %s │ %s │ %4d │\n",
				marker,
				row.Rank,
				row.Strategy,
				truncate(row.Path, 40),
				style.Render(fmt.Sprintf("%20s", row.AmountOut)),
				ui.ImpactStyle(row.ImpactBps).Render(fmt.Sprintf("%8s", impact)),
				row.Hops,
			)
		}
		b.WriteString("└───┴──────────┴──────────────────────────────────────────┴──────────────────────┴──────────┴──────┘\n")
	}

	for _, f := range c.failures {
		b.WriteString(ui.MutedValue.Render(fmt.Sprintf("  %s: %s", f.Strategy, f.Reason)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
