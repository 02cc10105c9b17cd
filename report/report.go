package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rustyeddy/investflow/gold"
	"github.com/rustyeddy/investflow/journal"
	"github.com/rustyeddy/investflow/ledger"
	"github.com/rustyeddy/investflow/pricing"
	"github.com/rustyeddy/investflow/sim"
)

// Formatter renders domain values as markdown in one currency.
type Formatter struct {
	Currency string
}

func (f Formatter) money(x float64) string { return Money(x, f.Currency) }

// Portfolio renders a valuation. Unpriced holdings show N/A.
func (f Formatter) Portfolio(v ledger.Valuation) string {
	var b strings.Builder
	b.WriteString("## Portfolio\n\n")
	fmt.Fprintf(&b, "**Cash:** %s\n\n", f.money(v.Cash))

	if len(v.Holdings) == 0 {
		b.WriteString("_No positions._\n\n")
	} else {
		b.WriteString("| Symbol | Qty | Avg Cost | Price | Value | Profit/Loss |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, h := range v.Holdings {
			if !h.Priced {
				fmt.Fprintf(&b, "| %s | %g | %s | N/A | N/A | N/A |\n",
					h.Symbol, h.Quantity, f.money(h.AverageCost))
				continue
			}
			fmt.Fprintf(&b, "| %s | %g | %s | %s | %s | %s (%s) |\n",
				h.Symbol, h.Quantity, f.money(h.AverageCost), f.money(h.Price),
				f.money(h.Value), f.money(h.Profit), Percent(h.ProfitPct))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Total:** %s\n", f.money(v.Total))
	return b.String()
}

// Fill renders one executed stock trade.
func (f Formatter) Fill(fl ledger.Fill) string {
	return fmt.Sprintf("%s %g %s @ %s (%s). Cash: %s\n",
		fl.Side, fl.Quantity, fl.Symbol, f.money(fl.Price), f.money(fl.Amount), f.money(fl.Cash))
}

// Gold renders the gold account summary.
func (f Formatter) Gold(s gold.Summary) string {
	var b strings.Builder
	b.WriteString("## Gold portfolio\n\n")
	fmt.Fprintf(&b, "- **Balance:** %s\n", f.money(s.Balance))
	if s.GoldOwned == 0 {
		b.WriteString("- **Gold Owned:** 0 oz\n")
		fmt.Fprintf(&b, "- **Current Gold Price:** %s\n", f.money(s.CurrentPrice))
		fmt.Fprintf(&b, "- **Profit/Loss:** %s (%s)\n", f.money(0), Percent(0))
		return b.String()
	}
	fmt.Fprintf(&b, "- **Gold Owned:** %s\n", Ounces(s.GoldOwned))
	fmt.Fprintf(&b, "- **Avg Purchase Price:** %s\n", f.money(s.AvgPurchasePrice))
	fmt.Fprintf(&b, "- **Current Gold Price:** %s\n", f.money(s.CurrentPrice))
	fmt.Fprintf(&b, "- **Current Value:** %s\n", f.money(s.CurrentValue))
	fmt.Fprintf(&b, "- **Profit/Loss:** %s (%s)\n", f.money(s.Profit), Percent(s.ProfitPct))
	return b.String()
}

// Simulation renders every simulated year followed by the sale.
func (f Formatter) Simulation(r sim.Result) string {
	var b strings.Builder
	b.WriteString("## Gold simulation\n\n")
	fmt.Fprintf(&b, "Starting price: %s\n\n", f.money(r.StartingPrice))
	b.WriteString("| Year | Price | Profit | Profit % |\n")
	b.WriteString("|---:|---:|---:|---:|\n")
	for _, y := range r.Years {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			y.Year, f.money(y.Price), f.money(y.Profit), Percent(y.ProfitPct))
	}
	b.WriteString("\n### Best year to sell\n\n")
	fmt.Fprintf(&b, "- **Year:** %d\n", r.Best.Year)
	fmt.Fprintf(&b, "- **Sell Price:** %s\n", f.money(r.Best.Price))
	fmt.Fprintf(&b, "- **Cash Received:** %s\n", f.money(r.CashReceived))
	fmt.Fprintf(&b, "- **Profit:** %s\n", f.money(r.Best.Profit))
	return b.String()
}

// Quote renders a live price line with its direction marker.
func (f Formatter) Quote(q pricing.Quote) string {
	line := fmt.Sprintf("%s %s", q.Symbol, f.money(q.Price))
	if arrow := q.Direction.Arrow(); arrow != "" {
		line += fmt.Sprintf(" %s %s", arrow, f.money(q.Change()))
	}
	return line
}

// Trades renders journal records, newest first as given.
func (f Formatter) Trades(recs []journal.TradeRecord) string {
	var b strings.Builder
	b.WriteString("## Trades\n\n")
	if len(recs) == 0 {
		b.WriteString("_No trades recorded._\n")
		return b.String()
	}
	b.WriteString("| Time | Account | Side | Symbol | Qty | Price | Amount | Cash After | ID |\n")
	b.WriteString("|---|---|---|---|---:|---:|---:|---:|---|\n")
	for _, t := range recs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %g | %s | %s | %s | `%s` |\n",
			t.Time.UTC().Format(time.DateTime), t.Account, t.Side, t.Symbol, t.Quantity,
			f.money(t.Price), f.money(t.Amount), f.money(t.CashAfter), t.TradeID)
	}
	return b.String()
}

// Favorites renders the watch list.
func Favorites(list []string) string {
	if len(list) == 0 {
		return "_No favorites._\n"
	}
	var b strings.Builder
	for _, t := range list {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	return b.String()
}

// Render styles markdown for the terminal, or returns it untouched when
// plain is set.
func Render(md string, plain bool) (string, error) {
	if plain {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
