// Package render formats desk data as markdown for the CLI and MCP tools.
package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/trade"
	"github.com/bobmcallan/tradedesk/internal/watchlist"
)

func Money(v decimal.Decimal) string       { return common.FormatMoney(v, common.DefaultCurrency) }
func SignedMoney(v decimal.Decimal) string { return common.FormatSignedMoney(v, common.DefaultCurrency) }
func SignedPct(v decimal.Decimal) string   { return common.FormatSignedPct(v) }

// Portfolio renders the server-reported snapshot as markdown. Totals are shown as reported.
func Portfolio(p *models.Portfolio) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio\n\n")
	sb.WriteString(fmt.Sprintf("**Cash:** %s\n", Money(p.CashBalance)))
	sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", Money(p.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Total P&L:** %s (%s)\n", SignedMoney(p.TotalPnL), SignedPct(p.TotalPnLPercent)))
	if !p.LastUpdated.IsZero() {
		sb.WriteString(fmt.Sprintf("**Updated:** %s\n", p.LastUpdated.Format("2006-01-02 15:04")))
	}
	sb.WriteString("\n")

	if len(p.Holdings) == 0 {
		sb.WriteString("No open positions.\n")
		return sb.String()
	}

	sb.WriteString("| Symbol | Qty | Avg Cost | Value | P&L | P&L % |\n")
	sb.WriteString("|--------|-----|----------|-------|-----|-------|\n")
	for _, h := range p.Holdings {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			h.Ticker,
			common.FormatQuantity(h.Quantity),
			Money(h.AvgCost),
			Money(h.CurrentValue),
			SignedMoney(h.PnL),
			SignedPct(h.PnLPercent),
		))
	}
	return sb.String()
}

func HoldingDetail(d *models.HoldingDetail) string {
	var sb strings.Builder
	h := d.Holding

	sb.WriteString(fmt.Sprintf("# %s\n\n", h.Ticker))
	sb.WriteString(fmt.Sprintf("**Quantity:** %s\n", common.FormatQuantity(h.Quantity)))
	sb.WriteString(fmt.Sprintf("**Avg Cost:** %s\n", Money(h.AvgCost)))
	sb.WriteString(fmt.Sprintf("**Value:** %s\n", Money(h.CurrentValue)))
	sb.WriteString(fmt.Sprintf("**P&L:** %s (%s)\n", SignedMoney(h.PnL), SignedPct(h.PnLPercent)))
	sb.WriteString(fmt.Sprintf("**Weight:** %s%%\n\n", d.PortfolioWeight.StringFixed(2)))

	if len(d.Trades) > 0 {
		sb.WriteString(fmt.Sprintf("## Trades (%d)\n\n", d.TradeCount))
		sb.WriteString(TradeTable(d.Trades))
	}
	return sb.String()
}

func TradeTable(trades []models.Trade) string {
	var sb strings.Builder
	sb.WriteString("| Date | Side | Symbol | Qty | Price | Total | Commission |\n")
	sb.WriteString("|------|------|--------|-----|-------|-------|------------|\n")
	for _, t := range trades {
		date := "-"
		if !t.ExecutedAt.IsZero() {
			date = t.ExecutedAt.Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			date, t.Side, t.Ticker,
			common.FormatQuantity(t.Quantity),
			Money(t.Price),
			Money(t.TotalValue),
			Money(t.Commission),
		))
	}
	return sb.String()
}

func TradeHistory(h *models.TradeHistory) string {
	if len(h.Trades) == 0 {
		return "No trades found."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Trade History (%d shown, offset %d)\n\n", h.Count, h.Offset))
	sb.WriteString(TradeTable(h.Trades))
	return sb.String()
}

func Cost(req models.TradeRequest, cost trade.Cost) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s @ %s\n", req.Side, common.FormatQuantity(req.Quantity), req.Ticker, Money(req.Price)))
	sb.WriteString(fmt.Sprintf("Value: %s\n", Money(cost.TotalValue)))
	sb.WriteString(fmt.Sprintf("Commission: %s\n", Money(cost.Commission)))
	if req.Side == models.SideSell {
		sb.WriteString(fmt.Sprintf("Net proceeds: %s\n", Money(cost.TotalCost)))
	} else {
		sb.WriteString(fmt.Sprintf("Total cost: %s\n", Money(cost.TotalCost)))
	}
	return sb.String()
}

func Receipt(r *models.TradeReceipt) string {
	var sb strings.Builder
	if r.Message != "" {
		sb.WriteString(r.Message + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Trade ID:** %s\n", r.TradeID))
	sb.WriteString(fmt.Sprintf("**Order:** %s %s %s @ %s\n", r.Side, common.FormatQuantity(r.Quantity), r.Ticker, Money(r.Price)))
	sb.WriteString(fmt.Sprintf("**Value:** %s\n", Money(r.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Commission:** %s\n", Money(r.Commission)))
	return sb.String()
}

func Close(r *models.ClosePositionResult) string {
	var sb strings.Builder
	if r.Message != "" {
		sb.WriteString(r.Message + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Sold:** %s @ %s\n", common.FormatQuantity(r.QuantitySold), Money(r.Price)))
	sb.WriteString(fmt.Sprintf("**Proceeds:** %s\n", Money(r.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Realized P&L:** %s\n", SignedMoney(r.RealizedPnL)))
	return sb.String()
}

func CashMovement(m *models.CashMovement) string {
	var sb strings.Builder
	if m.Message != "" {
		sb.WriteString(m.Message + "\n")
	}
	sb.WriteString(fmt.Sprintf("New balance: %s\n", Money(m.NewBalance)))
	return sb.String()
}

func Quote(q *models.Quote) string {
	line := fmt.Sprintf("%s: %s", q.Ticker, Money(q.Price))
	if !q.Change.IsZero() || !q.ChangePercent.IsZero() {
		line += fmt.Sprintf(" (%s, %s)", SignedMoney(q.Change), SignedPct(q.ChangePercent))
	}
	return line
}

// Watchlist renders one row per ticker; failed lookups are marked per row.
func Watchlist(entries []watchlist.Entry) string {
	if len(entries) == 0 {
		return "Watchlist is empty."
	}
	var sb strings.Builder
	sb.WriteString("| Symbol | Price | Change | Change % |\n")
	sb.WriteString("|--------|-------|--------|----------|\n")
	for _, e := range entries {
		switch {
		case e.Failed():
			sb.WriteString(fmt.Sprintf("| %s | unavailable | - | - |\n", e.Ticker))
		case e.Pending():
			sb.WriteString(fmt.Sprintf("| %s | - | - | - |\n", e.Ticker))
		default:
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				e.Ticker,
				Money(e.Quote.Price),
				SignedMoney(e.Quote.Change),
				SignedPct(e.Quote.ChangePercent),
			))
		}
	}
	return sb.String()
}

func Performance(period string, p *models.Performance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Performance (%s)\n\n", period))
	sb.WriteString(fmt.Sprintf("**Total Return:** %s (%s)\n", SignedMoney(p.TotalReturn), SignedPct(p.TotalReturnPercent)))
	sb.WriteString(fmt.Sprintf("**Winning / Losing Trades:** %d / %d (win rate %s%%)\n", p.WinningTrades, p.LosingTrades, p.WinRate.StringFixed(1)))
	if p.BestPerformer != nil {
		sb.WriteString(fmt.Sprintf("**Best:** %s %s\n", p.BestPerformer.Ticker, SignedPct(p.BestPerformer.PnLPercent)))
	}
	if p.WorstPerformer != nil {
		sb.WriteString(fmt.Sprintf("**Worst:** %s %s\n", p.WorstPerformer.Ticker, SignedPct(p.WorstPerformer.PnLPercent)))
	}
	if p.SharpeRatio != nil {
		sb.WriteString(fmt.Sprintf("**Sharpe Ratio:** %s\n", p.SharpeRatio.StringFixed(2)))
	}
	return sb.String()
}

func News(feed *models.NewsFeed) string {
	if len(feed.Articles) == 0 {
		return "No news articles."
	}
	var sb strings.Builder
	title := "Market News"
	if feed.Ticker != "" {
		title = feed.Ticker + " News"
	}
	sb.WriteString("# " + title + "\n\n")
	for _, a := range feed.Articles {
		sb.WriteString("- **" + a.Headline + "**")
		if a.Source != "" {
			sb.WriteString(" (" + a.Source + ")")
		}
		sb.WriteString("\n")
		if a.Summary != "" {
			sb.WriteString("  " + truncate(a.Summary, 240) + "\n")
		}
		if a.URL != "" {
			sb.WriteString("  " + a.URL + "\n")
		}
	}
	return sb.String()
}

func PriceHistory(h *models.PriceHistory) string {
	if len(h.Closes) == 0 {
		return fmt.Sprintf("No price history for %s.", h.Ticker)
	}
	first := h.Closes[0]
	last := h.Closes[len(h.Closes)-1]
	low, high := first, first
	for _, c := range h.Closes {
		low = decimal.Min(low, c)
		high = decimal.Max(high, c)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s: last %d days\n\n", h.Ticker, h.Days))
	sb.WriteString(fmt.Sprintf("**First / Last Close:** %s / %s\n", Money(first), Money(last)))
	sb.WriteString(fmt.Sprintf("**Low / High:** %s / %s\n", Money(low), Money(high)))
	if first.IsPositive() {
		change := last.Sub(first).Div(first).Mul(decimal.NewFromInt(100))
		sb.WriteString(fmt.Sprintf("**Change:** %s\n", SignedPct(change)))
	}
	return sb.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
