package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

func sentimentCounts(counts map[string]int) string {
	return fmt.Sprintf("%d positive, %d neutral, %d negative",
		counts[models.SentimentPositive], counts[models.SentimentNeutral], counts[models.SentimentNegative])
}

func Signal(s *models.Signal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Signal: %s\n\n", s.Ticker, s.Action))
	sb.WriteString(fmt.Sprintf("**Confidence:** %.0f%%\n", s.Confidence*100))
	sb.WriteString(fmt.Sprintf("**Headlines:** %s (%d used)\n", sentimentCounts(s.Counts), s.ArticlesUsed))
	sb.WriteString(fmt.Sprintf("**Scores:** sentiment %+.2f, trend %+.2f, combined %+.2f\n", s.SentScore, s.TrendScore, s.ComboScore))
	return sb.String()
}

// Analysis renders a stock analysis. The position block appears only when the ticker is held.
func Analysis(a *models.StockAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Analysis\n\n", a.Ticker))
	sb.WriteString(fmt.Sprintf("**Price:** %s\n", Money(a.Price)))
	sb.WriteString(fmt.Sprintf("**Suggestion:** %s (%.0f%% confidence, %s)\n",
		a.Suggestion.Action, a.Suggestion.Confidence*100, a.Suggestion.TrendHint))
	sb.WriteString(fmt.Sprintf("**Expected Return:** %+.2f%% | **Volatility (ann.):** %.2f%% | **VaR 95 (1d):** %.2f%%\n",
		a.Estimated.ExpectedReturnPct, a.Estimated.RiskVolAnnPct, a.Estimated.VaR95DailyPct))
	sb.WriteString(fmt.Sprintf("**Headlines:** %s\n", sentimentCounts(a.SentimentCounts)))

	if p := a.Position; p != nil {
		sb.WriteString("\n## Position\n\n")
		sb.WriteString(fmt.Sprintf("%s shares @ %s, worth %s\n", common.FormatQuantity(p.Quantity), Money(p.AvgCost), Money(p.MarketValue)))
		sb.WriteString(fmt.Sprintf("P&L: %s (%s)\n", SignedMoney(p.PnL), SignedPct(p.PnLPercent.Mul(decimal.NewFromInt(100)))))
	}

	if len(a.Sentiments) > 0 {
		sb.WriteString("\n## Headlines\n\n")
		for _, h := range a.Sentiments {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", h.Label, truncate(h.Title, 120)))
		}
	}
	if a.Note != "" {
		sb.WriteString("\n_" + a.Note + "_\n")
	}
	return sb.String()
}

// Sentiments pairs each text with its score, in input order.
func Sentiments(texts []string, results []models.TextSentiment) string {
	if len(results) == 0 {
		return "No sentiment results."
	}
	var sb strings.Builder
	sb.WriteString("| Text | Label | Score |\n")
	sb.WriteString("|------|-------|-------|\n")
	for i, r := range results {
		text := ""
		if i < len(texts) {
			text = truncate(texts[i], 60)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f |\n", text, r.Label, r.Score))
	}
	return sb.String()
}
