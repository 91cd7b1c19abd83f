package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentiment labels the backend assigns to a headline or text.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Signal is the response of GET /signal: a Buy/Hold/Sell hint combining
// headline sentiment with the recent price trend. Scores lie in [-1, 1].
type Signal struct {
	Ticker       string         `json:"ticker"`
	Counts       map[string]int `json:"counts"`
	TrendScore   float64        `json:"trend_score"`
	SentScore    float64        `json:"sent_score"`
	ComboScore   float64        `json:"combo_score"`
	Action       string         `json:"action"`
	Confidence   float64        `json:"confidence"`
	ArticlesUsed int            `json:"articles_used"`
}

// AnalysisOptions narrows GET /stocks/{ticker}/analysis. Zero fields use the server defaults.
type AnalysisOptions struct {
	Days        int
	TopNews     int
	HorizonDays int
}

// AnalysisPosition is the caller's holding as seen by the analysis endpoint.
type AnalysisPosition struct {
	Quantity    decimal.Decimal `json:"quantity"`
	AvgCost     decimal.Decimal `json:"avg_cost"`
	LastPrice   decimal.Decimal `json:"last_price"`
	MarketValue decimal.Decimal `json:"market_value"`
	PnL         decimal.Decimal `json:"pnl_abs"`
	PnLPercent  decimal.Decimal `json:"pnl_pct"`
}

// HeadlineSentiment is one scored news headline.
type HeadlineSentiment struct {
	Title string  `json:"title"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
	URL   string  `json:"url,omitempty"`
}

// Estimate is the forward-looking part of an analysis. Percentages are already x100.
type Estimate struct {
	ExpectedReturnPct float64 `json:"expected_return_pct"`
	RiskVolAnnPct     float64 `json:"risk_vol_ann_pct"`
	VaR95DailyPct     float64 `json:"var_95_daily_pct"`
	SentimentIndex    float64 `json:"sentiment_index"`
}

// Suggestion is the rule-based action attached to an analysis.
type Suggestion struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	TrendHint  string  `json:"trend_hint"`
}

// StockAnalysis is the response of GET /stocks/{ticker}/analysis.
// Position is nil when the caller does not hold the ticker.
type StockAnalysis struct {
	Ticker          string              `json:"ticker"`
	AsOf            time.Time           `json:"as_of"`
	Position        *AnalysisPosition   `json:"position"`
	Price           decimal.Decimal     `json:"price"`
	TrendScore      float64             `json:"trend_score"`
	VolatilityAnn   float64             `json:"volatility_ann"`
	NewsCount       int                 `json:"news_count"`
	SentimentCounts map[string]int      `json:"sentiment_counts"`
	Sentiments      []HeadlineSentiment `json:"sentiments"`
	Estimated       Estimate            `json:"estimated"`
	Suggestion      Suggestion          `json:"suggestion"`
	Note            string              `json:"note,omitempty"`
}

// TextSentiment is one result of POST /sentiment/analyze.
type TextSentiment struct {
	Label      string             `json:"label"`
	Score      float64            `json:"score"`
	AllScores  map[string]float64 `json:"all_scores,omitempty"`
	Confidence string             `json:"confidence,omitempty"`
}

// SentimentRequest is the body of POST /sentiment/analyze.
type SentimentRequest struct {
	Texts      []string `json:"texts"`
	Preprocess bool     `json:"preprocess"`
	UseCache   bool     `json:"use_cache"`
}
