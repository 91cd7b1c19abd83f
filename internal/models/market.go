package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the response of GET /price. Change fields are optional on the wire.
type Quote struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

// PriceHistory is the response of GET /history.
type PriceHistory struct {
	Ticker string            `json:"ticker"`
	Days   int               `json:"days"`
	Closes []decimal.Decimal `json:"closes"`
}

// NewsArticle is one entry of the market news feed.
type NewsArticle struct {
	Headline  string    `json:"headline"`
	Summary   string    `json:"summary,omitempty"`
	Source    string    `json:"source,omitempty"`
	URL       string    `json:"url,omitempty"`
	Published time.Time `json:"datetime,omitempty"`
}

// NewsFeed is the response of GET /news.
type NewsFeed struct {
	Ticker   string        `json:"ticker"`
	Articles []NewsArticle `json:"articles"`
}
