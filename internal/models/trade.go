package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts buy/sell in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", fmt.Errorf("invalid side %q (expected BUY or SELL)", s)
}

// Trade is an executed order. Trades are append-only; the client never edits them.
type Trade struct {
	ID         string          `json:"id,omitempty"`
	Ticker     string          `json:"ticker"`
	Side       Side            `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
	TotalValue decimal.Decimal `json:"total_value"`
	Status     string          `json:"status,omitempty"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// TradeRequest is the body of POST /portfolio/trade.
type TradeRequest struct {
	Ticker   string          `json:"ticker"`
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// TradeReceipt is the response of POST /portfolio/trade.
type TradeReceipt struct {
	TradeID    string          `json:"trade_id"`
	Ticker     string          `json:"ticker"`
	Side       Side            `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Commission decimal.Decimal `json:"commission"`
	ExecutedAt time.Time       `json:"executed_at"`
	Message    string          `json:"message"`
}

// TradeFilter narrows GET /portfolio/trades. Zero values are omitted.
type TradeFilter struct {
	Limit  int
	Offset int
	Ticker string
	Side   Side
}

// TradeHistory is the response of GET /portfolio/trades.
type TradeHistory struct {
	Trades []Trade `json:"trades"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}
