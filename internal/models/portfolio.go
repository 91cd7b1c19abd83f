// Package models defines the data exchanged with the brokerage backend.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the server-reported cash and holdings snapshot.
// Aggregates are displayed as reported; the client never recomputes TotalValue.
type Portfolio struct {
	CashBalance     decimal.Decimal `json:"cash_balance"`
	Holdings        []Holding       `json:"holdings"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	TotalPnLPercent decimal.Decimal `json:"total_pnl_percent"`
	HoldingsCount   int             `json:"holdings_count"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// Holding is a non-zero open position in one ticker.
type Holding struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	LastPrice    decimal.Decimal `json:"last_price"`
	CurrentValue decimal.Decimal `json:"current_value"`
	PnL          decimal.Decimal `json:"pnl"`
	PnLPercent   decimal.Decimal `json:"pnl_percent"`
	Weight       decimal.Decimal `json:"weight"`
}

// FindHolding returns the holding for ticker, or nil.
func (p *Portfolio) FindHolding(ticker string) *Holding {
	if p == nil {
		return nil
	}
	for i := range p.Holdings {
		if p.Holdings[i].Ticker == ticker {
			return &p.Holdings[i]
		}
	}
	return nil
}

// HoldingDetail is the response of GET /portfolio/holdings/{ticker}.
type HoldingDetail struct {
	Holding         Holding         `json:"holding"`
	Trades          []Trade         `json:"trades"`
	TradeCount      int             `json:"trade_count"`
	PortfolioWeight decimal.Decimal `json:"portfolio_weight"`
}

// ClosePositionResult is the response of DELETE /portfolio/holdings/{ticker}.
type ClosePositionResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	TradeID      string          `json:"trade_id"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Price        decimal.Decimal `json:"price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	RealizedPnL  decimal.Decimal `json:"realized_pnl"`
}

// CashMovement is the response of the deposit and withdraw endpoints.
type CashMovement struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	AmountDeposited decimal.Decimal `json:"amount_deposited"`
	AmountWithdrawn decimal.Decimal `json:"amount_withdrawn"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Method          string          `json:"method,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// DepositRequest is the body of POST /portfolio/deposit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
}

// Performance periods accepted by GET /portfolio/performance.
var PerformancePeriods = []string{"1D", "1W", "1M", "3M", "6M", "1Y", "ALL"}

// ValidPerformancePeriod reports whether period is one of PerformancePeriods.
func ValidPerformancePeriod(period string) bool {
	for _, p := range PerformancePeriods {
		if p == period {
			return true
		}
	}
	return false
}

// PerformerSummary names the best or worst holding.
type PerformerSummary struct {
	Ticker     string          `json:"ticker"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPercent decimal.Decimal `json:"pnl_percent"`
}

// Performance is the response of GET /portfolio/performance.
type Performance struct {
	TotalReturn        decimal.Decimal   `json:"total_return"`
	TotalReturnPercent decimal.Decimal   `json:"total_return_percent"`
	BestPerformer      *PerformerSummary `json:"best_performer"`
	WorstPerformer     *PerformerSummary `json:"worst_performer"`
	WinningTrades      int               `json:"winning_trades"`
	LosingTrades       int               `json:"losing_trades"`
	WinRate            decimal.Decimal   `json:"win_rate"`
	AvgWin             decimal.Decimal   `json:"avg_win"`
	AvgLoss            decimal.Decimal   `json:"avg_loss"`
	SharpeRatio        *decimal.Decimal  `json:"sharpe_ratio"`
}
