package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/models"
)

const (
	// MaxTradesLimit is the largest page the trade history endpoint serves.
	MaxTradesLimit = 500
	// MaxHistoryDays is the longest price history window the backend serves.
	MaxHistoryDays = 365
)

// GetPortfolio fetches a fresh cash/holdings snapshot.
func (c *Client) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := c.Request(ctx, http.MethodGet, "/portfolio", RequestOptions{}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitTrade sends a validated order.
func (c *Client) SubmitTrade(ctx context.Context, req models.TradeRequest) (*models.TradeReceipt, error) {
	var receipt models.TradeReceipt
	if err := c.Request(ctx, http.MethodPost, "/portfolio/trade", RequestOptions{Body: req}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ClosePosition sells the whole holding in ticker at the server's price.
func (c *Client) ClosePosition(ctx context.Context, ticker string) (*models.ClosePositionResult, error) {
	var result models.ClosePositionResult
	path := "/portfolio/holdings/" + url.PathEscape(ticker)
	if err := c.Request(ctx, http.MethodDelete, path, RequestOptions{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHolding returns one holding with its trades and portfolio weight.
func (c *Client) GetHolding(ctx context.Context, ticker string) (*models.HoldingDetail, error) {
	var detail models.HoldingDetail
	path := "/portfolio/holdings/" + url.PathEscape(ticker)
	if err := c.Request(ctx, http.MethodGet, path, RequestOptions{}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetTrades returns a page of trade history. Zero filter fields are left to server defaults.
func (c *Client) GetTrades(ctx context.Context, filter models.TradeFilter) (*models.TradeHistory, error) {
	if filter.Limit < 0 || filter.Limit > MaxTradesLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d", MaxTradesLimit)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	q := url.Values{}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Ticker != "" {
		q.Set("ticker", models.NormalizeTicker(filter.Ticker))
	}
	if filter.Side != "" {
		q.Set("side", string(filter.Side))
	}

	var history models.TradeHistory
	if err := c.Request(ctx, http.MethodGet, "/portfolio/trades", RequestOptions{Query: q}, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// GetPerformance returns the performance summary for period ("" means ALL).
func (c *Client) GetPerformance(ctx context.Context, period string) (*models.Performance, error) {
	if period == "" {
		period = "ALL"
	}
	if !models.ValidPerformancePeriod(period) {
		return nil, fmt.Errorf("invalid period %q (expected one of %v)", period, models.PerformancePeriods)
	}

	var perf models.Performance
	q := url.Values{"period": {period}}
	if err := c.Request(ctx, http.MethodGet, "/portfolio/performance", RequestOptions{Query: q}, &perf); err != nil {
		return nil, err
	}
	return &perf, nil
}

// GetPrice returns the current quote for ticker.
func (c *Client) GetPrice(ctx context.Context, ticker string) (*models.Quote, error) {
	var quote models.Quote
	q := url.Values{"ticker": {ticker}}
	if err := c.Request(ctx, http.MethodGet, "/price", RequestOptions{Query: q}, &quote); err != nil {
		return nil, err
	}
	if quote.Ticker == "" {
		quote.Ticker = ticker
	}
	return &quote, nil
}

// GetPriceHistory returns daily closes for the last days days. Responses are cached.
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, days int) (*models.PriceHistory, error) {
	if days < 1 || days > MaxHistoryDays {
		return nil, fmt.Errorf("days must be between 1 and %d", MaxHistoryDays)
	}

	var history models.PriceHistory
	q := url.Values{"ticker": {ticker}, "days": {strconv.Itoa(days)}}
	if err := c.Request(ctx, http.MethodGet, "/history", RequestOptions{Query: q, Cacheable: true}, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// GetNews returns the market news feed, optionally for one ticker. Responses are cached.
func (c *Client) GetNews(ctx context.Context, ticker string) (*models.NewsFeed, error) {
	q := url.Values{}
	if ticker != "" {
		q.Set("ticker", ticker)
	}

	var feed models.NewsFeed
	if err := c.Request(ctx, http.MethodGet, "/news", RequestOptions{Query: q, Cacheable: true}, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Deposit adds cash to the account.
func (c *Client) Deposit(ctx context.Context, amount decimal.Decimal, method string) (*models.CashMovement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount must be positive")
	}

	var result models.CashMovement
	body := models.DepositRequest{Amount: amount, Method: method}
	if err := c.Request(ctx, http.MethodPost, "/portfolio/deposit", RequestOptions{Body: body}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Withdraw removes cash from the account.
func (c *Client) Withdraw(ctx context.Context, amount decimal.Decimal) (*models.CashMovement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}

	var result models.CashMovement
	q := url.Values{"amount": {amount.String()}}
	if err := c.Request(ctx, http.MethodPost, "/portfolio/withdraw", RequestOptions{Query: q}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the backend's own status. It needs no session.
func (c *Client) Health(ctx context.Context) (*models.BackendHealth, error) {
	var h models.BackendHealth
	if err := c.Request(ctx, http.MethodGet, "/health", RequestOptions{noExpiry: true}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
