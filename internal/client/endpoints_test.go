package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/models"
)

func TestGetPortfolio(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio" || r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"cash_balance":8498.5,"holdings":[{"ticker":"AAPL","quantity":10,"avg_cost":150.15,"current_value":1520}],"total_value":10018.5,"total_pnl":18.5,"total_pnl_percent":0.19}`))
	})

	p, err := c.GetPortfolio(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.CashBalance.Equal(decimal.RequireFromString("8498.5")) {
		t.Errorf("unexpected cash %s", p.CashBalance)
	}
	if len(p.Holdings) != 1 || p.Holdings[0].Ticker != "AAPL" {
		t.Errorf("unexpected holdings %+v", p.Holdings)
	}
}

func TestSubmitTrade_SendsJSON(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio/trade" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["ticker"] != "AAPL" || body["side"] != "BUY" || body["quantity"] != float64(10) || body["price"] != float64(150) {
			t.Errorf("unexpected body %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"trade_id":"t-1","ticker":"AAPL","side":"BUY","quantity":10,"price":150,"total_value":1500,"commission":1.5,"message":"Successfully bought 10 shares of AAPL"}`))
	})

	receipt, err := c.SubmitTrade(context.Background(), models.TradeRequest{
		Ticker:   "AAPL",
		Side:     models.SideBuy,
		Quantity: decimal.NewFromInt(10),
		Price:    decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.TradeID != "t-1" || !receipt.Commission.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("unexpected receipt %+v", receipt)
	}
}

func TestClosePosition_EscapesTicker(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.EscapedPath() != "/portfolio/holdings/A%2FB" {
			t.Errorf("expected escaped path, got %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"success":true,"quantity_sold":5,"realized_pnl":12.5}`))
	})

	res, err := c.ClosePosition(context.Background(), "A/B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || !res.RealizedPnL.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGetHolding(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio/holdings/MSFT" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"holding":{"ticker":"MSFT","quantity":3},"trades":[{"ticker":"MSFT","side":"BUY","quantity":3,"price":400}],"trade_count":1,"portfolio_weight":12.5}`))
	})

	d, err := c.GetHolding(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TradeCount != 1 || len(d.Trades) != 1 || d.Holding.Ticker != "MSFT" {
		t.Errorf("unexpected detail %+v", d)
	}
}

func TestGetTrades_Query(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "20" || q.Get("offset") != "40" || q.Get("ticker") != "AAPL" || q.Get("side") != "SELL" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"trades":[],"count":0,"offset":40,"limit":20}`))
	})

	h, err := c.GetTrades(context.Background(), models.TradeFilter{Limit: 20, Offset: 40, Ticker: "aapl", Side: models.SideSell})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Limit != 20 || h.Offset != 40 {
		t.Errorf("unexpected page %+v", h)
	}
}

func TestGetTrades_DefaultsOmitted(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected empty query, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"trades":[],"count":0,"offset":0,"limit":50}`))
	})
	if _, err := c.GetTrades(context.Background(), models.TradeFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetTrades_InvalidLimit(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid filter must not reach the network")
	})
	if _, err := c.GetTrades(context.Background(), models.TradeFilter{Limit: 501}); err == nil {
		t.Error("expected error for limit above 500")
	}
	if _, err := c.GetTrades(context.Background(), models.TradeFilter{Offset: -1}); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestGetPerformance(t *testing.T) {
	var period string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		period = r.URL.Query().Get("period")
		w.Write([]byte(`{"total_return":100,"winning_trades":3,"losing_trades":1,"best_performer":{"ticker":"NVDA","pnl":80}}`))
	})

	perf, err := c.GetPerformance(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period != "ALL" {
		t.Errorf("expected default period ALL, got %s", period)
	}
	if perf.BestPerformer == nil || perf.BestPerformer.Ticker != "NVDA" {
		t.Errorf("unexpected best performer %+v", perf.BestPerformer)
	}
	if perf.SharpeRatio != nil {
		t.Error("expected nil sharpe ratio when absent")
	}

	if _, err := c.GetPerformance(context.Background(), "2Y"); err == nil {
		t.Error("expected error for invalid period")
	}
}

func TestGetPrice(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price" || r.URL.Query().Get("ticker") != "AAPL" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`{"ticker":"AAPL","price":152.25}`))
	})

	q, err := c.GetPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Price.Equal(decimal.RequireFromString("152.25")) {
		t.Errorf("unexpected price %s", q.Price)
	}
}

func TestGetNews_Cached(t *testing.T) {
	var calls int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ticker":"AAPL","articles":[{"headline":"Apple beats estimates"}]}`))
	})

	for i := 0; i < 3; i++ {
		feed, err := c.GetNews(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(feed.Articles) != 1 || feed.Articles[0].Headline != "Apple beats estimates" {
			t.Errorf("unexpected feed %+v", feed)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 backend call, got %d", n)
	}

	if _, err := c.GetNews(context.Background(), "MSFT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected separate cache entry per ticker, got %d calls", n)
	}
}

func TestGetNews_ErrorsNotCached(t *testing.T) {
	var calls int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"articles":[]}`))
	})

	if _, err := c.GetNews(context.Background(), ""); err == nil {
		t.Fatal("expected first call to fail")
	}
	if _, err := c.GetNews(context.Background(), ""); err != nil {
		t.Fatalf("expected retry to reach backend, got %v", err)
	}
}

func TestGetPriceHistory(t *testing.T) {
	var calls int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("days") != "30" {
			t.Errorf("unexpected days %s", r.URL.Query().Get("days"))
		}
		w.Write([]byte(`{"ticker":"AAPL","days":30,"closes":[150.1,151.2]}`))
	})

	h, err := c.GetPriceHistory(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Closes) != 2 {
		t.Errorf("unexpected closes %v", h.Closes)
	}
	c.GetPriceHistory(context.Background(), "AAPL", 30)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected cached second call, got %d backend calls", n)
	}

	if _, err := c.GetPriceHistory(context.Background(), "AAPL", 0); err == nil {
		t.Error("expected error for days 0")
	}
	if _, err := c.GetPriceHistory(context.Background(), "AAPL", 366); err == nil {
		t.Error("expected error for days 366")
	}
}

func TestDeposit(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio/deposit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"amount":500`) || !strings.Contains(string(body), `"method":"bank_transfer"`) {
			t.Errorf("unexpected body %s", body)
		}
		w.Write([]byte(`{"success":true,"amount_deposited":500,"new_balance":10500}`))
	})

	res, err := c.Deposit(context.Background(), decimal.NewFromInt(500), "bank_transfer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NewBalance.Equal(decimal.NewFromInt(10500)) {
		t.Errorf("unexpected balance %s", res.NewBalance)
	}

	if _, err := c.Deposit(context.Background(), decimal.Zero, ""); err == nil {
		t.Error("expected error for zero deposit")
	}
}

func TestWithdraw(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/portfolio/withdraw" || r.URL.Query().Get("amount") != "250.5" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
		w.Write([]byte(`{"success":true,"amount_withdrawn":250.5,"new_balance":9749.5}`))
	})

	res, err := c.Withdraw(context.Background(), decimal.RequireFromString("250.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.AmountWithdrawn.Equal(decimal.RequireFromString("250.5")) {
		t.Errorf("unexpected amount %s", res.AmountWithdrawn)
	}
	if _, err := c.Withdraw(context.Background(), decimal.NewFromInt(-1)); err == nil {
		t.Error("expected error for negative withdrawal")
	}
}

func TestHealth(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"degraded","database":"unhealthy","scheduler":"healthy"}`))
	})

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Healthy() || h.Database != "unhealthy" {
		t.Errorf("unexpected health %+v", h)
	}
}
