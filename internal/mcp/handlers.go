package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/client"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/render"
	"github.com/bobmcallan/tradedesk/internal/trade"
)

const defaultHistoryDays = 30

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// failure converts an operation error into a tool error the caller can act on.
func failure(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return errorResult("Session expired. Use the login tool to sign in again.")
	case errors.Is(err, client.ErrAuthenticationFailed):
		return errorResult("Login failed: incorrect username or password.")
	}
	return errorResult(fmt.Sprintf("Error: %v", err))
}

// numberArg returns a numeric argument as its decimal text, accepting JSON numbers or strings.
func numberArg(request mcp.CallToolRequest, key string) string {
	args := request.GetArguments()
	if args == nil {
		return ""
	}
	switch v := args[key].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func decimalArg(request mcp.CallToolRequest, key string) (decimal.Decimal, error) {
	raw := numberArg(request, key)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", key)
	}
	return d, nil
}

func orderForm(request mcp.CallToolRequest) trade.OrderForm {
	return trade.OrderForm{
		Ticker:   request.GetString("ticker", ""),
		Side:     request.GetString("side", ""),
		Quantity: numberArg(request, "quantity"),
		Price:    numberArg(request, "price"),
	}
}

// ensureSnapshot loads the portfolio once so the funds check has a balance to compare against.
func ensureSnapshot(ctx context.Context, a *app.App) {
	if a.Trades.Snapshot() == nil && a.Client.Authenticated() {
		a.Trades.LoadPortfolio(ctx)
	}
}

// --- Handlers ---

func handleLogin(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, err := request.RequireString("username")
		if err != nil {
			return errorResult("Error: username parameter is required"), nil
		}
		password, err := request.RequireString("password")
		if err != nil {
			return errorResult("Error: password parameter is required"), nil
		}

		if _, err := a.Client.Login(ctx, username, password); err != nil {
			return failure(err), nil
		}
		a.Trades.Reset()
		return textResult(fmt.Sprintf("Signed in as %s.", username)), nil
	}
}

func handleLogout(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a.Client.Logout(ctx)
		a.Trades.Reset()
		return textResult("Signed out."), nil
	}
}

func handleWhoAmI(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !a.Client.Authenticated() {
			return errorResult("Not signed in. Use the login tool first."), nil
		}
		user, err := a.Client.Me(ctx)
		if err != nil {
			return failure(err), nil
		}
		return textResult(fmt.Sprintf("%s <%s>", user.Username, user.Email)), nil
	}
}

func handleGetPortfolio(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := a.Trades.LoadPortfolio(ctx)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Portfolio(p)), nil
	}
}

func handleGetHolding(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := models.ValidateTicker(request.GetString("ticker", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		d, err := a.Client.GetHolding(ctx, ticker)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.HoldingDetail(d)), nil
	}
}

func handlePreviewTrade(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ensureSnapshot(ctx, a)
		req, cost, err := a.Trades.Preview(orderForm(request))
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Cost(req, cost)), nil
	}
}

func handleSubmitTrade(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ensureSnapshot(ctx, a)
		receipt, err := a.Trades.Submit(ctx, orderForm(request))
		if err != nil {
			return failure(err), nil
		}
		out := render.Receipt(receipt)
		if p := a.Trades.Snapshot(); p != nil {
			out += fmt.Sprintf("\nCash remaining: %s\n", render.Money(p.CashBalance))
		}
		return textResult(out), nil
	}
}

func handleClosePosition(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := a.Trades.ClosePosition(ctx, request.GetString("ticker", ""))
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Close(res)), nil
	}
}

func handleGetQuote(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := a.Trades.LookupQuote(ctx, request.GetString("ticker", ""))
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Quote(q)), nil
	}
}

func handleListTrades(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := models.TradeFilter{
			Limit:  request.GetInt("limit", 0),
			Offset: request.GetInt("offset", 0),
			Ticker: request.GetString("ticker", ""),
		}
		if s := request.GetString("side", ""); s != "" {
			side, err := models.ParseSide(s)
			if err != nil {
				return errorResult(fmt.Sprintf("Error: %v", err)), nil
			}
			filter.Side = side
		}

		h, err := a.Client.GetTrades(ctx, filter)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.TradeHistory(h)), nil
	}
}

func handleGetPerformance(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		period := strings.ToUpper(request.GetString("period", "ALL"))
		p, err := a.Client.GetPerformance(ctx, period)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Performance(period, p)), nil
	}
}

func handleDeposit(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount, err := decimalArg(request, "amount")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		res, err := a.Trades.Deposit(ctx, amount, request.GetString("method", "bank_transfer"))
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.CashMovement(res)), nil
	}
}

func handleWithdraw(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount, err := decimalArg(request, "amount")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		res, err := a.Trades.Withdraw(ctx, amount)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.CashMovement(res)), nil
	}
}

func handleWatchlist(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !request.GetBool("refresh", true) {
			return textResult(render.Watchlist(a.Watchlist.Entries())), nil
		}
		entries, err := a.Watchlist.Refresh(ctx)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Watchlist(entries)), nil
	}
}

func handleWatchlistAdd(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := request.GetString("ticker", "")
		added, err := a.Watchlist.Add(ctx, raw)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		ticker := models.NormalizeTicker(raw)
		if !added {
			return textResult(fmt.Sprintf("%s is already on the watchlist.", ticker)), nil
		}
		return textResult(fmt.Sprintf("Added %s to the watchlist.", ticker)), nil
	}
}

func handleWatchlistRemove(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil {
			return errorResult("Error: ticker parameter is required"), nil
		}
		if err := a.Watchlist.Remove(ctx, ticker); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Removed %s from the watchlist.", models.NormalizeTicker(ticker))), nil
	}
}

func handleGetNews(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker := models.NormalizeTicker(request.GetString("ticker", ""))
		feed, err := a.Client.GetNews(ctx, ticker)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.News(feed)), nil
	}
}

func handleGetPriceHistory(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := models.ValidateTicker(request.GetString("ticker", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		h, err := a.Client.GetPriceHistory(ctx, ticker, request.GetInt("days", defaultHistoryDays))
		if err != nil {
			return failure(err), nil
		}
		if h.Ticker == "" {
			h.Ticker = ticker
		}
		return textResult(render.PriceHistory(h)), nil
	}
}

func handleGetSignal(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := models.ValidateTicker(request.GetString("ticker", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		sig, err := a.Client.GetSignal(ctx, ticker)
		if err != nil {
			return failure(err), nil
		}
		if sig.Ticker == "" {
			sig.Ticker = ticker
		}
		return textResult(render.Signal(sig)), nil
	}
}

func handleGetAnalysis(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := models.ValidateTicker(request.GetString("ticker", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		opts := models.AnalysisOptions{
			Days:        request.GetInt("days", 0),
			TopNews:     request.GetInt("news", 0),
			HorizonDays: request.GetInt("horizon_days", 0),
		}
		analysis, err := a.Client.GetAnalysis(ctx, ticker, opts)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Analysis(analysis)), nil
	}
}

func handleAnalyzeSentiment(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var texts []string
		for _, t := range request.GetStringSlice("texts", nil) {
			if t = strings.TrimSpace(t); t != "" {
				texts = append(texts, t)
			}
		}
		if len(texts) == 0 {
			return errorResult("Error: texts parameter is required"), nil
		}
		results, err := a.Client.AnalyzeSentiment(ctx, texts)
		if err != nil {
			return failure(err), nil
		}
		return textResult(render.Sentiments(texts, results)), nil
	}
}
