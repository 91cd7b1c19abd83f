package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/config"
)

// NewServer creates an MCP server exposing the desk operations of a.
func NewServer(a *app.App) *server.MCPServer {
	s := server.NewMCPServer(
		a.Config.MCP.Name,
		config.GetVersion(),
		server.WithToolCapabilities(true),
	)
	RegisterTools(s, a)
	return s
}

// RegisterTools registers every desk tool on s.
func RegisterTools(s *server.MCPServer, a *app.App) {
	s.AddTool(VersionTool(), VersionToolHandler(a))
	s.AddTool(createLoginTool(), handleLogin(a))
	s.AddTool(createLogoutTool(), handleLogout(a))
	s.AddTool(createWhoAmITool(), handleWhoAmI(a))
	s.AddTool(createGetPortfolioTool(), handleGetPortfolio(a))
	s.AddTool(createGetHoldingTool(), handleGetHolding(a))
	s.AddTool(createPreviewTradeTool(), handlePreviewTrade(a))
	s.AddTool(createSubmitTradeTool(), handleSubmitTrade(a))
	s.AddTool(createClosePositionTool(), handleClosePosition(a))
	s.AddTool(createGetQuoteTool(), handleGetQuote(a))
	s.AddTool(createListTradesTool(), handleListTrades(a))
	s.AddTool(createGetPerformanceTool(), handleGetPerformance(a))
	s.AddTool(createDepositTool(), handleDeposit(a))
	s.AddTool(createWithdrawTool(), handleWithdraw(a))
	s.AddTool(createWatchlistTool(), handleWatchlist(a))
	s.AddTool(createWatchlistAddTool(), handleWatchlistAdd(a))
	s.AddTool(createWatchlistRemoveTool(), handleWatchlistRemove(a))
	s.AddTool(createGetNewsTool(), handleGetNews(a))
	s.AddTool(createGetPriceHistoryTool(), handleGetPriceHistory(a))
	s.AddTool(createGetSignalTool(), handleGetSignal(a))
	s.AddTool(createGetAnalysisTool(), handleGetAnalysis(a))
	s.AddTool(createAnalyzeSentimentTool(), handleAnalyzeSentiment(a))
}

func createLoginTool() mcp.Tool {
	return mcp.NewTool("login",
		mcp.WithDescription("Sign in to the brokerage account. The session is kept until logout or expiry."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Account username or email")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
	)
}

func createLogoutTool() mcp.Tool {
	return mcp.NewTool("logout",
		mcp.WithDescription("Sign out and forget the stored session."),
	)
}

func createWhoAmITool() mcp.Tool {
	return mcp.NewTool("whoami",
		mcp.WithDescription("Show the signed-in user's profile."),
	)
}

func createGetPortfolioTool() mcp.Tool {
	return mcp.NewTool("get_portfolio",
		mcp.WithDescription("Get cash balance, holdings, total value and P&L as reported by the server."),
	)
}

func createGetHoldingTool() mcp.Tool {
	return mcp.NewTool("get_holding",
		mcp.WithDescription("Get one holding with its trades and portfolio weight."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol (e.g., 'AAPL')")),
	)
}

func tradeParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol (e.g., 'AAPL')")),
		mcp.WithString("side", mcp.Enum("BUY", "SELL"), mcp.Description("Order side (default: BUY)")),
		mcp.WithNumber("quantity", mcp.Required(), mcp.Description("Number of shares, greater than 0")),
		mcp.WithNumber("price", mcp.Required(), mcp.Description("Limit price per share, greater than 0")),
	}
}

func createPreviewTradeTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Validate an order against the last known cash balance and show value, commission (0.1%) and total cost without sending it."),
	}, tradeParams()...)
	return mcp.NewTool("preview_trade", opts...)
}

func createSubmitTradeTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Validate and submit a BUY or SELL order. The portfolio is reloaded after execution."),
	}, tradeParams()...)
	return mcp.NewTool("submit_trade", opts...)
}

func createClosePositionTool() mcp.Tool {
	return mcp.NewTool("close_position",
		mcp.WithDescription("Sell the entire holding in a ticker at the current market price."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol of the holding to close")),
	)
}

func createGetQuoteTool() mcp.Tool {
	return mcp.NewTool("get_quote",
		mcp.WithDescription("Get the current price for a ticker. For reference only; orders use the price you enter."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol (e.g., 'AAPL')")),
	)
}

func createListTradesTool() mcp.Tool {
	return mcp.NewTool("list_trades",
		mcp.WithDescription("List executed trades, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum trades to return (1-500, default: 50)")),
		mcp.WithNumber("offset", mcp.Description("Number of trades to skip (default: 0)")),
		mcp.WithString("ticker", mcp.Description("Only trades in this ticker")),
		mcp.WithString("side", mcp.Enum("BUY", "SELL"), mcp.Description("Only BUY or SELL trades")),
	)
}

func createGetPerformanceTool() mcp.Tool {
	return mcp.NewTool("get_performance",
		mcp.WithDescription("Get total return, win rate and best/worst performers."),
		mcp.WithString("period", mcp.Enum("1D", "1W", "1M", "3M", "6M", "1Y", "ALL"), mcp.Description("Reporting period (default: ALL)")),
	)
}

func createDepositTool() mcp.Tool {
	return mcp.NewTool("deposit",
		mcp.WithDescription("Add cash to the account."),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Amount to deposit, greater than 0")),
		mcp.WithString("method", mcp.Description("Funding method (default: bank_transfer)")),
	)
}

func createWithdrawTool() mcp.Tool {
	return mcp.NewTool("withdraw",
		mcp.WithDescription("Withdraw cash from the account."),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Amount to withdraw, greater than 0")),
	)
}

func createWatchlistTool() mcp.Tool {
	return mcp.NewTool("watchlist",
		mcp.WithDescription("Show watchlist prices. Each ticker is looked up independently; a failed lookup marks only its own row."),
		mcp.WithBoolean("refresh", mcp.Description("Fetch fresh prices before listing (default: true)")),
	)
}

func createWatchlistAddTool() mcp.Tool {
	return mcp.NewTool("watchlist_add",
		mcp.WithDescription("Add a ticker (1-5 letters or digits) to the watchlist."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol to add")),
	)
}

func createWatchlistRemoveTool() mcp.Tool {
	return mcp.NewTool("watchlist_remove",
		mcp.WithDescription("Remove a ticker from the watchlist."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol to remove")),
	)
}

func createGetNewsTool() mcp.Tool {
	return mcp.NewTool("get_news",
		mcp.WithDescription("Get recent market news, optionally for one ticker."),
		mcp.WithString("ticker", mcp.Description("Ticker symbol (omit for general market news)")),
	)
}

func createGetPriceHistoryTool() mcp.Tool {
	return mcp.NewTool("get_price_history",
		mcp.WithDescription("Summarise daily closing prices for a ticker."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol (e.g., 'AAPL')")),
		mcp.WithNumber("days", mcp.Description("Number of days (1-365, default: 30)")),
	)
}

func createGetSignalTool() mcp.Tool {
	return mcp.NewTool("get_signal",
		mcp.WithDescription("Get a Buy/Hold/Sell hint for a ticker from recent headline sentiment and price trend. Not financial advice."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol (e.g., 'AAPL')")),
	)
}

func createGetAnalysisTool() mcp.Tool {
	return mcp.NewTool("get_analysis",
		mcp.WithDescription("Analyse one stock: trend, volatility, expected return, scored headlines and your position if held."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol (e.g., 'AAPL')")),
		mcp.WithNumber("days", mcp.Description("Price window in days (10-365, default: 90)")),
		mcp.WithNumber("news", mcp.Description("Headlines to score (1-25, default: 8)")),
		mcp.WithNumber("horizon_days", mcp.Description("Return estimate horizon in days (5-90, default: 21)")),
	)
}

func createAnalyzeSentimentTool() mcp.Tool {
	return mcp.NewTool("analyze_sentiment",
		mcp.WithDescription("Score the financial sentiment of one or more texts such as headlines."),
		mcp.WithArray("texts", mcp.WithStringItems(), mcp.Required(), mcp.Description("Texts to score, e.g. ['Apple beats estimates']")),
	)
}
