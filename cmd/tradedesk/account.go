package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/render"
	"github.com/bobmcallan/tradedesk/internal/trade"
)

var accountCommands = []subcommands.Command{
	&portfolioCmd{},
	&holdingCmd{},
	&orderCmd{side: models.SideBuy},
	&orderCmd{side: models.SideSell},
	&closeCmd{},
	&tradesCmd{},
	&performanceCmd{},
	&cashCmd{deposit: true},
	&cashCmd{},
}

type portfolioCmd struct{}

func (*portfolioCmd) Name() string             { return "portfolio" }
func (*portfolioCmd) Synopsis() string         { return "show cash, holdings and P&L" }
func (*portfolioCmd) Usage() string            { return "tradedesk portfolio\n" }
func (*portfolioCmd) SetFlags(_ *flag.FlagSet) {}

func (*portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		p, err := a.Trades.LoadPortfolio(ctx)
		if err != nil {
			return err
		}
		fmt.Print(render.Portfolio(p))
		return nil
	})
}

type holdingCmd struct{}

func (*holdingCmd) Name() string             { return "holding" }
func (*holdingCmd) Synopsis() string         { return "show one holding with its trades" }
func (*holdingCmd) Usage() string            { return "tradedesk holding <ticker>\n" }
func (*holdingCmd) SetFlags(_ *flag.FlagSet) {}

func (*holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a ticker is required.")
		return subcommands.ExitUsageError
	}
	ticker, err := models.ValidateTicker(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		d, err := a.Client.GetHolding(ctx, ticker)
		if err != nil {
			return err
		}
		fmt.Print(render.HoldingDetail(d))
		return nil
	})
}

// orderCmd implements both buy and sell; the side is fixed at registration.
type orderCmd struct {
	side  models.Side
	price string
	yes   bool
}

func (c *orderCmd) Name() string { return strings.ToLower(string(c.side)) }
func (c *orderCmd) Synopsis() string {
	return fmt.Sprintf("%s shares at a limit price", strings.ToLower(string(c.side)))
}
func (c *orderCmd) Usage() string {
	return fmt.Sprintf(`tradedesk %s [-price <price>] [-y] <ticker> <quantity>

  Validates the order against the current cash balance, shows the cost
  including commission, and submits after confirmation. Without -price
  the latest quote is used.
`, c.Name())
}

func (c *orderCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "price", "", "Price per share. Defaults to the latest quote.")
	f.BoolVar(&c.yes, "y", false, "Submit without asking for confirmation.")
}

func (c *orderCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: a ticker and a quantity are required.")
		return subcommands.ExitUsageError
	}
	form := trade.OrderForm{
		Ticker:   f.Arg(0),
		Side:     string(c.side),
		Quantity: f.Arg(1),
		Price:    c.price,
	}

	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		p, err := a.Trades.LoadPortfolio(ctx)
		if err != nil {
			return err
		}
		if c.side == models.SideSell {
			if h := p.FindHolding(models.NormalizeTicker(form.Ticker)); h != nil {
				fmt.Printf("Held: %s shares of %s\n", h.Quantity, h.Ticker)
			} else {
				fmt.Printf("No %s position in the portfolio.\n", models.NormalizeTicker(form.Ticker))
			}
		}
		if form.Price == "" {
			if _, err := a.Trades.LookupQuote(ctx, form.Ticker); err != nil {
				return fmt.Errorf("no price given and quote lookup failed: %w", err)
			}
			q := a.Trades.CurrentQuote()
			fmt.Printf("Using last quote for %s: %s\n", models.NormalizeTicker(form.Ticker), render.Money(q.Price))
			form.Price = q.Price.String()
		}

		req, cost, err := a.Trades.Preview(form)
		if err != nil {
			return err
		}
		fmt.Print(render.Cost(req, cost))

		if !c.yes {
			fmt.Fprint(os.Stderr, "Submit order? [y/N] ")
			answer, err := readLine(os.Stdin)
			if err != nil {
				return err
			}
			if !strings.EqualFold(strings.TrimSpace(answer), "y") {
				fmt.Println("Order cancelled.")
				return nil
			}
		}

		a.Trades.OnTransition(func(s trade.Status) {
			if s == trade.StatusSubmitting {
				fmt.Fprintln(os.Stderr, "Submitting order...")
			}
		})
		receipt, err := a.Trades.Submit(ctx, form)
		if err != nil {
			return err
		}
		fmt.Print(render.Receipt(receipt))
		if p := a.Trades.Snapshot(); p != nil {
			fmt.Printf("Cash remaining: %s\n", render.Money(p.CashBalance))
		}
		return nil
	})
}

type closeCmd struct{}

func (*closeCmd) Name() string             { return "close" }
func (*closeCmd) Synopsis() string         { return "sell an entire position at market" }
func (*closeCmd) Usage() string            { return "tradedesk close <ticker>\n" }
func (*closeCmd) SetFlags(_ *flag.FlagSet) {}

func (*closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a ticker is required.")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		res, err := a.Trades.ClosePosition(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		fmt.Print(render.Close(res))
		return nil
	})
}

type tradesCmd struct {
	limit  int
	offset int
	ticker string
	side   string
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list past trades" }
func (*tradesCmd) Usage() string {
	return "tradedesk trades [-n <limit>] [-offset <n>] [-t <ticker>] [-side BUY|SELL]\n"
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of trades to show.")
	f.IntVar(&c.offset, "offset", 0, "Number of trades to skip.")
	f.StringVar(&c.ticker, "t", "", "Only trades in this ticker.")
	f.StringVar(&c.side, "side", "", "Only BUY or SELL trades.")
}

func (c *tradesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := models.TradeFilter{Limit: c.limit, Offset: c.offset, Ticker: c.ticker}
	if c.side != "" {
		side, err := models.ParseSide(c.side)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		filter.Side = side
	}
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		h, err := a.Client.GetTrades(ctx, filter)
		if err != nil {
			return err
		}
		fmt.Print(render.TradeHistory(h))
		return nil
	})
}

type performanceCmd struct {
	period string
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "show returns and win rate for a period" }
func (*performanceCmd) Usage() string {
	return "tradedesk performance [-period " + strings.Join(models.PerformancePeriods, "|") + "]\n"
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "ALL", "Reporting period.")
}

func (c *performanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period := strings.ToUpper(c.period)
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		p, err := a.Client.GetPerformance(ctx, period)
		if err != nil {
			return err
		}
		fmt.Print(render.Performance(period, p))
		return nil
	})
}

// cashCmd implements deposit and withdraw.
type cashCmd struct {
	deposit bool
	method  string
}

func (c *cashCmd) Name() string {
	if c.deposit {
		return "deposit"
	}
	return "withdraw"
}

func (c *cashCmd) Synopsis() string {
	if c.deposit {
		return "add cash to the account"
	}
	return "take cash out of the account"
}

func (c *cashCmd) Usage() string { return fmt.Sprintf("tradedesk %s <amount>\n", c.Name()) }

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	if c.deposit {
		f.StringVar(&c.method, "method", "bank_transfer", "Funding method.")
	}
}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: an amount is required.")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %q is not a number.\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		var res *models.CashMovement
		if c.deposit {
			res, err = a.Trades.Deposit(ctx, amount, c.method)
		} else {
			res, err = a.Trades.Withdraw(ctx, amount)
		}
		if err != nil {
			return err
		}
		fmt.Print(render.CashMovement(res))
		return nil
	})
}
