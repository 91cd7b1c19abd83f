package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/render"
)

var marketCommands = []subcommands.Command{
	&quoteCmd{},
	&watchlistCmd{},
	&newsCmd{},
	&historyCmd{},
	&signalCmd{},
	&analysisCmd{},
	&sentimentCmd{},
}

type quoteCmd struct{}

func (*quoteCmd) Name() string             { return "quote" }
func (*quoteCmd) Synopsis() string         { return "show the latest price for a ticker" }
func (*quoteCmd) Usage() string            { return "tradedesk quote <ticker>\n" }
func (*quoteCmd) SetFlags(_ *flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a ticker is required.")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app.App) error {
		q, err := a.Trades.LookupQuote(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		fmt.Println(render.Quote(q))
		return nil
	})
}

type watchlistCmd struct {
	cached bool
}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "show or edit the watchlist" }
func (*watchlistCmd) Usage() string {
	return `tradedesk watchlist [-cached]
tradedesk watchlist add <ticker>
tradedesk watchlist remove <ticker>

  Without a subcommand, refreshes every ticker concurrently and prints the
  quotes. A ticker that fails to load is shown as unavailable.
`
}

func (c *watchlistCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.cached, "cached", false, "Print the last loaded quotes without refreshing.")
}

func (c *watchlistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.Arg(0) {
	case "":
		return withApp(ctx, func(a *app.App) error {
			if c.cached {
				fmt.Print(render.Watchlist(a.Watchlist.Entries()))
				return nil
			}
			entries, err := a.Watchlist.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Print(render.Watchlist(entries))
			return nil
		})

	case "add":
		if f.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "Error: a ticker is required.")
			return subcommands.ExitUsageError
		}
		return withApp(ctx, func(a *app.App) error {
			added, err := a.Watchlist.Add(ctx, f.Arg(1))
			if err != nil {
				return err
			}
			ticker := models.NormalizeTicker(f.Arg(1))
			if !added {
				fmt.Printf("%s is already on the watchlist.\n", ticker)
				return nil
			}
			fmt.Printf("Added %s.\n", ticker)
			return nil
		})

	case "remove", "rm":
		if f.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "Error: a ticker is required.")
			return subcommands.ExitUsageError
		}
		return withApp(ctx, func(a *app.App) error {
			if err := a.Watchlist.Remove(ctx, f.Arg(1)); err != nil {
				return err
			}
			fmt.Printf("Removed %s.\n", models.NormalizeTicker(f.Arg(1)))
			return nil
		})
	}

	fmt.Fprintf(os.Stderr, "Error: unknown watchlist action %q.\n", f.Arg(0))
	return subcommands.ExitUsageError
}

type newsCmd struct {
	ticker string
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "show market or ticker news" }
func (*newsCmd) Usage() string    { return "tradedesk news [-t <ticker>]\n" }

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Only news for this ticker.")
}

func (c *newsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		feed, err := a.Client.GetNews(ctx, models.NormalizeTicker(c.ticker))
		if err != nil {
			return err
		}
		fmt.Print(render.News(feed))
		return nil
	})
}

type historyCmd struct {
	days int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "summarize recent closing prices" }
func (*historyCmd) Usage() string    { return "tradedesk history [-days <n>] <ticker>\n" }

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 30, "Number of days of history.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		h, err := a.Client.GetPriceHistory(ctx, ticker, c.days)
		if err != nil {
			return err
		}
		if h.Ticker == "" {
			h.Ticker = ticker
		}
		fmt.Print(render.PriceHistory(h))
		return nil
	})
}

type signalCmd struct{}

func (*signalCmd) Name() string             { return "signal" }
func (*signalCmd) Synopsis() string         { return "show a buy/hold/sell hint from news and trend" }
func (*signalCmd) Usage() string            { return "tradedesk signal <ticker>\n" }
func (*signalCmd) SetFlags(_ *flag.FlagSet) {}

func (*signalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		sig, err := a.Client.GetSignal(ctx, ticker)
		if err != nil {
			return err
		}
		if sig.Ticker == "" {
			sig.Ticker = ticker
		}
		fmt.Print(render.Signal(sig))
		return nil
	})
}

type analysisCmd struct {
	opts models.AnalysisOptions
}

func (*analysisCmd) Name() string     { return "analysis" }
func (*analysisCmd) Synopsis() string { return "analyse one stock against your position" }
func (*analysisCmd) Usage() string {
	return "tradedesk analysis [-days <n>] [-news <n>] [-horizon <n>] <ticker>\n"
}

func (c *analysisCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.opts.Days, "days", 0, "Price window in days (10-365). Server default when 0.")
	f.IntVar(&c.opts.TopNews, "news", 0, "Headlines to score (1-25). Server default when 0.")
	f.IntVar(&c.opts.HorizonDays, "horizon", 0, "Return estimate horizon in days (5-90). Server default when 0.")
}

func (c *analysisCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		analysis, err := a.Client.GetAnalysis(ctx, ticker, c.opts)
		if err != nil {
			return err
		}
		fmt.Print(render.Analysis(analysis))
		return nil
	})
}

type sentimentCmd struct{}

func (*sentimentCmd) Name() string             { return "sentiment" }
func (*sentimentCmd) Synopsis() string         { return "score the sentiment of headlines" }
func (*sentimentCmd) Usage() string            { return "tradedesk sentiment <text> [<text>...]\n" }
func (*sentimentCmd) SetFlags(_ *flag.FlagSet) {}

func (*sentimentCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one text is required.")
		return subcommands.ExitUsageError
	}
	texts := f.Args()
	return withApp(ctx, func(a *app.App) error {
		results, err := a.Client.AnalyzeSentiment(ctx, texts)
		if err != nil {
			return err
		}
		fmt.Print(render.Sentiments(texts, results))
		return nil
	})
}
