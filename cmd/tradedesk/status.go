package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/config"
)

type statusCmd struct{}

func (*statusCmd) Name() string             { return "status" }
func (*statusCmd) Synopsis() string         { return "show backend health and sign-in state" }
func (*statusCmd) Usage() string            { return "tradedesk status\n" }
func (*statusCmd) SetFlags(_ *flag.FlagSet) {}

func (*statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		fmt.Printf("Backend:   %s\n", a.Client.BaseURL())

		h, err := a.Client.Health(ctx)
		if err != nil {
			fmt.Printf("Health:    unreachable (%v)\n", err)
		} else {
			fmt.Printf("Health:    %s (database %s, scheduler %s)\n", h.Status, h.Database, h.Scheduler)
		}

		signedIn := "no"
		if a.Client.Authenticated() {
			signedIn = "yes"
		}
		fmt.Printf("Signed in: %s\n", signedIn)
		fmt.Printf("Watchlist: %d tickers\n", len(a.Watchlist.Tickers()))
		return nil
	})
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print version information" }
func (*versionCmd) Usage() string            { return "tradedesk version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Printf("tradedesk %s\n", config.GetFullVersion())
	return subcommands.ExitSuccess
}
