package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/client"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/config"
)

// configSearchPaths returns TOML files to auto-discover (first match wins).
func configSearchPaths() []string {
	paths := []string{"tradedesk.toml", "config/tradedesk.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tradedesk", "tradedesk.toml"))
	}
	return paths
}

func loadConfig() (*config.Config, error) {
	files := configFiles
	if len(files) == 0 {
		for _, p := range configSearchPaths() {
			if _, err := os.Stat(p); err == nil {
				files = append(files, p)
				break
			}
		}
	}

	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, *apiURL, 0)
	return cfg, nil
}

func setupLogger(cfg *config.Config) *common.Logger {
	logCfg := cfg.Logging
	if !*verbose {
		outputs := make([]string, 0, len(logCfg.Outputs))
		for _, o := range logCfg.Outputs {
			if o != "console" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) == 0 {
			return common.NewSilentLogger()
		}
		logCfg.Outputs = outputs
	}
	return common.NewLoggerFromConfig(logCfg)
}

// withApp opens the desk, runs fn, and maps its error onto an exit status.
func withApp(ctx context.Context, fn func(a *app.App) error) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	a, err := app.New(ctx, cfg, setupLogger(cfg), func() {
		fmt.Fprintln(os.Stderr, "Session expired. Run 'tradedesk login' to sign in again.")
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		// The expiry callback has already told the user what to do.
		if !errors.Is(err, client.ErrSessionExpired) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// requireLogin fails fast when no session is stored.
func requireLogin(a *app.App) error {
	if !a.Client.Authenticated() {
		return errors.New("not signed in; run 'tradedesk login' first")
	}
	return nil
}
