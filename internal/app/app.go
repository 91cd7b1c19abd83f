// Package app wires configuration, storage and the desk components together.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/tradedesk/internal/cache"
	"github.com/bobmcallan/tradedesk/internal/client"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/config"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/storage"
	"github.com/bobmcallan/tradedesk/internal/trade"
	"github.com/bobmcallan/tradedesk/internal/watchlist"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage   interfaces.StorageManager
	Cache     *cache.ResponseCache
	Client    *client.Client
	Trades    *trade.Executor
	Watchlist *watchlist.Manager
}

// New initializes the application. onSessionExpired is called once per session expiry
// and may be nil.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger, onSessionExpired func()) (*App, error) {
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.IsDevMode() {
		logger.Warn().Msg("Running in dev mode")
	}

	store, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.Storage = store

	a.Cache = cache.New(cfg.Cache.GetTTL(), cfg.Cache.MaxEntries)
	a.Client = client.New(client.Options{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.GetTimeout(),
		Store:   store.KeyValueStorage(),
		Logger:  logger,
		Cache:   a.Cache,
	})
	a.Trades = trade.NewExecutor(a.Client, logger)
	// The snapshot belongs to the expired session; drop it before telling the surface.
	a.Client.SetOnSessionExpired(func() {
		a.Trades.Reset()
		if onSessionExpired != nil {
			onSessionExpired()
		}
	})
	a.Watchlist = watchlist.NewManager(store.KeyValueStorage(), a.Client, watchlist.Options{
		Concurrency: cfg.Watchlist.Concurrency,
		Defaults:    cfg.Watchlist.Defaults,
		Timeout:     2 * cfg.API.GetTimeout(),
		Logger:      logger,
	})
	a.Watchlist.Load(ctx)

	logger.Info().
		Str("api_url", cfg.API.URL).
		Str("storage", cfg.Storage.Backend).
		Bool("authenticated", a.Client.Authenticated()).
		Msg("application initialization complete")

	return a, nil
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
