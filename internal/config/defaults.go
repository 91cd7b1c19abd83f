package config

import (
	"time"

	"github.com/bobmcallan/tradedesk/internal/common"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultCacheTTL       = 5 * time.Minute
)

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		API: APIConfig{
			URL:     "http://localhost:8000",
			Timeout: defaultRequestTimeout.String(),
		},
		Storage: StorageConfig{
			Backend: "badger",
			Badger: BadgerConfig{
				Path: "./data/tradedesk",
			},
			File: FileConfig{
				Path: "./data/tradedesk.json",
			},
		},
		Watchlist: WatchlistConfig{
			Concurrency: 8,
			Defaults:    []string{},
		},
		Cache: CacheConfig{
			TTL:        defaultCacheTTL.String(),
			MaxEntries: 200,
		},
		MCP: MCPConfig{
			Name: "tradedesk",
			Host: "localhost",
			Port: 4243,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/tradedesk.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
