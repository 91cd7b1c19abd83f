package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/tradedesk/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	API         APIConfig            `toml:"api"`
	Storage     StorageConfig        `toml:"storage"`
	Watchlist   WatchlistConfig      `toml:"watchlist"`
	Cache       CacheConfig          `toml:"cache"`
	MCP         MCPConfig            `toml:"mcp"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// APIConfig points at the brokerage backend.
type APIConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses the per-request timeout, falling back to the default on bad input.
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultRequestTimeout
	}
	return d
}

// StorageConfig selects where the session token and watchlist are persisted.
// Backend is "badger" (default), "file", or "memory".
type StorageConfig struct {
	Backend string       `toml:"backend"`
	Badger  BadgerConfig `toml:"badger"`
	File    FileConfig   `toml:"file"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// FileConfig contains settings for the single JSON file backend.
type FileConfig struct {
	Path string `toml:"path"`
}

// WatchlistConfig controls the watchlist refresh.
type WatchlistConfig struct {
	Concurrency int      `toml:"concurrency"`
	Defaults    []string `toml:"defaults"` // seeded only when nothing was ever persisted
}

// CacheConfig controls caching of read-only feeds (news, price history).
type CacheConfig struct {
	TTL        string `toml:"ttl"`
	MaxEntries int    `toml:"max_entries"`
}

// GetTTL parses the cache TTL, falling back to the default on bad input.
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return defaultCacheTTL
	}
	return d
}

// MCPConfig holds settings for the MCP tool server.
type MCPConfig struct {
	Name string `toml:"name"`
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address for HTTP transport.
func (c *MCPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevMode returns true when the environment is "dev".
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// LoadFromFiles loads configuration with priority:
// defaults -> file1 -> file2 -> ... -> env.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	config.API.URL = strings.TrimRight(config.API.URL, "/")

	return config, nil
}

// applyEnvOverrides applies TRADEDESK_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRADEDESK_ENV"); env != "" {
		config.Environment = env
	}
	if u := os.Getenv("TRADEDESK_API_URL"); u != "" {
		config.API.URL = u
	}
	if timeout := os.Getenv("TRADEDESK_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if backend := os.Getenv("TRADEDESK_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if p := os.Getenv("TRADEDESK_BADGER_PATH"); p != "" {
		config.Storage.Badger.Path = p
	}
	if p := os.Getenv("TRADEDESK_FILE_PATH"); p != "" {
		config.Storage.File.Path = p
	}
	if c := os.Getenv("TRADEDESK_WATCHLIST_CONCURRENCY"); c != "" {
		if n, err := strconv.Atoi(c); err == nil {
			config.Watchlist.Concurrency = n
		}
	}
	if host := os.Getenv("TRADEDESK_MCP_HOST"); host != "" {
		config.MCP.Host = host
	}
	if port := os.Getenv("TRADEDESK_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.MCP.Port = p
		}
	}
	if level := os.Getenv("TRADEDESK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, apiURL string, port int) {
	if apiURL != "" {
		config.API.URL = strings.TrimRight(apiURL, "/")
	}
	if port > 0 {
		config.MCP.Port = port
	}
}

// Validate returns a list of problems with mandatory settings. Empty means valid.
func (c *Config) Validate() []string {
	var issues []string

	if strings.TrimSpace(c.API.URL) == "" {
		issues = append(issues, "api.url is required (TRADEDESK_API_URL)")
	} else if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("api.url %q is not an absolute URL", c.API.URL))
	}

	if c.API.Timeout != "" {
		if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
			issues = append(issues, fmt.Sprintf("api.timeout %q is not a positive duration", c.API.Timeout))
		}
	}

	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Badger.Path == "" {
			issues = append(issues, "storage.badger.path is required for the badger backend")
		}
	case "file":
		if c.Storage.File.Path == "" {
			issues = append(issues, "storage.file.path is required for the file backend")
		}
	case "memory":
	default:
		issues = append(issues, fmt.Sprintf("storage.backend %q is not one of badger, file, memory", c.Storage.Backend))
	}

	if c.Watchlist.Concurrency < 1 {
		issues = append(issues, "watchlist.concurrency must be at least 1")
	}

	return issues
}
