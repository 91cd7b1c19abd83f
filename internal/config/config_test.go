package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.API.URL != "http://localhost:8000" {
		t.Errorf("expected default api url http://localhost:8000, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %s", cfg.API.GetTimeout())
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("expected default backend badger, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Badger.Path != "./data/tradedesk" {
		t.Errorf("expected default badger path ./data/tradedesk, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Watchlist.Concurrency != 8 {
		t.Errorf("expected default concurrency 8, got %d", cfg.Watchlist.Concurrency)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected default config to be valid, got %v", issues)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.MCP.Port != 4243 {
		t.Errorf("expected default mcp port 4243, got %d", cfg.MCP.Port)
	}
	if cfg.MCP.Addr() != "localhost:4243" {
		t.Errorf("expected default mcp addr localhost:4243, got %s", cfg.MCP.Addr())
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "tradedesk.toml")

	content := `
environment = "dev"

[api]
url = "https://broker.example.com/"
timeout = "3s"

[storage]
backend = "file"

[storage.file]
path = "/tmp/desk.json"

[watchlist]
concurrency = 2
defaults = ["AAPL", "MSFT"]

[logging]
level = "debug"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if !cfg.IsDevMode() {
		t.Error("expected dev mode")
	}
	if cfg.API.URL != "https://broker.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", cfg.API.GetTimeout())
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.File.Path != "/tmp/desk.json" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Watchlist.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Watchlist.Concurrency)
	}
	if len(cfg.Watchlist.Defaults) != 2 || cfg.Watchlist.Defaults[0] != "AAPL" {
		t.Errorf("unexpected watchlist defaults: %v", cfg.Watchlist.Defaults)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Untouched sections keep defaults
	if cfg.MCP.Name != "tradedesk" {
		t.Errorf("expected default mcp name, got %s", cfg.MCP.Name)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	os.WriteFile(base, []byte("[api]\nurl = \"http://base:8000\"\ntimeout = \"5s\"\n"), 0644)
	os.WriteFile(override, []byte("[api]\nurl = \"http://override:8000\"\n"), 0644)

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.API.URL != "http://override:8000" {
		t.Errorf("expected later file to win, got %s", cfg.API.URL)
	}
	if cfg.API.Timeout != "5s" {
		t.Errorf("expected timeout from base file, got %s", cfg.API.Timeout)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/tradedesk.toml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "bad.toml")
	os.WriteFile(tomlPath, []byte("[api\nurl = "), 0644)

	if _, err := LoadFromFiles(tomlPath); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TRADEDESK_API_URL", "http://env-host:9000")
	t.Setenv("TRADEDESK_API_TIMEOUT", "7s")
	t.Setenv("TRADEDESK_STORAGE_BACKEND", "memory")
	t.Setenv("TRADEDESK_WATCHLIST_CONCURRENCY", "3")
	t.Setenv("TRADEDESK_MCP_PORT", "5000")
	t.Setenv("TRADEDESK_LOG_LEVEL", "error")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.API.URL != "http://env-host:9000" {
		t.Errorf("expected env api url, got %s", cfg.API.URL)
	}
	if cfg.API.GetTimeout() != 7*time.Second {
		t.Errorf("expected env timeout 7s, got %s", cfg.API.GetTimeout())
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.Storage.Backend)
	}
	if cfg.Watchlist.Concurrency != 3 {
		t.Errorf("expected concurrency 3, got %d", cfg.Watchlist.Concurrency)
	}
	if cfg.MCP.Port != 5000 {
		t.Errorf("expected mcp port 5000, got %d", cfg.MCP.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level error, got %s", cfg.Logging.Level)
	}
}

func TestApplyEnvOverrides_InvalidNumber(t *testing.T) {
	t.Setenv("TRADEDESK_MCP_PORT", "not-a-number")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.MCP.Port != 4243 {
		t.Errorf("expected default port when env is invalid, got %d", cfg.MCP.Port)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, "http://flag:1234/", 7000)

	if cfg.API.URL != "http://flag:1234" {
		t.Errorf("expected flag api url, got %s", cfg.API.URL)
	}
	if cfg.MCP.Port != 7000 {
		t.Errorf("expected flag port 7000, got %d", cfg.MCP.Port)
	}

	ApplyFlagOverrides(cfg, "", 0)
	if cfg.MCP.Port != 7000 {
		t.Errorf("zero port should not override, got %d", cfg.MCP.Port)
	}
}

func TestAPIConfig_GetTimeoutFallback(t *testing.T) {
	c := APIConfig{Timeout: "soon"}
	if c.GetTimeout() != defaultRequestTimeout {
		t.Errorf("expected fallback timeout, got %s", c.GetTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty url", func(c *Config) { c.API.URL = "" }, "api.url is required"},
		{"relative url", func(c *Config) { c.API.URL = "broker" }, "not an absolute URL"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "-1s" }, "api.timeout"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"badger without path", func(c *Config) { c.Storage.Badger.Path = "" }, "storage.badger.path"},
		{"file without path", func(c *Config) { c.Storage.Backend = "file"; c.Storage.File.Path = "" }, "storage.file.path"},
		{"zero concurrency", func(c *Config) { c.Watchlist.Concurrency = 0 }, "watchlist.concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			issues := cfg.Validate()
			if len(issues) != 1 {
				t.Fatalf("expected 1 issue, got %v", issues)
			}
			if !strings.Contains(issues[0], tt.want) {
				t.Errorf("expected issue containing %q, got %q", tt.want, issues[0])
			}
		})
	}
}
