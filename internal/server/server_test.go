package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/config"
	"github.com/bobmcallan/tradedesk/internal/mcp"
)

func newTestApp(t *testing.T, backendURL string) *app.App {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.API.URL = backendURL
	cfg.Storage.Backend = "memory"

	application, err := app.New(context.Background(), cfg, common.NewSilentLogger(), nil)
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(func() {
		application.Close()
	})

	return application
}

func newTestBackend(t *testing.T, status string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Write([]byte(`{"status":"` + status + `","database":"connected","scheduler":"running"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes_HealthEndpoint(t *testing.T) {
	srv := New(newTestApp(t, "http://127.0.0.1:1"), nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestRoutes_BackendHealthEndpoint(t *testing.T) {
	tests := []struct {
		status   string
		wantCode int
	}{
		{"healthy", http.StatusOK},
		{"degraded", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			backend := newTestBackend(t, tt.status)
			srv := New(newTestApp(t, backend.URL), nil)

			req := httptest.NewRequest("GET", "/api/backend-health", nil)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.status) {
				t.Errorf("expected body to report %s, got %s", tt.status, w.Body.String())
			}
		})
	}
}

func TestRoutes_NotFound(t *testing.T) {
	srv := New(newTestApp(t, "http://127.0.0.1:1"), nil)

	req := httptest.NewRequest("GET", "/api/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON 404, got %s", ct)
	}
}

func TestRoutes_MiddlewareApplied(t *testing.T) {
	srv := New(newTestApp(t, "http://127.0.0.1:1"), nil)

	req := httptest.NewRequest("GET", "/api/version", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-ID") != "abc-123" {
		t.Errorf("expected correlation id echoed, got %q", w.Header().Get("X-Correlation-ID"))
	}
}

func TestRoutes_MCPEndpoint(t *testing.T) {
	application := newTestApp(t, "http://127.0.0.1:1")
	handler := mcpserver.NewStreamableHTTPServer(mcp.NewServer(application), mcpserver.WithStateLess(true))
	srv := New(application, handler)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"tradedesk"`) {
		t.Errorf("expected server info in initialize response, got %s", w.Body.String())
	}
}

func TestRoutes_MCPEndpointAbsent(t *testing.T) {
	srv := New(newTestApp(t, "http://127.0.0.1:1"), nil)

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without an MCP handler, got %d", w.Code)
	}
}
