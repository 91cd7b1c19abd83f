package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/config"
)

// versionInfo holds version fields for the desk and the backend it talks to.
type versionInfo struct {
	Version       string `json:"version"`
	Build         string `json:"build"`
	Commit        string `json:"commit"`
	BackendURL    string `json:"backend_url"`
	BackendStatus string `json:"backend_status"`
	Authenticated bool   `json:"authenticated"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get tradedesk version, backend status and sign-in state. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports local version info plus backend health (graceful if unreachable).
func VersionToolHandler(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version:       config.GetVersion(),
			Build:         config.Build,
			Commit:        config.GitCommit,
			BackendURL:    a.Client.BaseURL(),
			BackendStatus: "unreachable",
			Authenticated: a.Client.Authenticated(),
		}

		if h, err := a.Client.Health(ctx); err == nil && h.Status != "" {
			info.BackendStatus = h.Status
		}

		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}
