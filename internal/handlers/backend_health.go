package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

const backendHealthTimeout = 3 * time.Second

// HealthChecker reports the brokerage backend's health.
type HealthChecker interface {
	Health(ctx context.Context) (*models.BackendHealth, error)
}

// BackendHealthHandler reports whether the brokerage backend is reachable and healthy.
type BackendHealthHandler struct {
	logger  *common.Logger
	checker HealthChecker
}

// NewBackendHealthHandler creates a new backend health handler.
func NewBackendHealthHandler(logger *common.Logger, checker HealthChecker) *BackendHealthHandler {
	return &BackendHealthHandler{logger: logger, checker: checker}
}

// ServeHTTP handles GET /api/backend-health.
func (h *BackendHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), backendHealthTimeout)
	defer cancel()

	health, err := h.checker.Health(ctx)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().Str("error", err.Error()).Msg("backend health check failed")
		}
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}

	status := http.StatusOK
	if !health.Healthy() {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, map[string]string{
		"status":    health.Status,
		"database":  health.Database,
		"scheduler": health.Scheduler,
	})
}
