package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BradenHooton/sentinel/internal/services"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
)

const (
	defaultDashboardLimit = 100
	maxDashboardLimit     = 1000
)

// DashboardServiceInterface defines the interface for monitoring views
type DashboardServiceInterface interface {
	RecentAttempts(ctx context.Context, limit int) ([]services.AttemptResponse, error)
	RecentAlerts(ctx context.Context, limit int) ([]services.AlertResponse, error)
}

// DashboardHandler serves read-only monitoring endpoints
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RecentAttempts returns login attempts within the detection window
func (h *DashboardHandler) RecentAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.RecentAttempts(r.Context(), parseLimit(r))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// RecentAlerts returns the newest persisted alerts
func (h *DashboardHandler) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.RecentAlerts(r.Context(), parseLimit(r))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultDashboardLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultDashboardLimit
	}
	if limit > maxDashboardLimit {
		return maxDashboardLimit
	}
	return limit
}
