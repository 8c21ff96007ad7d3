package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/usecase"
)

type DashboardProvider interface {
	Execute(ctx context.Context) (*entity.DashboardSnapshot, error)
}

type DashboardHandler struct {
	dashboard DashboardProvider
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard DashboardProvider, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Handle serves GET /api/dashboard.
func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboard.Execute(r.Context())
	if err != nil {
		h.logger.Error("dashboard failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeDatabase, "Failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
