package handlers

import (
	"net/http"

	"event-ticketing/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(e *core.RequestEvent) error {
	stats, err := h.dashboard.Stats(e.Request.Context())
	if err != nil {
		return apiError(e, "dashboardHandler.Stats()", err)
	}
	return e.JSON(http.StatusOK, stats)
}
