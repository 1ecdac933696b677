package handler

import (
	"log/slog"

	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the derived metrics. Every request recomputes from fresh inputs.
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(logger *slog.Logger, dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Snapshot returns the full dashboard
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	snap, err := h.dashboardService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to build dashboard", err)
		return
	}
	RespondOK(c, snap)
}

// TopProducts ranks products by realized revenue
func (h *DashboardHandler) TopProducts(c *gin.Context) {
	var query AnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	ranking, err := h.dashboardService.TopProducts(c.Request.Context(), query.N)
	if err != nil {
		respondError(c, h.logger, "Failed to rank products", err)
		return
	}
	RespondWithList(c, ranking, len(ranking))
}

// Trend returns the per-day revenue for the requested window
func (h *DashboardHandler) Trend(c *gin.Context) {
	var query AnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	days, err := h.dashboardService.Trend(c.Request.Context(), query.Days)
	if err != nil {
		respondError(c, h.logger, "Failed to compute trend", err)
		return
	}
	RespondWithList(c, days, len(days))
}

// Inventory values the catalog and lists the products needing attention
func (h *DashboardHandler) Inventory(c *gin.Context) {
	var query AnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	inv, err := h.dashboardService.Inventory(c.Request.Context(), query.Threshold)
	if err != nil {
		respondError(c, h.logger, "Failed to value inventory", err)
		return
	}
	RespondOK(c, inv)
}
