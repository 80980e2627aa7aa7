package handlers

import (
	"net/http"

	"contentdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	analytics *services.AnalyticsService
}

func NewDashboardHandler(analytics *services.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{analytics: analytics}
}

// Analytics GET /api/dashboard/analytics
func (h *DashboardHandler) Analytics(c *gin.Context) {
	current, err := h.analytics.ComputeCurrent(c.Request.Context())
	if err != nil {
		RenderFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

// Latest GET /api/dashboard/latest
func (h *DashboardHandler) Latest(c *gin.Context) {
	snap, err := h.analytics.Latest(c.Request.Context())
	if err != nil {
		RenderFailure(c, err)
		return
	}
	if snap == nil {
		RenderError(c, http.StatusNotFound, "no analytics snapshot yet")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Snapshot POST /api/dashboard/snapshot
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	snap, err := h.analytics.Snapshot(c.Request.Context())
	if err != nil {
		RenderFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}
