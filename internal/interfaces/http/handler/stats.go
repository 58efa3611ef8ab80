package handler

import (
	"github.com/greenshop/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the admin dashboard summary
type DashboardHandler struct {
	BaseHandler
	dashboard *report.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard *report.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @ID           adminDashboardStats
// @Summary      Dashboard statistics
// @Description  Product and order totals. Revenue sums delivered orders only.
// @Tags         admin-dashboard
// @Produce      json
// @Success      200 {object} APIResponse[report.DashboardStats]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
