package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

// RestDashboardHandler serves the dashboard summary.
type RestDashboardHandler struct {
	dashboardService services.IDashboardService
}

// NewRestDashboardHandler creates a new RestDashboardHandler.
func NewRestDashboardHandler(dashboardService services.IDashboardService) *RestDashboardHandler {
	return &RestDashboardHandler{dashboardService: dashboardService}
}

// GetDashboard handles GET /v1/dashboard?project_id=&filter=all|sent|fail
func (h *RestDashboardHandler) GetDashboard(c *gin.Context) {
	filter := models.EmailFilter(c.DefaultQuery("filter", string(models.EmailFilterAll)))
	dashboard, err := h.dashboardService.Load(c.Request.Context(), middleware.CallerFrom(c), c.Query("project_id"), filter)
	if err != nil {
		respondError(c, err, "Failed to load dashboard", nil)
		return
	}
	respond(c, http.StatusOK, dashboard)
}
