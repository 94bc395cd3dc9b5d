package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/notify"
)

// RestNotificationHandler serves the header notifications dropdown.
type RestNotificationHandler struct {
	feed notify.Feed
}

// NewRestNotificationHandler creates a new RestNotificationHandler.
func NewRestNotificationHandler(feed notify.Feed) *RestNotificationHandler {
	return &RestNotificationHandler{feed: feed}
}

// ListNotifications handles GET /v1/notifications?limit=
func (h *RestNotificationHandler) ListNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	recent, err := h.feed.Recent(c.Request.Context(), middleware.CallerFrom(c).Key(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recent})
}

// ClearNotifications handles DELETE /v1/notifications
func (h *RestNotificationHandler) ClearNotifications(c *gin.Context) {
	if err := h.feed.Clear(c.Request.Context(), middleware.CallerFrom(c).Key()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear notifications"})
		return
	}
	c.Status(http.StatusNoContent)
}
