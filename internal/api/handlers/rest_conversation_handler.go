package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

// RestConversationHandler exposes the stateless email and conversation calls.
type RestConversationHandler struct {
	emailService services.IEmailService
}

// NewRestConversationHandler creates a new RestConversationHandler.
func NewRestConversationHandler(emailService services.IEmailService) *RestConversationHandler {
	return &RestConversationHandler{emailService: emailService}
}

type generateTemplateRequest struct {
	SupplierID string   `json:"supplier_id" binding:"required"`
	ItemIDs    []string `json:"item_ids"`
}

// GenerateTemplate handles POST /v1/projects/:id/templates
func (h *RestConversationHandler) GenerateTemplate(c *gin.Context) {
	var req generateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier_id is required"})
		return
	}
	tmpl, err := h.emailService.GenerateTemplate(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req.SupplierID, req.ItemIDs)
	if err != nil {
		respondError(c, err, "Failed to generate email template", nil)
		return
	}
	respond(c, http.StatusOK, tmpl)
}

// ListProjectConversations handles GET /v1/projects/:id/conversations
func (h *RestConversationHandler) ListProjectConversations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	result, err := h.emailService.ListProjectConversations(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to fetch conversations", nil)
		return
	}
	respond(c, http.StatusOK, result)
}

// ProjectHistory handles GET /v1/projects/:id/history?limit=
func (h *RestConversationHandler) ProjectHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	history, err := h.emailService.History(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch email history", nil)
		return
	}
	views := make([]models.EmailView, 0, len(history))
	for _, e := range history {
		views = append(views, models.NewEmailView(e))
	}
	respond(c, http.StatusOK, views)
}

// ConversationEmails handles GET /v1/conversations/:id/emails
func (h *RestConversationHandler) ConversationEmails(c *gin.Context) {
	emails, err := h.emailService.ConversationEmails(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch conversation emails", nil)
		return
	}
	respond(c, http.StatusOK, emails)
}

// ConversationRfqStatus handles GET /v1/conversations/:id/rfq-status
func (h *RestConversationHandler) ConversationRfqStatus(c *gin.Context) {
	status, err := h.emailService.ConversationRfqStatus(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch RFQ status", nil)
		return
	}
	respond(c, http.StatusOK, status)
}

// SetConversationStatus handles POST /v1/conversations/:id/status/:action
func (h *RestConversationHandler) SetConversationStatus(c *gin.Context) {
	action := models.ConversationAction(c.Param("action"))
	if !action.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown conversation action"})
		return
	}
	if err := h.emailService.SetConversationStatus(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), action); err != nil {
		respondError(c, err, "Failed to update conversation", nil)
		return
	}
	respond(c, http.StatusOK, gin.H{"conversation_id": c.Param("id"), "action": action})
}

// SendConversationEmail handles POST /v1/conversations/:id/send-email
func (h *RestConversationHandler) SendConversationEmail(c *gin.Context) {
	var draft models.EmailDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	result, err := h.emailService.SendConversationEmail(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), draft)
	if err != nil {
		respondError(c, err, "Failed to send email", nil)
		return
	}
	respond(c, http.StatusOK, result)
}
