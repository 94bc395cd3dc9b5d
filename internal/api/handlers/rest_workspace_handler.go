package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

// maxUploadMemory bounds the multipart form kept in memory; larger parts spill
// to temporary files.
const maxUploadMemory = 32 << 20

// RestWorkspaceHandler serves the workspace endpoints that carry files.
type RestWorkspaceHandler struct {
	workspace   services.IWorkspaceService
	attachments services.IAttachmentService
}

// NewRestWorkspaceHandler creates a new RestWorkspaceHandler.
func NewRestWorkspaceHandler(workspace services.IWorkspaceService, attachments services.IAttachmentService) *RestWorkspaceHandler {
	return &RestWorkspaceHandler{workspace: workspace, attachments: attachments}
}

// UploadFile handles POST /v1/workspace/files (multipart "file", optional "parse_now").
func (h *RestWorkspaceHandler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required", "notices": notices(c)})
		return
	}
	parseNow, _ := strconv.ParseBool(c.PostForm("parse_now"))

	file, err := header.Open()
	if err != nil {
		respondError(c, err, "Failed to read uploaded file", nil)
		return
	}
	defer file.Close()

	view, err := h.workspace.Upload(c.Request.Context(), middleware.CallerFrom(c), header.Filename, file, parseNow)
	if err != nil {
		respondError(c, err, "Failed to upload file", viewOrNil(view))
		return
	}
	respond(c, http.StatusOK, view)
}

// SendEmail handles POST /v1/workspace/send: an "email_data" JSON draft plus
// any number of "attachments" parts.
func (h *RestWorkspaceHandler) SendEmail(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "notices": notices(c)})
		return
	}
	var draft models.EmailDraft
	if err := json.Unmarshal([]byte(c.Request.FormValue("email_data")), &draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email_data", "notices": notices(c)})
		return
	}

	var attachments []models.Attachment
	for _, fh := range c.Request.MultipartForm.File["attachments"] {
		f, err := fh.Open()
		if err != nil {
			respondError(c, err, "Failed to read attachment", nil)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, fmt.Errorf("failed to read attachment %s: %w", fh.Filename, err), "Failed to read attachment", nil)
			return
		}
		attachments = append(attachments, models.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	view, err := h.workspace.SendEmail(c.Request.Context(), middleware.CallerFrom(c), draft, attachments)
	if err != nil {
		respondError(c, err, "Failed to send email", viewOrNil(view))
		return
	}
	respond(c, http.StatusOK, view)
}

// ExportItems handles GET /v1/workspace/export.
func (h *RestWorkspaceHandler) ExportItems(c *gin.Context) {
	export, err := h.workspace.ExportItems(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Failed to export items", nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// DownloadFile handles GET /v1/workspace/files/:id/download by streaming the
// backend response through.
func (h *RestWorkspaceHandler) DownloadFile(c *gin.Context) {
	dl, err := h.workspace.DownloadFile(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to download file", nil)
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extra := map[string]string{}
	if dl.ContentDisposition != "" {
		extra["Content-Disposition"] = dl.ContentDisposition
	}
	c.DataFromReader(http.StatusOK, dl.ContentLength, contentType, dl.Body, extra)
}

// ListAttachments handles GET /v1/workspace/emails/:id/attachments.
func (h *RestWorkspaceHandler) ListAttachments(c *gin.Context) {
	files, err := h.attachments.List(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list attachments", nil)
		return
	}
	respond(c, http.StatusOK, files)
}

func viewOrNil(view *services.WorkspaceView) interface{} {
	if view == nil {
		return nil
	}
	return view
}
