package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartrfq/desk/internal/api/handlers"
	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
	"smartrfq/desk/internal/storage"
)

func setupWorkspaceRouter(ws services.IWorkspaceService, attachments services.IAttachmentService) *gin.Engine {
	r := newTestEngine()
	h := handlers.NewRestWorkspaceHandler(ws, attachments)
	r.POST("/v1/workspace/files", h.UploadFile)
	r.GET("/v1/workspace/files/:id/download", h.DownloadFile)
	r.POST("/v1/workspace/send", h.SendEmail)
	r.GET("/v1/workspace/export", h.ExportItems)
	r.GET("/v1/workspace/emails/:id/attachments", h.ListAttachments)
	return r
}

func TestRestWorkspaceHandler_UploadFile(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	mockWs.On("Upload", mock.Anything, testCaller, "rfq.pdf", "%PDF-1.4", true).Return(workspaceWithProject(models.ProjectOpen), nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "rfq.pdf")
	part.Write([]byte("%PDF-1.4"))
	mw.WriteField("parse_now", "true")
	mw.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/workspace/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockWs.AssertExpectations(t)
}

func TestRestWorkspaceHandler_UploadFile_MissingFile(t *testing.T) {
	router := setupWorkspaceRouter(new(MockWorkspaceService), new(MockAttachmentService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/workspace/files", strings.NewReader(""))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestWorkspaceHandler_UploadFile_LockedProject(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	mockWs.On("Upload", mock.Anything, testCaller, "rfq.pdf", "x", false).Return(workspaceWithProject(models.ProjectClosed), services.ErrProjectLocked)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "rfq.pdf")
	part.Write([]byte("x"))
	mw.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/workspace/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusLocked, w.Code)
	var respBody map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, services.ErrProjectLocked.Error(), respBody["error"])
	assert.NotNil(t, respBody["data"])
}

func TestRestWorkspaceHandler_SendEmail(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	draft := models.EmailDraft{To: "sales@vendor.com", Subject: "RFQ", Content: "Hello", ItemIDs: []string{"i1"}}
	mockWs.On("SendEmail", mock.Anything, testCaller, draft, mock.MatchedBy(func(atts []models.Attachment) bool {
		return len(atts) == 2 &&
			atts[0].Filename == "drawing.pdf" && atts[0].ContentType == "application/pdf" && string(atts[0].Data) == "%PDF" &&
			atts[1].Filename == "notes.txt" && string(atts[1].Data) == "notes"
	})).Return(workspaceWithProject(models.ProjectOpen), nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("email_data", `{"to":"sales@vendor.com","subject":"RFQ","content":"Hello","item_ids":["i1"]}`)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="attachments"; filename="drawing.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, _ := mw.CreatePart(h)
	part.Write([]byte("%PDF"))
	part, _ = mw.CreateFormFile("attachments", "notes.txt")
	part.Write([]byte("notes"))
	mw.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/workspace/send", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockWs.AssertExpectations(t)
}

func TestRestWorkspaceHandler_SendEmail_ValidationError(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	mockWs.On("SendEmail", mock.Anything, testCaller, models.EmailDraft{To: "a@b.c"}, []models.Attachment(nil)).
		Return(nil, &services.ValidationError{Fields: []string{"subject", "content"}})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("email_data", `{"to":"a@b.c"}`)
	mw.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/workspace/send", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing required fields: subject, content")
}

func TestRestWorkspaceHandler_ExportItems(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	export := &services.Export{Filename: "Pump_rfq_items_20261018.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: []byte("PK")}
	mockWs.On("ExportItems", mock.Anything, testCaller).Return(export, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/workspace/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Pump_rfq_items_20261018.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
}

func TestRestWorkspaceHandler_ExportItems_NoProject(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	mockWs.On("ExportItems", mock.Anything, testCaller).Return(nil, services.ErrNoProjectSelected)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/workspace/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRestWorkspaceHandler_DownloadFile(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	mockWs.On("DownloadFile", mock.Anything, testCaller, "f1").Return(&backend.Download{
		Body:               io.NopCloser(strings.NewReader("%PDF-1.4")),
		ContentType:        "application/pdf",
		ContentDisposition: `attachment; filename="rfq.pdf"`,
		ContentLength:      8,
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/workspace/files/f1/download", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="rfq.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestRestWorkspaceHandler_DownloadFile_NotFound(t *testing.T) {
	mockWs := new(MockWorkspaceService)
	router := setupWorkspaceRouter(mockWs, new(MockAttachmentService))
	mockWs.On("DownloadFile", mock.Anything, testCaller, "missing").
		Return(nil, &backend.APIError{Status: http.StatusNotFound, Detail: "File not found"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/workspace/files/missing/download", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "File not found")
}

func TestRestWorkspaceHandler_ListAttachments(t *testing.T) {
	mockAtt := new(MockAttachmentService)
	router := setupWorkspaceRouter(new(MockWorkspaceService), mockAtt)
	mockAtt.On("List", mock.Anything, testCaller, "e1").Return([]storage.ArchivedFile{{Key: "archive/org-1/p1/e1/000_a.pdf", Filename: "a.pdf", Size: 3}}, nil)
	mockAtt.On("List", mock.Anything, testCaller, "e2").Return(nil, services.ErrArchiveDisabled)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/workspace/emails/e1/attachments", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"a.pdf"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/workspace/emails/e2/attachments", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
