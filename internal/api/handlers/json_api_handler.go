package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

// JsonApiRequest defines the expected structure for JSON API requests.
// Arguments is a JSON array of positional arguments.
type JsonApiRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// JsonApiResponse defines the structure for JSON API responses.
type JsonApiResponse struct {
	Success bool            `json:"success"`
	Data    interface{}     `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Notices []models.Notice `json:"notices"`
}

// apiMethodFunc defines the signature for workspace action methods.
type apiMethodFunc func(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error)

// JsonApiHandler dispatches workspace actions sent to POST /v1/workspace/api.
type JsonApiHandler struct {
	workspace services.IWorkspaceService
	methods   map[string]apiMethodFunc
}

// NewJsonApiHandler creates a new handler for the workspace action endpoint.
func NewJsonApiHandler(workspace services.IWorkspaceService) *JsonApiHandler {
	h := &JsonApiHandler{workspace: workspace}
	h.methods = map[string]apiMethodFunc{
		"ping":                  h.ping,
		"getState":              h.getState,
		"setTab":                h.setTab,
		"selectProject":         h.selectProject,
		"refresh":               h.refresh,
		"confirmParse":          h.confirmParse,
		"parseFile":             h.parseFile,
		"previewItemEdit":       h.previewItemEdit,
		"saveItemEdit":          h.saveItemEdit,
		"toggleItem":            h.toggleItem,
		"selectAllItems":        h.selectAllItems,
		"clearItemSelection":    h.clearItemSelection,
		"deleteSelectedItems":   h.deleteSelectedItems,
		"openInquiry":           h.openInquiry,
		"closeInquiry":          h.closeInquiry,
		"generateInquiry":       h.generateInquiry,
		"prepareReply":          h.prepareReply,
		"prepareForward":        h.prepareForward,
		"discardDraft":          h.discardDraft,
		"sendEmail":             h.sendEmail,
		"filterConversations":   h.filterConversations,
		"setConversationStatus": h.setConversationStatus,
		"openConversation":      h.openConversation,
		"closeConversation":     h.closeConversation,
	}
	return h
}

// HandleRequest is the main entry point for POST /v1/workspace/api
func (h *JsonApiHandler) HandleRequest(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.sendErrorResponse(c, "Failed to read request body", nil)
		return
	}

	var req JsonApiRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		h.sendErrorResponse(c, "Invalid JSON request format", nil)
		return
	}

	handlerFunc, ok := h.methods[req.Method]
	if !ok {
		h.sendErrorResponse(c, fmt.Sprintf("Unknown method: %s", req.Method), nil)
		return
	}

	result, err := handlerFunc(c, middleware.CallerFrom(c), req.Arguments)
	if err != nil {
		if _, isArgErr := err.(*ArgumentError); !isArgErr {
			log.Printf("Workspace API %s for %s failed: %v", req.Method, middleware.CallerFrom(c).UserID, err)
		}
		h.sendErrorResponse(c, backend.Detail(err, err.Error()), result)
		return
	}

	h.sendSuccessResponse(c, result)
}

func (h *JsonApiHandler) sendSuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, JsonApiResponse{Success: true, Data: data, Notices: notices(c)})
}

// sendErrorResponse reports a failed action. data carries the workspace as the
// failed action left it, when there is one.
func (h *JsonApiHandler) sendErrorResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, JsonApiResponse{Success: false, Data: data, Error: message, Notices: notices(c)})
}

// ArgumentError reports malformed method arguments.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// parseArgs decodes the positional arguments array into targets.
func parseArgs(rawArgPayload json.RawMessage, targets ...interface{}) error {
	if len(targets) == 0 {
		return nil
	}
	if rawArgPayload == nil {
		return &ArgumentError{fmt.Sprintf("Missing 'arguments' field; expected a JSON array with %d argument(s).", len(targets))}
	}
	var argArray []json.RawMessage
	if err := json.Unmarshal(rawArgPayload, &argArray); err != nil {
		return &ArgumentError{"Invalid 'arguments': expected a JSON array."}
	}
	if len(argArray) < len(targets) {
		return &ArgumentError{fmt.Sprintf("Invalid 'arguments': expected %d argument(s), got %d.", len(targets), len(argArray))}
	}
	for i, target := range targets {
		if err := json.Unmarshal(argArray[i], target); err != nil {
			return &ArgumentError{fmt.Sprintf("Invalid format for argument %d.", i+1)}
		}
	}
	return nil
}

// viewResult keeps a nil view out of the response instead of sending null.
func viewResult(view *services.WorkspaceView, err error) (interface{}, error) {
	return viewOrNil(view), err
}

// --- API Method Implementations ---

func (h *JsonApiHandler) ping(c *gin.Context, _ services.Caller, _ json.RawMessage) (interface{}, error) {
	return "pong", nil
}

func (h *JsonApiHandler) getState(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.State(c.Request.Context(), caller))
}

func (h *JsonApiHandler) setTab(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var tab services.Tab
	if err := parseArgs(args, &tab); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.SetTab(c.Request.Context(), caller, tab))
}

func (h *JsonApiHandler) selectProject(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var projectID string
	if err := parseArgs(args, &projectID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.SelectProject(c.Request.Context(), caller, projectID))
}

func (h *JsonApiHandler) refresh(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.Refresh(c.Request.Context(), caller))
}

func (h *JsonApiHandler) confirmParse(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var accept bool
	if err := parseArgs(args, &accept); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.ConfirmParse(c.Request.Context(), caller, accept))
}

func (h *JsonApiHandler) parseFile(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var fileID string
	if err := parseArgs(args, &fileID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.Parse(c.Request.Context(), caller, fileID))
}

func (h *JsonApiHandler) previewItemEdit(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var itemID string
	var edit services.ItemEdit
	if err := parseArgs(args, &itemID, &edit); err != nil {
		return nil, err
	}
	diff, err := h.workspace.PreviewItemEdit(c.Request.Context(), caller, itemID, edit)
	if err != nil {
		return nil, err
	}
	return diff, nil
}

func (h *JsonApiHandler) saveItemEdit(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var itemID string
	var edit services.ItemEdit
	if err := parseArgs(args, &itemID, &edit); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.SaveItemEdit(c.Request.Context(), caller, itemID, edit))
}

func (h *JsonApiHandler) toggleItem(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var itemID string
	if err := parseArgs(args, &itemID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.ToggleItem(c.Request.Context(), caller, itemID))
}

func (h *JsonApiHandler) selectAllItems(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.SelectAllItems(c.Request.Context(), caller))
}

func (h *JsonApiHandler) clearItemSelection(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.ClearItemSelection(c.Request.Context(), caller))
}

func (h *JsonApiHandler) deleteSelectedItems(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var confirmText string
	if err := parseArgs(args, &confirmText); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.DeleteSelected(c.Request.Context(), caller, confirmText))
}

func (h *JsonApiHandler) openInquiry(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.OpenInquiry(c.Request.Context(), caller))
}

func (h *JsonApiHandler) closeInquiry(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.CloseInquiry(c.Request.Context(), caller))
}

func (h *JsonApiHandler) generateInquiry(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var supplierID string
	if err := parseArgs(args, &supplierID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.GenerateInquiry(c.Request.Context(), caller, supplierID))
}

func (h *JsonApiHandler) prepareReply(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var emailID string
	if err := parseArgs(args, &emailID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.PrepareReply(c.Request.Context(), caller, emailID))
}

func (h *JsonApiHandler) prepareForward(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var emailID string
	if err := parseArgs(args, &emailID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.PrepareForward(c.Request.Context(), caller, emailID))
}

func (h *JsonApiHandler) discardDraft(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.DiscardDraft(c.Request.Context(), caller))
}

// sendEmail sends a draft without attachments. Attachments go through the
// multipart endpoint.
func (h *JsonApiHandler) sendEmail(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var draft models.EmailDraft
	if err := parseArgs(args, &draft); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.SendEmail(c.Request.Context(), caller, draft, nil))
}

func (h *JsonApiHandler) filterConversations(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var status models.ConversationStatus
	if err := parseArgs(args, &status); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.FilterConversations(c.Request.Context(), caller, status))
}

func (h *JsonApiHandler) setConversationStatus(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var conversationID string
	var action models.ConversationAction
	if err := parseArgs(args, &conversationID, &action); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.SetConversationStatus(c.Request.Context(), caller, conversationID, action))
}

func (h *JsonApiHandler) openConversation(c *gin.Context, caller services.Caller, args json.RawMessage) (interface{}, error) {
	var conversationID string
	if err := parseArgs(args, &conversationID); err != nil {
		return nil, err
	}
	return viewResult(h.workspace.OpenConversation(c.Request.Context(), caller, conversationID))
}

func (h *JsonApiHandler) closeConversation(c *gin.Context, caller services.Caller, _ json.RawMessage) (interface{}, error) {
	return viewResult(h.workspace.CloseConversation(c.Request.Context(), caller))
}
