package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"smartrfq/desk/internal/models"
)

func conversationPath(id, suffix string) string {
	return "/conversations/" + url.PathEscape(id) + suffix
}

// GenerateTemplate asks the backend for a draft inquiry. item_ids is always
// sent as an array.
func (c *Client) GenerateTemplate(ctx context.Context, auth Auth, projectID, supplierID string, itemIDs []string) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	path := projectPath(projectID, "/conversations/"+url.PathEscape(supplierID)+"/generate-template")
	if err := c.doJSON(ctx, auth, http.MethodPost, path, nil, models.NewTemplateRequest(itemIDs), &tmpl, "Failed to generate template"); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (c *Client) ListConversations(ctx context.Context, auth Auth, q models.ConversationQuery) (*models.Page[models.RfqConversation], error) {
	query := pageQuery(q.Page, q.PageSize)
	if q.ProjectID != "" {
		query.Set("project_id", q.ProjectID)
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	var page models.Page[models.RfqConversation]
	if err := c.doJSON(ctx, auth, http.MethodGet, "/conversations", query, nil, &page, "Failed to fetch conversations"); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListProjectConversations(ctx context.Context, auth Auth, projectID string, page, pageSize int) (*models.Page[models.RfqConversation], error) {
	var result models.Page[models.RfqConversation]
	if err := c.doJSON(ctx, auth, http.MethodGet, projectPath(projectID, "/conversations"), pageQuery(page, pageSize), nil, &result, "Failed to fetch conversations"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ConversationEmails(ctx context.Context, auth Auth, conversationID string) ([]models.EmailHistory, error) {
	var emails []models.EmailHistory
	if err := c.doJSON(ctx, auth, http.MethodGet, conversationPath(conversationID, "/emails"), nil, nil, &emails, "Failed to fetch conversation emails"); err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) ConversationItems(ctx context.Context, auth Auth, conversationID string) ([]models.RfqItem, error) {
	var items []models.RfqItem
	if err := c.doJSON(ctx, auth, http.MethodGet, conversationPath(conversationID, "/rfq-items"), nil, nil, &items, "Failed to fetch conversation items"); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ConversationRfqStatus(ctx context.Context, auth Auth, conversationID string) (map[string]any, error) {
	var status map[string]any
	if err := c.doJSON(ctx, auth, http.MethodGet, conversationPath(conversationID, "/rfq-status"), nil, nil, &status, "Failed to fetch RFQ status"); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Client) SetConversationStatus(ctx context.Context, auth Auth, conversationID string, action models.ConversationAction) error {
	if !action.Valid() {
		return fmt.Errorf("unknown conversation action %q", action)
	}
	fallback := fmt.Sprintf("Failed to %s conversation", action)
	return c.doJSON(ctx, auth, http.MethodPost, conversationPath(conversationID, "/"+string(action)), nil, struct{}{}, nil, fallback)
}

func (c *Client) SendConversationEmail(ctx context.Context, auth Auth, conversationID string, payload models.SendEmailPayload) (*models.SendResult, error) {
	var result models.SendResult
	if err := c.doJSON(ctx, auth, http.MethodPost, conversationPath(conversationID, "/send-email"), nil, payload, &result, "Failed to send email"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendProjectEmail posts the multipart form with the JSON "email_data" field
// and one "attachments" part per file.
func (c *Client) SendProjectEmail(ctx context.Context, auth Auth, projectID string, payload models.SendEmailPayload, attachments []models.Attachment) (*models.SendResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email payload: %w", err)
	}
	var result models.SendResult
	err = c.doMultipart(ctx, auth, projectPath(projectID, "/send"), func(mw *multipart.Writer) error {
		if err := mw.WriteField("email_data", string(data)); err != nil {
			return err
		}
		for _, a := range attachments {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename=%q`, a.Filename))
			contentType := a.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			h.Set("Content-Type", contentType)
			part, err := mw.CreatePart(h)
			if err != nil {
				return err
			}
			if _, err := part.Write(a.Data); err != nil {
				return err
			}
		}
		return nil
	}, &result, "Failed to send email")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) EmailHistory(ctx context.Context, auth Auth, projectID string, limit int) ([]models.EmailHistory, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var emails []models.EmailHistory
	if err := c.doJSON(ctx, auth, http.MethodGet, projectPath(projectID, "/history"), query, nil, &emails, "Failed to fetch email history"); err != nil {
		return nil, err
	}
	return emails, nil
}
