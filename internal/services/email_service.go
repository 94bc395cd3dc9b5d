package services

import (
	"context"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
)

// IEmailService is a thin wrapper over the conversation and template
// endpoints of the backend.
type IEmailService interface {
	GenerateTemplate(ctx context.Context, c Caller, projectID, supplierID string, itemIDs []string) (*models.EmailTemplate, error)
	SendConversationEmail(ctx context.Context, c Caller, conversationID string, draft models.EmailDraft) (*models.SendResult, error)
	ListProjectConversations(ctx context.Context, c Caller, projectID string, page, pageSize int) (*models.Page[models.RfqConversation], error)
	ConversationEmails(ctx context.Context, c Caller, conversationID string) ([]models.EmailHistory, error)
	ConversationRfqStatus(ctx context.Context, c Caller, conversationID string) (map[string]any, error)
	SetConversationStatus(ctx context.Context, c Caller, conversationID string, action models.ConversationAction) error
	History(ctx context.Context, c Caller, projectID string, limit int) ([]models.EmailHistory, error)
}

type emailService struct {
	client backend.IClient
}

func NewEmailService(client backend.IClient) IEmailService {
	return &emailService{client: client}
}

func (s *emailService) GenerateTemplate(ctx context.Context, c Caller, projectID, supplierID string, itemIDs []string) (*models.EmailTemplate, error) {
	return s.client.GenerateTemplate(ctx, c.Auth(), projectID, supplierID, itemIDs)
}

func (s *emailService) SendConversationEmail(ctx context.Context, c Caller, conversationID string, draft models.EmailDraft) (*models.SendResult, error) {
	if missing := draft.Missing(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	return s.client.SendConversationEmail(ctx, c.Auth(), conversationID, draft.Payload())
}

func (s *emailService) ListProjectConversations(ctx context.Context, c Caller, projectID string, page, pageSize int) (*models.Page[models.RfqConversation], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.client.ListProjectConversations(ctx, c.Auth(), projectID, page, pageSize)
}

func (s *emailService) ConversationEmails(ctx context.Context, c Caller, conversationID string) ([]models.EmailHistory, error) {
	return s.client.ConversationEmails(ctx, c.Auth(), conversationID)
}

func (s *emailService) ConversationRfqStatus(ctx context.Context, c Caller, conversationID string) (map[string]any, error) {
	return s.client.ConversationRfqStatus(ctx, c.Auth(), conversationID)
}

func (s *emailService) SetConversationStatus(ctx context.Context, c Caller, conversationID string, action models.ConversationAction) error {
	return s.client.SetConversationStatus(ctx, c.Auth(), conversationID, action)
}

func (s *emailService) History(ctx context.Context, c Caller, projectID string, limit int) ([]models.EmailHistory, error) {
	return s.client.EmailHistory(ctx, c.Auth(), projectID, limit)
}
