package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
)

// MockClient implements backend.IClient.
type MockClient struct {
	mock.Mock
}

var _ backend.IClient = (*MockClient)(nil)

func (m *MockClient) ListProjects(ctx context.Context, auth backend.Auth, q models.ProjectQuery) (*models.Page[models.Project], error) {
	args := m.Called(ctx, auth, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.Project]), args.Error(1)
}

func (m *MockClient) GetProject(ctx context.Context, auth backend.Auth, id string) (*models.Project, error) {
	args := m.Called(ctx, auth, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockClient) CreateProject(ctx context.Context, auth backend.Auth, in models.ProjectInput) (*models.Project, error) {
	args := m.Called(ctx, auth, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockClient) UpdateProject(ctx context.Context, auth backend.Auth, id string, in models.ProjectInput) (*models.Project, error) {
	args := m.Called(ctx, auth, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockClient) DeleteProject(ctx context.Context, auth backend.Auth, id string) error {
	return m.Called(ctx, auth, id).Error(0)
}

func (m *MockClient) ListFiles(ctx context.Context, auth backend.Auth, projectID string) ([]models.RfqFile, error) {
	args := m.Called(ctx, auth, projectID)
	files, _ := args.Get(0).([]models.RfqFile)
	return files, args.Error(1)
}

func (m *MockClient) UploadFile(ctx context.Context, auth backend.Auth, projectID, filename string, content io.Reader) (*models.RfqFile, error) {
	args := m.Called(ctx, auth, projectID, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RfqFile), args.Error(1)
}

func (m *MockClient) ParseFile(ctx context.Context, auth backend.Auth, projectID, fileID string) (*models.ParseResult, error) {
	args := m.Called(ctx, auth, projectID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParseResult), args.Error(1)
}

func (m *MockClient) DownloadFile(ctx context.Context, auth backend.Auth, projectID, fileID string) (*backend.Download, error) {
	args := m.Called(ctx, auth, projectID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Download), args.Error(1)
}

func (m *MockClient) ListItems(ctx context.Context, auth backend.Auth, projectID string) ([]models.RfqItem, error) {
	args := m.Called(ctx, auth, projectID)
	items, _ := args.Get(0).([]models.RfqItem)
	return items, args.Error(1)
}

func (m *MockClient) UpdateItem(ctx context.Context, auth backend.Auth, itemID string, patch map[string]any) (*models.RfqItem, error) {
	args := m.Called(ctx, auth, itemID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RfqItem), args.Error(1)
}

func (m *MockClient) BatchDeleteItems(ctx context.Context, auth backend.Auth, projectID string, itemIDs []string) (*models.BatchDeleteResult, error) {
	args := m.Called(ctx, auth, projectID, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchDeleteResult), args.Error(1)
}

func (m *MockClient) ListSuppliers(ctx context.Context, auth backend.Auth) ([]models.Supplier, error) {
	args := m.Called(ctx, auth)
	suppliers, _ := args.Get(0).([]models.Supplier)
	return suppliers, args.Error(1)
}

func (m *MockClient) CreateSupplier(ctx context.Context, auth backend.Auth, in models.SupplierInput) (*models.Supplier, error) {
	args := m.Called(ctx, auth, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockClient) UpdateSupplier(ctx context.Context, auth backend.Auth, id string, in models.SupplierInput) (*models.Supplier, error) {
	args := m.Called(ctx, auth, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockClient) DeleteSupplier(ctx context.Context, auth backend.Auth, id string) error {
	return m.Called(ctx, auth, id).Error(0)
}

func (m *MockClient) GenerateTemplate(ctx context.Context, auth backend.Auth, projectID, supplierID string, itemIDs []string) (*models.EmailTemplate, error) {
	args := m.Called(ctx, auth, projectID, supplierID, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailTemplate), args.Error(1)
}

func (m *MockClient) ListConversations(ctx context.Context, auth backend.Auth, q models.ConversationQuery) (*models.Page[models.RfqConversation], error) {
	args := m.Called(ctx, auth, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.RfqConversation]), args.Error(1)
}

func (m *MockClient) ListProjectConversations(ctx context.Context, auth backend.Auth, projectID string, page, pageSize int) (*models.Page[models.RfqConversation], error) {
	args := m.Called(ctx, auth, projectID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.RfqConversation]), args.Error(1)
}

func (m *MockClient) ConversationEmails(ctx context.Context, auth backend.Auth, conversationID string) ([]models.EmailHistory, error) {
	args := m.Called(ctx, auth, conversationID)
	emails, _ := args.Get(0).([]models.EmailHistory)
	return emails, args.Error(1)
}

func (m *MockClient) ConversationItems(ctx context.Context, auth backend.Auth, conversationID string) ([]models.RfqItem, error) {
	args := m.Called(ctx, auth, conversationID)
	items, _ := args.Get(0).([]models.RfqItem)
	return items, args.Error(1)
}

func (m *MockClient) ConversationRfqStatus(ctx context.Context, auth backend.Auth, conversationID string) (map[string]any, error) {
	args := m.Called(ctx, auth, conversationID)
	status, _ := args.Get(0).(map[string]any)
	return status, args.Error(1)
}

func (m *MockClient) SetConversationStatus(ctx context.Context, auth backend.Auth, conversationID string, action models.ConversationAction) error {
	return m.Called(ctx, auth, conversationID, action).Error(0)
}

func (m *MockClient) SendConversationEmail(ctx context.Context, auth backend.Auth, conversationID string, payload models.SendEmailPayload) (*models.SendResult, error) {
	args := m.Called(ctx, auth, conversationID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SendResult), args.Error(1)
}

func (m *MockClient) SendProjectEmail(ctx context.Context, auth backend.Auth, projectID string, payload models.SendEmailPayload, attachments []models.Attachment) (*models.SendResult, error) {
	args := m.Called(ctx, auth, projectID, payload, attachments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SendResult), args.Error(1)
}

func (m *MockClient) EmailHistory(ctx context.Context, auth backend.Auth, projectID string, limit int) ([]models.EmailHistory, error) {
	args := m.Called(ctx, auth, projectID, limit)
	emails, _ := args.Get(0).([]models.EmailHistory)
	return emails, args.Error(1)
}

func (m *MockClient) DashboardSummary(ctx context.Context, auth backend.Auth, projectID string) (*models.DashboardSummary, error) {
	args := m.Called(ctx, auth, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

func (m *MockClient) SyncUser(ctx context.Context, auth backend.Auth) error {
	return m.Called(ctx, auth).Error(0)
}

// MockJobQueue implements IJobQueue.
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueUserSync(ctx context.Context, c Caller) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockJobQueue) EnqueueAttachmentArchive(ctx context.Context, c Caller, projectID, emailID string, attachments []models.Attachment) error {
	return m.Called(ctx, c, projectID, emailID, attachments).Error(0)
}
