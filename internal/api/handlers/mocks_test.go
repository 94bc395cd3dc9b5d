package handlers_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
	"smartrfq/desk/internal/storage"
)

// --- Mocks ---

// MockWorkspaceService implements services.IWorkspaceService
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) view(args mock.Arguments) (*services.WorkspaceView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WorkspaceView), args.Error(1)
}

func (m *MockWorkspaceService) State(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) SetTab(ctx context.Context, c services.Caller, tab services.Tab) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, tab))
}
func (m *MockWorkspaceService) SelectProject(ctx context.Context, c services.Caller, projectID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, projectID))
}
func (m *MockWorkspaceService) Refresh(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) Upload(ctx context.Context, c services.Caller, filename string, content io.Reader, parseNow bool) (*services.WorkspaceView, error) {
	data, _ := io.ReadAll(content)
	return m.view(m.Called(ctx, c, filename, string(data), parseNow))
}
func (m *MockWorkspaceService) ConfirmParse(ctx context.Context, c services.Caller, accept bool) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, accept))
}
func (m *MockWorkspaceService) Parse(ctx context.Context, c services.Caller, fileID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, fileID))
}
func (m *MockWorkspaceService) DownloadFile(ctx context.Context, c services.Caller, fileID string) (*backend.Download, error) {
	args := m.Called(ctx, c, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Download), args.Error(1)
}
func (m *MockWorkspaceService) PreviewItemEdit(ctx context.Context, c services.Caller, itemID string, edit services.ItemEdit) (*services.ItemDiff, error) {
	args := m.Called(ctx, c, itemID, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemDiff), args.Error(1)
}
func (m *MockWorkspaceService) SaveItemEdit(ctx context.Context, c services.Caller, itemID string, edit services.ItemEdit) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, itemID, edit))
}
func (m *MockWorkspaceService) ToggleItem(ctx context.Context, c services.Caller, itemID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, itemID))
}
func (m *MockWorkspaceService) SelectAllItems(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) ClearItemSelection(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) DeleteSelected(ctx context.Context, c services.Caller, confirmText string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, confirmText))
}
func (m *MockWorkspaceService) ExportItems(ctx context.Context, c services.Caller) (*services.Export, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Export), args.Error(1)
}
func (m *MockWorkspaceService) OpenInquiry(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) CloseInquiry(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) GenerateInquiry(ctx context.Context, c services.Caller, supplierID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, supplierID))
}
func (m *MockWorkspaceService) PrepareReply(ctx context.Context, c services.Caller, emailID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, emailID))
}
func (m *MockWorkspaceService) PrepareForward(ctx context.Context, c services.Caller, emailID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, emailID))
}
func (m *MockWorkspaceService) DiscardDraft(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}
func (m *MockWorkspaceService) SendEmail(ctx context.Context, c services.Caller, draft models.EmailDraft, attachments []models.Attachment) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, draft, attachments))
}
func (m *MockWorkspaceService) FilterConversations(ctx context.Context, c services.Caller, status models.ConversationStatus) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, status))
}
func (m *MockWorkspaceService) SetConversationStatus(ctx context.Context, c services.Caller, conversationID string, action models.ConversationAction) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, conversationID, action))
}
func (m *MockWorkspaceService) OpenConversation(ctx context.Context, c services.Caller, conversationID string) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c, conversationID))
}
func (m *MockWorkspaceService) CloseConversation(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
	return m.view(m.Called(ctx, c))
}

// MockProjectService implements services.IProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) listing(args mock.Arguments) (*services.ProjectListing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProjectListing), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, c services.Caller, q services.ProjectListQuery) (*services.ProjectListing, error) {
	return m.listing(m.Called(ctx, c, q))
}
func (m *MockProjectService) Create(ctx context.Context, c services.Caller, in models.ProjectInput, q services.ProjectListQuery) (*services.ProjectListing, error) {
	return m.listing(m.Called(ctx, c, in, q))
}
func (m *MockProjectService) Update(ctx context.Context, c services.Caller, id string, in models.ProjectInput, q services.ProjectListQuery) (*services.ProjectListing, error) {
	return m.listing(m.Called(ctx, c, id, in, q))
}
func (m *MockProjectService) Delete(ctx context.Context, c services.Caller, id string, q services.ProjectListQuery) (*services.ProjectListing, error) {
	return m.listing(m.Called(ctx, c, id, q))
}
func (m *MockProjectService) Detail(ctx context.Context, c services.Caller, id string) (*models.ProjectDetail, error) {
	args := m.Called(ctx, c, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectDetail), args.Error(1)
}
func (m *MockProjectService) Selector(ctx context.Context, c services.Caller) (*services.ProjectSelector, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProjectSelector), args.Error(1)
}

// MockSupplierService implements services.ISupplierService
type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) suppliers(args mock.Arguments) ([]models.Supplier, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Supplier), args.Error(1)
}

func (m *MockSupplierService) List(ctx context.Context, c services.Caller, search string) ([]models.Supplier, error) {
	return m.suppliers(m.Called(ctx, c, search))
}
func (m *MockSupplierService) Create(ctx context.Context, c services.Caller, form models.SupplierForm) ([]models.Supplier, error) {
	return m.suppliers(m.Called(ctx, c, form))
}
func (m *MockSupplierService) Update(ctx context.Context, c services.Caller, id string, form models.SupplierForm) ([]models.Supplier, error) {
	return m.suppliers(m.Called(ctx, c, id, form))
}
func (m *MockSupplierService) Delete(ctx context.Context, c services.Caller, id string) ([]models.Supplier, error) {
	return m.suppliers(m.Called(ctx, c, id))
}
func (m *MockSupplierService) SyncUser(ctx context.Context, c services.Caller) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockDashboardService implements services.IDashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Load(ctx context.Context, c services.Caller, projectID string, filter models.EmailFilter) (*models.Dashboard, error) {
	args := m.Called(ctx, c, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

// MockEmailService implements services.IEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) GenerateTemplate(ctx context.Context, c services.Caller, projectID, supplierID string, itemIDs []string) (*models.EmailTemplate, error) {
	args := m.Called(ctx, c, projectID, supplierID, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailTemplate), args.Error(1)
}
func (m *MockEmailService) SendConversationEmail(ctx context.Context, c services.Caller, conversationID string, draft models.EmailDraft) (*models.SendResult, error) {
	args := m.Called(ctx, c, conversationID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SendResult), args.Error(1)
}
func (m *MockEmailService) ListProjectConversations(ctx context.Context, c services.Caller, projectID string, page, pageSize int) (*models.Page[models.RfqConversation], error) {
	args := m.Called(ctx, c, projectID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.RfqConversation]), args.Error(1)
}
func (m *MockEmailService) ConversationEmails(ctx context.Context, c services.Caller, conversationID string) ([]models.EmailHistory, error) {
	args := m.Called(ctx, c, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailHistory), args.Error(1)
}
func (m *MockEmailService) ConversationRfqStatus(ctx context.Context, c services.Caller, conversationID string) (map[string]any, error) {
	args := m.Called(ctx, c, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}
func (m *MockEmailService) SetConversationStatus(ctx context.Context, c services.Caller, conversationID string, action models.ConversationAction) error {
	args := m.Called(ctx, c, conversationID, action)
	return args.Error(0)
}
func (m *MockEmailService) History(ctx context.Context, c services.Caller, projectID string, limit int) ([]models.EmailHistory, error) {
	args := m.Called(ctx, c, projectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailHistory), args.Error(1)
}

// MockAttachmentService implements services.IAttachmentService
type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) List(ctx context.Context, c services.Caller, emailID string) ([]storage.ArchivedFile, error) {
	args := m.Called(ctx, c, emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ArchivedFile), args.Error(1)
}
