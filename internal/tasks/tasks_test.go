package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/services"
	"smartrfq/desk/internal/storage"
	"smartrfq/desk/internal/tasks"
)

// --- Mocks ---

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

type MockSupplierService struct {
	services.ISupplierService
	mock.Mock
}

func (m *MockSupplierService) SyncUser(ctx context.Context, c services.Caller) error {
	return m.Called(ctx, c).Error(0)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Put(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

func (m *MockArchive) List(ctx context.Context, prefix string) ([]storage.ArchivedFile, error) {
	args := m.Called(ctx, prefix)
	files, _ := args.Get(0).([]storage.ArchivedFile)
	return files, args.Error(1)
}

var caller = services.Caller{UserID: "u1", OrgID: "org-1", Token: "tok"}

// --- Queue ---

func TestQueue_EnqueueUserSync(t *testing.T) {
	client := new(MockAsynqClient)
	q := tasks.NewQueue(client, false)

	client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var p tasks.UserSyncPayload
		return task.Type() == tasks.TypeUserSync && json.Unmarshal(task.Payload(), &p) == nil && p.Token == "tok" && p.OrgID == "org-1"
	}), mock.Anything).Return(&asynq.TaskInfo{ID: "user:sync:u1:org-1"}, nil).Once()
	require.NoError(t, q.EnqueueUserSync(context.Background(), caller))

	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, asynq.ErrTaskIDConflict).Once()
	assert.NoError(t, q.EnqueueUserSync(context.Background(), caller))

	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()
	assert.Error(t, q.EnqueueUserSync(context.Background(), caller))
	client.AssertExpectations(t)
}

func TestQueue_EnqueueAttachmentArchive(t *testing.T) {
	attachments := []models.Attachment{{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}

	disabled := new(MockAsynqClient)
	require.NoError(t, tasks.NewQueue(disabled, false).EnqueueAttachmentArchive(context.Background(), caller, "p1", "e1", attachments))
	disabled.AssertNotCalled(t, "EnqueueContext", mock.Anything, mock.Anything, mock.Anything)

	client := new(MockAsynqClient)
	client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var p tasks.AttachmentArchivePayload
		if task.Type() != tasks.TypeAttachmentArchive || json.Unmarshal(task.Payload(), &p) != nil {
			return false
		}
		return p.ProjectID == "p1" && p.EmailID == "e1" && len(p.Attachments) == 1 && string(p.Attachments[0].Data) == "%PDF"
	}), mock.Anything).Return(&asynq.TaskInfo{}, nil).Once()
	require.NoError(t, tasks.NewQueue(client, true).EnqueueAttachmentArchive(context.Background(), caller, "p1", "e1", attachments))
	client.AssertExpectations(t)
}

// --- Handlers ---

func TestHandleUserSyncTask(t *testing.T) {
	suppliers := new(MockSupplierService)
	p := tasks.NewTaskProcessor(suppliers, nil, notify.NewCompositeNotifier())
	payload, _ := json.Marshal(tasks.UserSyncPayload{UserID: "u1", OrgID: "org-1", Token: "tok"})
	task := asynq.NewTask(tasks.TypeUserSync, payload)

	suppliers.On("SyncUser", mock.Anything, caller).Return(nil).Once()
	assert.NoError(t, p.HandleUserSyncTask(context.Background(), task))

	suppliers.On("SyncUser", mock.Anything, caller).Return(&backend.APIError{Status: 401, Detail: "expired"}).Once()
	err := p.HandleUserSyncTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	suppliers.On("SyncUser", mock.Anything, caller).Return(errors.New("connection reset")).Once()
	err = p.HandleUserSyncTask(context.Background(), task)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	err = p.HandleUserSyncTask(context.Background(), asynq.NewTask(tasks.TypeUserSync, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	suppliers.AssertExpectations(t)
}

func TestHandleAttachmentArchiveTask(t *testing.T) {
	archive := new(MockArchive)
	feed := notify.NewMemoryFeed(10)
	p := tasks.NewTaskProcessor(nil, archive, notify.NewCompositeNotifier(feed))

	payload, _ := json.Marshal(tasks.AttachmentArchivePayload{
		UserID: "u1", OrgID: "org-1", ProjectID: "p1", EmailID: "e1",
		Attachments: []tasks.ArchivedAttachment{
			{Filename: "drawing.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
			{Filename: "bom.xlsx", Data: []byte("PK")},
		},
	})
	archive.On("Put", mock.Anything, "archive/org-1/p1/e1/000_drawing.pdf", "application/pdf", []byte("%PDF")).Return(nil).Once()
	archive.On("Put", mock.Anything, "archive/org-1/p1/e1/001_bom.xlsx", "", []byte("PK")).Return(nil).Once()

	require.NoError(t, p.HandleAttachmentArchiveTask(context.Background(), asynq.NewTask(tasks.TypeAttachmentArchive, payload)))
	archive.AssertExpectations(t)

	notices, err := feed.Recent(context.Background(), caller.Key(), 10)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "Attachments archived", notices[0].Title)
}

func TestHandleAttachmentArchiveTask_Failures(t *testing.T) {
	payload, _ := json.Marshal(tasks.AttachmentArchivePayload{ProjectID: "p1", EmailID: "e1", Attachments: []tasks.ArchivedAttachment{{Filename: "a.pdf"}}})
	task := asynq.NewTask(tasks.TypeAttachmentArchive, payload)

	unconfigured := tasks.NewTaskProcessor(nil, nil, notify.NewCompositeNotifier())
	assert.ErrorIs(t, unconfigured.HandleAttachmentArchiveTask(context.Background(), task), asynq.SkipRetry)

	archive := new(MockArchive)
	archive.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("throttled"))
	p := tasks.NewTaskProcessor(nil, archive, notify.NewCompositeNotifier())
	err := p.HandleAttachmentArchiveTask(context.Background(), task)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	empty, _ := json.Marshal(tasks.AttachmentArchivePayload{ProjectID: "p1"})
	assert.ErrorIs(t, p.HandleAttachmentArchiveTask(context.Background(), asynq.NewTask(tasks.TypeAttachmentArchive, empty)), asynq.SkipRetry)
}
