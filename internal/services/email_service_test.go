package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/storage"
)

func TestEmailService_SendConversationEmail(t *testing.T) {
	client := new(MockClient)
	svc := NewEmailService(client)

	_, err := svc.SendConversationEmail(context.Background(), testCaller, "c1", models.EmailDraft{To: "a@b.c"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"subject", "content"}, verr.Fields)

	draft := models.EmailDraft{To: " a@b.c ", Subject: "Re: RFQ", Content: "Thanks"}
	client.On("SendConversationEmail", mock.Anything, testCaller.Auth(), "c1", mock.MatchedBy(func(p models.SendEmailPayload) bool {
		return p.ToEmail == "a@b.c" && p.ItemIDs != nil && p.ConversationID == nil
	})).Return(&models.SendResult{ID: "e9"}, nil).Once()

	res, err := svc.SendConversationEmail(context.Background(), testCaller, "c1", draft)
	require.NoError(t, err)
	assert.Equal(t, "e9", res.ID)
	client.AssertExpectations(t)
}

func TestEmailService_ListProjectConversationsDefaults(t *testing.T) {
	client := new(MockClient)
	svc := NewEmailService(client)
	client.On("ListProjectConversations", mock.Anything, testCaller.Auth(), "p1", 1, 10).
		Return(&models.Page[models.RfqConversation]{Items: []models.RfqConversation{{ID: "c1"}}}, nil).Once()

	page, err := svc.ListProjectConversations(context.Background(), testCaller, "p1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	client.AssertExpectations(t)
}

type stubArchive struct {
	prefix string
	files  []storage.ArchivedFile
}

func (s *stubArchive) Put(context.Context, string, string, []byte) error { return nil }

func (s *stubArchive) List(_ context.Context, prefix string) ([]storage.ArchivedFile, error) {
	s.prefix = prefix
	return s.files, nil
}

func TestAttachmentService_List(t *testing.T) {
	sessions := NewMemorySessionStore()
	_, err := NewAttachmentService(sessions, nil).List(context.Background(), testCaller, "e1")
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	archive := &stubArchive{files: []storage.ArchivedFile{{Filename: "a.pdf"}}}
	svc := NewAttachmentService(sessions, archive)
	_, err = svc.List(context.Background(), testCaller, "e1")
	assert.ErrorIs(t, err, ErrNoProjectSelected)

	ws := NewWorkspace()
	ws.Project = openProject("p1")
	require.NoError(t, sessions.Save(context.Background(), testCaller.Key(), ws))
	files, err := svc.List(context.Background(), testCaller, "e1")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "archive/org-1/p1/e1/", archive.prefix)
}
