package services

import (
	"context"
	"errors"

	"smartrfq/desk/internal/storage"
)

// ErrArchiveDisabled is returned when no archive bucket is configured.
var ErrArchiveDisabled = errors.New("attachment archive is not configured")

// IAttachmentService lists the archived attachments of sent emails.
type IAttachmentService interface {
	List(ctx context.Context, c Caller, emailID string) ([]storage.ArchivedFile, error)
}

type attachmentService struct {
	sessions ISessionStore
	archive  storage.IAttachmentArchive
}

// NewAttachmentService creates a new AttachmentService. archive may be nil.
func NewAttachmentService(sessions ISessionStore, archive storage.IAttachmentArchive) IAttachmentService {
	return &attachmentService{sessions: sessions, archive: archive}
}

// List returns the archived attachments of emailID in the active project.
func (s *attachmentService) List(ctx context.Context, c Caller, emailID string) ([]storage.ArchivedFile, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	if ws.Project == nil {
		return nil, ErrNoProjectSelected
	}
	return s.archive.List(ctx, storage.ArchivePrefix(c.OrgID, ws.ProjectID(), emailID))
}
