package services

import (
	"context"

	"smartrfq/desk/internal/models"
)

// IJobQueue hands work to the background worker.
type IJobQueue interface {
	EnqueueUserSync(ctx context.Context, c Caller) error
	EnqueueAttachmentArchive(ctx context.Context, c Caller, projectID, emailID string, attachments []models.Attachment) error
}
