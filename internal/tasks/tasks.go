package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/services"
	"smartrfq/desk/internal/storage"
)

// TaskType defines the type of a background task.
const (
	TypeUserSync          = "user:sync"
	TypeAttachmentArchive = "attachment:archive"
)

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// NewClient creates an asynq client on the same Redis as rdb.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// IAsynqClient is the part of *asynq.Client used to enqueue tasks.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// UserSyncPayload carries the caller whose backend user record is upserted.
type UserSyncPayload struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	Token  string `json:"token"`
}

// ArchivedAttachment is one file of an attachment archive task.
type ArchivedAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// AttachmentArchivePayload carries the attachments of a sent email.
type AttachmentArchivePayload struct {
	UserID      string               `json:"user_id"`
	OrgID       string               `json:"org_id"`
	ProjectID   string               `json:"project_id"`
	EmailID     string               `json:"email_id"`
	Attachments []ArchivedAttachment `json:"attachments"`
}

// Queue enqueues background work for the services layer.
type Queue struct {
	client         IAsynqClient
	archiveEnabled bool
}

var _ services.IJobQueue = (*Queue)(nil)

// NewQueue creates a Queue. Archive tasks are only enqueued when
// archiveEnabled is set.
func NewQueue(client IAsynqClient, archiveEnabled bool) *Queue {
	return &Queue{client: client, archiveEnabled: archiveEnabled}
}

// EnqueueUserSync schedules a sync-user call. Repeated requests for the same
// caller within a minute collapse into one task.
func (q *Queue) EnqueueUserSync(ctx context.Context, c services.Caller) error {
	payload, err := json.Marshal(UserSyncPayload{UserID: c.UserID, OrgID: c.OrgID, Token: c.Token})
	if err != nil {
		return fmt.Errorf("failed to marshal user sync payload: %w", err)
	}
	task := asynq.NewTask(TypeUserSync, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.TaskID(TypeUserSync+":"+c.Key()),
		asynq.Retention(time.Minute),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue user sync: %w", err)
	}
	return nil
}

// EnqueueAttachmentArchive schedules copying the attachments of a sent email
// to the archive bucket.
func (q *Queue) EnqueueAttachmentArchive(ctx context.Context, c services.Caller, projectID, emailID string, attachments []models.Attachment) error {
	if !q.archiveEnabled || len(attachments) == 0 {
		return nil
	}
	if emailID == "" {
		emailID = uuid.NewString()
	}
	p := AttachmentArchivePayload{UserID: c.UserID, OrgID: c.OrgID, ProjectID: projectID, EmailID: emailID}
	for _, a := range attachments {
		p.Attachments = append(p.Attachments, ArchivedAttachment{Filename: a.Filename, ContentType: a.ContentType, Data: a.Data})
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal archive payload: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeAttachmentArchive, payload), asynq.Queue("low"), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue attachment archive: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
type TaskProcessor struct {
	suppliers services.ISupplierService
	archive   storage.IAttachmentArchive
	notifier  notify.Notifier
}

// NewTaskProcessor creates a TaskProcessor. archive may be nil when archiving
// is disabled.
func NewTaskProcessor(suppliers services.ISupplierService, archive storage.IAttachmentArchive, notifier notify.Notifier) *TaskProcessor {
	return &TaskProcessor{suppliers: suppliers, archive: archive, notifier: notifier}
}

// SetupServer configures an asynq server and the mux with every handler
// registered. The caller runs it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 3,
				"low":     1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeUserSync, processor.HandleUserSyncTask)
	mux.HandleFunc(TypeAttachmentArchive, processor.HandleAttachmentArchiveTask)
	return srv, mux
}

// --- Task Handlers ---

// HandleUserSyncTask upserts the caller on the backend. Rejected tokens are
// not retried.
func (p *TaskProcessor) HandleUserSyncTask(ctx context.Context, t *asynq.Task) error {
	var payload UserSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal user sync payload: %v: %w", err, asynq.SkipRetry)
	}
	c := services.Caller{UserID: payload.UserID, OrgID: payload.OrgID, Token: payload.Token}
	if err := p.suppliers.SyncUser(ctx, c); err != nil {
		if errors.Is(err, backend.ErrNoToken) || backend.IsStatus(err, http.StatusUnauthorized) || backend.IsStatus(err, http.StatusForbidden) {
			log.Printf("User sync for %s rejected: %v", payload.UserID, err)
			return fmt.Errorf("user sync rejected: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("user sync failed: %w", err)
	}
	log.Printf("User sync task processed: UserID=%s, OrgID=%s", payload.UserID, payload.OrgID)
	return nil
}

// HandleAttachmentArchiveTask uploads every attachment of the payload and
// tells the sender when all are stored.
func (p *TaskProcessor) HandleAttachmentArchiveTask(ctx context.Context, t *asynq.Task) error {
	if p.archive == nil {
		return fmt.Errorf("attachment archive is not configured: %w", asynq.SkipRetry)
	}
	var payload AttachmentArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal archive payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ProjectID == "" || len(payload.Attachments) == 0 {
		return fmt.Errorf("archive payload has no project or attachments: %w", asynq.SkipRetry)
	}

	for i, a := range payload.Attachments {
		key := storage.ArchiveKey(payload.OrgID, payload.ProjectID, payload.EmailID, i, a.Filename)
		if err := p.archive.Put(ctx, key, a.ContentType, a.Data); err != nil {
			log.Printf("Error archiving %s for project %s: %v", a.Filename, payload.ProjectID, err)
			return fmt.Errorf("failed to archive attachment: %w", err)
		}
	}

	recipient := services.Caller{UserID: payload.UserID, OrgID: payload.OrgID}.Key()
	notice := notify.Info("Attachments archived", fmt.Sprintf("%d attachment(s) of email %s were archived", len(payload.Attachments), payload.EmailID))
	if err := p.notifier.Notify(ctx, recipient, notice); err != nil {
		log.Printf("Failed to notify %s about archived attachments: %v", recipient, err)
	}
	log.Printf("Archive task processed: ProjectID=%s, EmailID=%s, Files=%d", payload.ProjectID, payload.EmailID, len(payload.Attachments))
	return nil
}
