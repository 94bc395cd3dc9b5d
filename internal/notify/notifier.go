// Package notify delivers user-facing notices (toasts) produced by dashboard
// actions.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"smartrfq/desk/internal/models"
)

// Notifier delivers a notice to a recipient (a user scope key).
type Notifier interface {
	Notify(ctx context.Context, recipient string, notice models.Notice) error
}

// New builds a notice with a fresh id and timestamp.
func New(level models.NoticeLevel, title, description string) models.Notice {
	return models.Notice{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

func Success(title, description string) models.Notice {
	return New(models.NoticeSuccess, title, description)
}

func Info(title, description string) models.Notice {
	return New(models.NoticeInfo, title, description)
}

func Error(title, description string) models.Notice {
	return New(models.NoticeError, title, description)
}

// LoggingNotifier writes notices to the standard logger.
type LoggingNotifier struct{}

func NewLoggingNotifier() Notifier {
	return &LoggingNotifier{}
}

func (n *LoggingNotifier) Notify(_ context.Context, recipient string, notice models.Notice) error {
	if notice.Description != "" {
		log.Printf("Notice [%s] for %s: %s - %s", notice.Level, recipient, notice.Title, notice.Description)
	} else {
		log.Printf("Notice [%s] for %s: %s", notice.Level, recipient, notice.Title)
	}
	return nil
}
