package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"smartrfq/desk/internal/models"
)

// FileNotifier appends notices as JSON lines to a file.
type FileNotifier struct {
	mu       sync.Mutex
	filePath string
}

// NewFileNotifier creates a FileNotifier, creating the parent directory.
func NewFileNotifier(filePath string) (Notifier, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("notice log file path cannot be empty")
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for notice log file '%s': %w", dir, err)
	}
	return &FileNotifier{filePath: filePath}, nil
}

type fileEntry struct {
	Recipient string `json:"recipient"`
	models.Notice
}

func (n *FileNotifier) Notify(_ context.Context, recipient string, notice models.Notice) error {
	line, err := json.Marshal(fileEntry{Recipient: recipient, Notice: notice})
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	file, err := os.OpenFile(n.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("FileNotifier: Failed to open log file '%s': %v", n.filePath, err)
		return fmt.Errorf("failed to open notice log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write notice to log file: %w", err)
	}
	return nil
}
