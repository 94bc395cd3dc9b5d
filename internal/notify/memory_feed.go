package notify

import (
	"context"
	"sync"

	"smartrfq/desk/internal/models"
)

// MemoryFeed is an in-process Feed used by the console and tests.
type MemoryFeed struct {
	mu    sync.Mutex
	size  int
	items map[string][]models.Notice
}

func NewMemoryFeed(size int) *MemoryFeed {
	if size <= 0 {
		size = 50
	}
	return &MemoryFeed{size: size, items: map[string][]models.Notice{}}
}

func (f *MemoryFeed) Notify(_ context.Context, recipient string, notice models.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := append([]models.Notice{notice}, f.items[recipient]...)
	if len(list) > f.size {
		list = list[:f.size]
	}
	f.items[recipient] = list
	return nil
}

func (f *MemoryFeed) Recent(_ context.Context, recipient string, limit int) ([]models.Notice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.items[recipient]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]models.Notice, limit)
	copy(out, list[:limit])
	return out, nil
}

func (f *MemoryFeed) Clear(_ context.Context, recipient string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, recipient)
	return nil
}
