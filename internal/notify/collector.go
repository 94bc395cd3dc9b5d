package notify

import (
	"context"
	"sync"

	"smartrfq/desk/internal/models"
)

type collectorKey struct{}

// Collector gathers the notices produced while serving one request so they can
// be returned in the response.
type Collector struct {
	mu      sync.Mutex
	notices []models.Notice
}

// Collect returns a context carrying a new collector.
func Collect(ctx context.Context) (context.Context, *Collector) {
	col := &Collector{}
	return context.WithValue(ctx, collectorKey{}, col), col
}

// CollectorFrom returns the collector carried by ctx, or nil.
func CollectorFrom(ctx context.Context) *Collector {
	col, _ := ctx.Value(collectorKey{}).(*Collector)
	return col
}

func (c *Collector) add(n models.Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
}

// Notices returns the collected notices in emission order. Never nil.
func (c *Collector) Notices() []models.Notice {
	if c == nil {
		return []models.Notice{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notice, len(c.notices))
	copy(out, c.notices)
	return out
}
