package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"smartrfq/desk/internal/models"
)

// Feed is the per-user list of recent notices shown in the header dropdown.
type Feed interface {
	Recent(ctx context.Context, recipient string, limit int) ([]models.Notice, error)
	Clear(ctx context.Context, recipient string) error
}

// RedisNotifier keeps a capped list of the latest notices per recipient.
type RedisNotifier struct {
	client *redis.Client
	size   int
	ttl    time.Duration
}

// NewRedisNotifier creates a feed keeping at most size notices per recipient.
func NewRedisNotifier(client *redis.Client, size int, ttl time.Duration) *RedisNotifier {
	if size <= 0 {
		size = 50
	}
	return &RedisNotifier{client: client, size: size, ttl: ttl}
}

func feedKey(recipient string) string {
	return "smartrfq_notices:" + recipient
}

func (n *RedisNotifier) Notify(ctx context.Context, recipient string, notice models.Notice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}
	key := feedKey(recipient)
	pipe := n.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(n.size-1))
	if n.ttl > 0 {
		pipe.Expire(ctx, key, n.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notice in Redis key '%s': %w", key, err)
	}
	return nil
}

// Recent returns the newest notices first.
func (n *RedisNotifier) Recent(ctx context.Context, recipient string, limit int) ([]models.Notice, error) {
	if limit <= 0 || limit > n.size {
		limit = n.size
	}
	raw, err := n.client.LRange(ctx, feedKey(recipient), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read notices: %w", err)
	}
	notices := make([]models.Notice, 0, len(raw))
	for _, item := range raw {
		var notice models.Notice
		if err := json.Unmarshal([]byte(item), &notice); err != nil {
			log.Printf("RedisNotifier: skipping malformed notice for %s: %v", recipient, err)
			continue
		}
		notices = append(notices, notice)
	}
	return notices, nil
}

func (n *RedisNotifier) Clear(ctx context.Context, recipient string) error {
	if err := n.client.Del(ctx, feedKey(recipient)).Err(); err != nil {
		return fmt.Errorf("failed to clear notices: %w", err)
	}
	return nil
}
