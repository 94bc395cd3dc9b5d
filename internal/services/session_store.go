package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ISessionStore persists workspaces by caller key.
type ISessionStore interface {
	// Load returns the stored workspace, or a new one when none exists.
	Load(ctx context.Context, key string) (*Workspace, error)
	Save(ctx context.Context, key string, ws *Workspace) error
	Delete(ctx context.Context, key string) error
}

const workspaceKeyPrefix = "smartrfq_workspace:"

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore stores workspaces as JSON strings that expire after ttl
// of inactivity.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) ISessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func (s *redisSessionStore) Load(ctx context.Context, key string) (*Workspace, error) {
	data, err := s.client.Get(ctx, workspaceKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewWorkspace(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	ws := NewWorkspace()
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return ws, nil
}

func (s *redisSessionStore) Save(ctx context.Context, key string, ws *Workspace) error {
	ws.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}
	if err := s.client.Set(ctx, workspaceKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, workspaceKeyPrefix+key).Err()
}

type memorySessionStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemorySessionStore keeps workspaces in process memory. Values are stored
// encoded so callers never share state with the store.
func NewMemorySessionStore() ISessionStore {
	return &memorySessionStore{data: map[string][]byte{}}
}

func (s *memorySessionStore) Load(_ context.Context, key string) (*Workspace, error) {
	s.mu.Lock()
	data, ok := s.data[key]
	s.mu.Unlock()
	ws := NewWorkspace()
	if !ok {
		return ws, nil
	}
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return ws, nil
}

func (s *memorySessionStore) Save(_ context.Context, key string, ws *Workspace) error {
	ws.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}
	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
