package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Persister stores the selected project id of a scope.
type Persister interface {
	// Load returns the stored project id, or "" when nothing is stored.
	Load(ctx context.Context, scope Scope) (string, error)
	Save(ctx context.Context, scope Scope, projectID string) error
	Clear(ctx context.Context, scope Scope) error
}

const redisKeyPrefix = "smartrfq_selected_project"

// RedisPersister keeps selections in Redis so every browser tab and API
// replica of the same user sees the same value. Last write wins.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister creates a Redis-backed persister. A zero ttl keeps keys
// forever.
func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

func (p *RedisPersister) key(scope Scope) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, scope.UserID, scope.OrgID)
}

func (p *RedisPersister) Load(ctx context.Context, scope Scope) (string, error) {
	id, err := p.client.Get(ctx, p.key(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load selected project: %w", err)
	}
	return id, nil
}

func (p *RedisPersister) Save(ctx context.Context, scope Scope, projectID string) error {
	if err := p.client.Set(ctx, p.key(scope), projectID, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save selected project: %w", err)
	}
	return nil
}

func (p *RedisPersister) Clear(ctx context.Context, scope Scope) error {
	if err := p.client.Del(ctx, p.key(scope)).Err(); err != nil {
		return fmt.Errorf("failed to clear selected project: %w", err)
	}
	return nil
}

// FilePersister keeps selections in a JSON file. Used by the console.
type FilePersister struct {
	mu   sync.Mutex
	path string
}

// NewFilePersister creates a persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) read() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection file: %w", err)
	}
	state := map[string]string{}
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode selection file: %w", err)
	}
	return state, nil
}

func (p *FilePersister) write(state map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create selection directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write selection file: %w", err)
	}
	return os.Rename(tmp, p.path)
}

func (p *FilePersister) Load(_ context.Context, scope Scope) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, err := p.read()
	if err != nil {
		return "", err
	}
	return state[scope.Key()], nil
}

func (p *FilePersister) Save(_ context.Context, scope Scope, projectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, err := p.read()
	if err != nil {
		return err
	}
	state[scope.Key()] = projectID
	return p.write(state)
}

func (p *FilePersister) Clear(_ context.Context, scope Scope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, err := p.read()
	if err != nil {
		return err
	}
	delete(state, scope.Key())
	return p.write(state)
}

// MemoryPersister keeps selections in process memory.
type MemoryPersister struct {
	mu    sync.Mutex
	state map[string]string
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{state: map[string]string{}}
}

func (p *MemoryPersister) Load(_ context.Context, scope Scope) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state[scope.Key()], nil
}

func (p *MemoryPersister) Save(_ context.Context, scope Scope, projectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state[scope.Key()] = projectID
	return nil
}

func (p *MemoryPersister) Clear(_ context.Context, scope Scope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.state, scope.Key())
	return nil
}
