// Package selection holds the "currently selected project" of each user and
// organization, persisted through a pluggable adapter.
package selection

import (
	"context"
	"log"
	"sync"

	"smartrfq/desk/internal/models"
)

// Scope identifies whose selection is addressed.
type Scope struct {
	UserID string
	OrgID  string
}

// Key is the flat identifier of the scope.
func (s Scope) Key() string {
	return s.UserID + ":" + s.OrgID
}

// Change is delivered to subscribers whenever the selection of a scope changes.
// ProjectID is empty when the selection was cleared.
type Change struct {
	Scope     Scope
	ProjectID string
}

// Store is the selected-project context shared by every screen service.
type Store struct {
	persister Persister

	mu     sync.Mutex
	subs   map[string]map[int]chan Change
	nextID int
}

// NewStore creates a store over persister.
func NewStore(persister Persister) *Store {
	return &Store{
		persister: persister,
		subs:      make(map[string]map[int]chan Change),
	}
}

// Get returns the selected project id of scope, or "" when none.
func (s *Store) Get(ctx context.Context, scope Scope) (string, error) {
	return s.persister.Load(ctx, scope)
}

// Set selects projectID for scope and notifies subscribers when it changed.
func (s *Store) Set(ctx context.Context, scope Scope, projectID string) error {
	if projectID == "" {
		return s.Clear(ctx, scope)
	}
	prev, err := s.persister.Load(ctx, scope)
	if err != nil {
		log.Printf("Selection: failed to read previous value for %s: %v", scope.Key(), err)
	}
	if err := s.persister.Save(ctx, scope, projectID); err != nil {
		return err
	}
	if prev != projectID {
		s.publish(Change{Scope: scope, ProjectID: projectID})
	}
	return nil
}

// Clear removes the selection of scope.
func (s *Store) Clear(ctx context.Context, scope Scope) error {
	prev, _ := s.persister.Load(ctx, scope)
	if err := s.persister.Clear(ctx, scope); err != nil {
		return err
	}
	if prev != "" {
		s.publish(Change{Scope: scope})
	}
	return nil
}

// Reconcile aligns the stored selection with a freshly fetched project list.
// A stored id missing from projects is replaced by the first selectable
// project, or cleared when there is none. An empty selection picks the first
// selectable project. The resulting id is returned.
func (s *Store) Reconcile(ctx context.Context, scope Scope, projects []models.Project) (string, error) {
	current, err := s.persister.Load(ctx, scope)
	if err != nil {
		return "", err
	}
	for i := range projects {
		if projects[i].ID == current {
			return current, nil
		}
	}
	for i := range projects {
		if projects[i].AllowsSelection() {
			id := projects[i].ID
			if err := s.Set(ctx, scope, id); err != nil {
				return "", err
			}
			return id, nil
		}
	}
	if current != "" {
		if err := s.Clear(ctx, scope); err != nil {
			return "", err
		}
	}
	return "", nil
}

// Subscribe returns a channel receiving the changes of scope and a function
// that stops the subscription. Slow subscribers miss intermediate changes
// rather than block writers.
func (s *Store) Subscribe(scope Scope) (<-chan Change, func()) {
	ch := make(chan Change, 8)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	key := scope.Key()
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]chan Change)
	}
	s.subs[key][id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[change.Scope.Key()] {
		select {
		case ch <- change:
		default:
			log.Printf("Selection: subscriber for %s is full, dropping change", change.Scope.Key())
		}
	}
}
