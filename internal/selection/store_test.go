package selection

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrfq/desk/internal/cache"
	"smartrfq/desk/internal/models"
)

var scope = Scope{UserID: "u1", OrgID: "org-1"}

func projects(list ...models.Project) []models.Project { return list }

func TestStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryPersister())

	id, err := s.Get(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.Set(ctx, scope, "p1"))
	id, _ = s.Get(ctx, scope)
	assert.Equal(t, "p1", id)

	other, _ := s.Get(ctx, Scope{UserID: "u1", OrgID: "org-2"})
	assert.Empty(t, other)

	require.NoError(t, s.Clear(ctx, scope))
	id, _ = s.Get(ctx, scope)
	assert.Empty(t, id)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryPersister())
	ch, stop := s.Subscribe(scope)
	defer stop()

	require.NoError(t, s.Set(ctx, scope, "p1"))
	require.NoError(t, s.Set(ctx, scope, "p1"))
	require.NoError(t, s.Set(ctx, scope, "p2"))
	require.NoError(t, s.Clear(ctx, scope))

	var got []string
	for i := 0; i < 3; i++ {
		select {
		case c := <-ch:
			got = append(got, c.ProjectID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for change")
		}
	}
	assert.Equal(t, []string{"p1", "p2", ""}, got)

	stop()
	stop()
	_, open := <-ch
	assert.False(t, open)
}

func TestStore_Reconcile(t *testing.T) {
	ctx := context.Background()
	open1 := models.Project{ID: "p1", Status: models.ProjectOpen}
	open2 := models.Project{ID: "p2", Status: models.ProjectOpen}
	archived := models.Project{ID: "p0", Status: models.ProjectArchived}

	t.Run("keeps existing selection", func(t *testing.T) {
		s := NewStore(NewMemoryPersister())
		require.NoError(t, s.Set(ctx, scope, "p2"))
		id, err := s.Reconcile(ctx, scope, projects(open1, open2))
		require.NoError(t, err)
		assert.Equal(t, "p2", id)
	})

	t.Run("stale id resets to first project", func(t *testing.T) {
		s := NewStore(NewMemoryPersister())
		require.NoError(t, s.Set(ctx, scope, "gone"))
		id, err := s.Reconcile(ctx, scope, projects(archived, open1, open2))
		require.NoError(t, err)
		assert.Equal(t, "p1", id)
		stored, _ := s.Get(ctx, scope)
		assert.Equal(t, "p1", stored)
	})

	t.Run("empty list clears", func(t *testing.T) {
		s := NewStore(NewMemoryPersister())
		require.NoError(t, s.Set(ctx, scope, "gone"))
		id, err := s.Reconcile(ctx, scope, nil)
		require.NoError(t, err)
		assert.Empty(t, id)
		stored, _ := s.Get(ctx, scope)
		assert.Empty(t, stored)
	})

	t.Run("nothing selected picks first", func(t *testing.T) {
		s := NewStore(NewMemoryPersister())
		id, err := s.Reconcile(ctx, scope, projects(open2, open1))
		require.NoError(t, err)
		assert.Equal(t, "p2", id)
	})
}

func TestFilePersister(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "console.json")
	p := NewFilePersister(path)

	id, err := p.Load(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, p.Save(ctx, scope, "p9"))
	reopened := NewFilePersister(path)
	id, err = reopened.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "p9", id)

	require.NoError(t, reopened.Clear(ctx, scope))
	id, _ = p.Load(ctx, scope)
	assert.Empty(t, id)
}

func TestRedisPersister(t *testing.T) {
	client, err := cache.ConnectRedis("localhost:6379", "", 15)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer cache.DisconnectRedis(client)

	ctx := context.Background()
	p := NewRedisPersister(client, time.Minute)
	s := Scope{UserID: "test-user", OrgID: "test-org"}
	defer p.Clear(ctx, s)

	require.NoError(t, p.Save(ctx, s, "p1"))
	val, err := client.Get(ctx, "smartrfq_selected_project:test-user:test-org").Result()
	require.NoError(t, err)
	assert.Equal(t, "p1", val)

	id, err := p.Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	require.NoError(t, p.Clear(ctx, s))
	id, err = p.Load(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, id)
}
