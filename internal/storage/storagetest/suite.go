// Package storagetest holds behaviour checks shared by every TaskStore
// implementation.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskscore/internal/models"
	"taskscore/internal/storage"
)

// Factory returns a fresh, empty store for a single subtest.
type Factory func(t *testing.T) storage.TaskStore

// Run exercises the TaskStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyList", func(t *testing.T) {
		s := newStore(t)
		tasks, err := s.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("CreateThenGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		withDesc := sample("Write report")
		withDesc.Description = models.StringPtr("quarterly numbers")
		withDesc.ID = 999
		require.NoError(t, s.Create(ctx, &withDesc))
		assert.NotEqual(t, int64(999), withDesc.ID)

		noDesc := sample("Call plumber")
		require.NoError(t, s.Create(ctx, &noDesc))

		got, ok, err := s.Get(ctx, withDesc.ID)
		require.NoError(t, err)
		require.True(t, ok)
		AssertTaskEqual(t, withDesc, got)

		got, ok, err = s.Get(ctx, noDesc.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Nil(t, got.Description)
		AssertTaskEqual(t, noDesc, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.Get(context.Background(), 12345)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("IdsIncreaseWithoutReuse", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, b := sample("A"), sample("B")
		require.NoError(t, s.Create(ctx, &a))
		require.NoError(t, s.Create(ctx, &b))
		assert.Equal(t, a.ID+1, b.ID)

		deleted, err := s.Delete(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		c := sample("C")
		require.NoError(t, s.Create(ctx, &c))
		assert.Greater(t, c.ID, b.ID)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		orig := sample("Original")
		orig.Description = models.StringPtr("Original Description")
		orig.Priority = 2
		require.NoError(t, s.Create(ctx, &orig))

		repl := sample("Updated")
		repl.ID = orig.ID + 100
		repl.Description = models.StringPtr("Updated Description")
		repl.Status = models.StatusInProgress
		repl.Priority = 1
		repl.IsCompleted = true

		ok, err := s.Update(ctx, orig.ID, &repl)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, orig.ID, repl.ID)

		got, found, err := s.Get(ctx, orig.ID)
		require.NoError(t, err)
		require.True(t, found)
		AssertTaskEqual(t, repl, got)

		_, found, err = s.Get(ctx, orig.ID+100)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("UpdateMissingLeavesStoreUnchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		existing := sample("Keep me")
		require.NoError(t, s.Create(ctx, &existing))

		repl := sample("Nope")
		ok, err := s.Update(ctx, existing.ID+999, &repl)
		require.NoError(t, err)
		assert.False(t, ok)

		tasks, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		AssertTaskEqual(t, existing, tasks[0])
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := sample("ToDelete")
		require.NoError(t, s.Create(ctx, &task))

		ok, err := s.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, found, err := s.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ListReturnsAll", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, title := range []string{"one", "two", "three"} {
			task := sample(title)
			require.NoError(t, s.Create(ctx, &task))
		}

		first, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, first, 3)

		second, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(second))
	})

	t.Run("ConcurrentCreatesGetDistinctIds", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const workers = 20
		created := make([]int64, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				task := sample("concurrent")
				assert.NoError(t, s.Create(ctx, &task))
				created[i] = task.ID
			}(i)
		}
		wg.Wait()

		seen := make(map[int64]struct{}, workers)
		for _, id := range created {
			seen[id] = struct{}{}
		}
		assert.Len(t, seen, workers)

		tasks, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, workers)
	})
}

// AssertTaskEqual compares two tasks field by field, using time equality for
// CreatedAt so stores that change location or drop monotonic readings pass.
func AssertTaskEqual(t *testing.T, want, got models.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID, "id")
	assert.Equal(t, want.Title, got.Title, "title")
	assert.Equal(t, want.Description, got.Description, "description")
	assert.Equal(t, want.IsCompleted, got.IsCompleted, "isCompleted")
	assert.Equal(t, want.Priority, got.Priority, "priority")
	assert.Equal(t, want.Status, got.Status, "status")
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt: want %s, got %s", want.CreatedAt, got.CreatedAt)
}

func sample(title string) models.Task {
	task := models.NewTask(title)
	// Microsecond precision survives every backend, including postgres.
	task.CreatedAt = time.Date(2024, 3, 14, 9, 26, 53, 589793000, time.UTC)
	return task
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
