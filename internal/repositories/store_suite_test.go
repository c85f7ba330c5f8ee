package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"task-signup/backend/internal/models"
	"task-signup/backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite checks the behaviour every backend must share. newStore
// returns an empty store that the suite closes itself.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) repositories.Store) {
	t.Run("create task assigns id and keeps status", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		task := &models.Task{Name: "buy milk", Status: models.DefaultTaskStatus}
		require.NoError(t, store.Tasks().CreateTask(ctx, task))

		assert.NotEmpty(t, task.ID)
		assert.False(t, task.CreatedAt.IsZero())

		found, err := store.Tasks().FindTaskByName(ctx, "buy milk")
		require.NoError(t, err)
		assert.Equal(t, task.ID, found.ID)
		assert.Equal(t, "pending", found.Status)
	})

	t.Run("find missing task", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Tasks().FindTaskByName(context.Background(), "nothing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("duplicate task name is rejected by the store", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Tasks().CreateTask(ctx, &models.Task{Name: "walk dog", Status: "pending"}))
		err := store.Tasks().CreateTask(ctx, &models.Task{Name: "walk dog", Status: "done"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)

		tasks, err := store.Tasks().ListTasks(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("list tasks returns every task", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		tasks, err := store.Tasks().ListTasks(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)

		for i := 0; i < 3; i++ {
			require.NoError(t, store.Tasks().CreateTask(ctx, &models.Task{Name: fmt.Sprintf("task %d", i), Status: "pending"}))
			time.Sleep(2 * time.Millisecond)
		}

		tasks, err = store.Tasks().ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "task 0", tasks[0].Name)
		assert.Equal(t, "task 2", tasks[2].Name)
	})

	t.Run("concurrent creates of one name store a single task", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			created    int
			duplicates int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Tasks().CreateTask(ctx, &models.Task{Name: "race", Status: "pending"})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, repositories.ErrDuplicate):
					duplicates++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, 7, duplicates)
	})

	t.Run("user lifecycle", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		users := store.Users()

		user := &models.User{Username: "alice", Password: "p@ss word"}
		require.NoError(t, users.CreateUser(ctx, user))
		assert.NotEmpty(t, user.ID)

		err := users.CreateUser(ctx, &models.User{Username: "alice", Password: "other"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)

		require.NoError(t, users.CreateUser(ctx, &models.User{Username: "bob", Password: "x"}))

		found, err := users.FindUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "p@ss word", found.Password)

		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		require.NoError(t, users.DeleteUserByUsername(ctx, "alice"))

		_, err = users.FindUserByUsername(ctx, "alice")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		list, err = users.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "bob", list[0].Username)
	})

	t.Run("delete missing user", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Users().CreateUser(ctx, &models.User{Username: "carol", Password: "x"}))

		err := store.Users().DeleteUserByUsername(ctx, "dave")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		list, err := store.Users().ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("health", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Health(context.Background()))
		assert.NotEmpty(t, store.Name())
	})
}
