package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cernol/formintake/pkg/queue"
)

func newTask(queueName string, runAt time.Time, maxAttempts int) *queue.Task {
	return &queue.Task{
		ID:          uuid.New(),
		Queue:       queueName,
		Name:        "test",
		Payload:     []byte(`{}`),
		Status:      queue.TaskStatusPending,
		MaxAttempts: maxAttempts,
		RunAt:       runAt,
		CreatedAt:   time.Now(),
	}
}

func TestMemoryStorage_ClaimTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queues := []string{"default"}

	t.Run("claims earliest due task", func(t *testing.T) {
		t.Parallel()

		s := queue.NewMemoryStorage()
		later := newTask("default", time.Now().Add(-time.Second), 3)
		earlier := newTask("default", time.Now().Add(-time.Minute), 3)
		require.NoError(t, s.CreateTask(ctx, later))
		require.NoError(t, s.CreateTask(ctx, earlier))

		task, err := s.ClaimTask(ctx, queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, earlier.ID, task.ID)
		assert.Equal(t, queue.TaskStatusProcessing, task.Status)
		assert.Equal(t, 1, task.Attempts)
		require.NotNil(t, task.LockedUntil)
	})

	t.Run("skips future and foreign tasks", func(t *testing.T) {
		t.Parallel()

		s := queue.NewMemoryStorage()
		require.NoError(t, s.CreateTask(ctx, newTask("default", time.Now().Add(time.Hour), 3)))
		require.NoError(t, s.CreateTask(ctx, newTask("other", time.Now(), 3)))

		_, err := s.ClaimTask(ctx, queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)
	})

	t.Run("duplicate id", func(t *testing.T) {
		t.Parallel()

		s := queue.NewMemoryStorage()
		task := newTask("default", time.Now(), 3)
		require.NoError(t, s.CreateTask(ctx, task))
		assert.Error(t, s.CreateTask(ctx, task))
	})
}

func TestMemoryStorage_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queues := []string{"default"}

	s := queue.NewMemoryStorage()
	require.NoError(t, s.CreateTask(ctx, newTask("default", time.Now(), 2)))
	require.NoError(t, s.CreateTask(ctx, newTask("default", time.Now(), 2)))

	stats, err := s.Stats(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, queue.Stats{Waiting: 2}, stats)

	first, err := s.ClaimTask(ctx, queues, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.CompleteTask(ctx, first))

	second, err := s.ClaimTask(ctx, queues, time.Minute)
	require.NoError(t, err)

	stats, err = s.Stats(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, queue.Stats{Active: 1, Completed: 1}, stats)

	require.NoError(t, s.RetryTask(ctx, second, time.Now().Add(-time.Millisecond), "boom"))
	stored, ok := s.Task(second.ID)
	require.True(t, ok)
	assert.Equal(t, queue.TaskStatusPending, stored.Status)
	assert.Equal(t, "boom", stored.LastError)

	second, err = s.ClaimTask(ctx, queues, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Attempts)
	require.NoError(t, s.FailTask(ctx, second, "boom again"))

	stats, err = s.Stats(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, queue.Stats{Completed: 1, Failed: 1}, stats)

	failed := s.FailedTasks("default")
	require.Len(t, failed, 1)
	assert.Equal(t, "boom again", failed[0].LastError)
	assert.Equal(t, queue.TaskStatusFailed, failed[0].Status)

	assert.ErrorIs(t, s.CompleteTask(ctx, second), queue.ErrTaskNotFound)
}

func TestMemoryStorage_FailedHistoryIsCapped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := queue.NewMemoryStorage()

	for range 25 {
		require.NoError(t, s.CreateTask(ctx, newTask("default", time.Now(), 1)))
		task, err := s.ClaimTask(ctx, []string{"default"}, time.Minute)
		require.NoError(t, err)
		require.NoError(t, s.FailTask(ctx, task, "nope"))
	}

	stats, err := s.Stats(ctx, "default")
	require.NoError(t, err)
	assert.EqualValues(t, 20, stats.Failed)
}

func TestMemoryStorage_RequeueExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queues := []string{"default"}
	s := queue.NewMemoryStorage()

	retryable := newTask("default", time.Now(), 3)
	require.NoError(t, s.CreateTask(ctx, retryable))
	_, err := s.ClaimTask(ctx, queues, -time.Second)
	require.NoError(t, err)

	exhausted := newTask("default", time.Now().Add(time.Millisecond), 1)
	require.NoError(t, s.CreateTask(ctx, exhausted))
	time.Sleep(5 * time.Millisecond)
	_, err = s.ClaimTask(ctx, queues, -time.Second)
	require.NoError(t, err)

	n, err := s.RequeueExpired(ctx, queues)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, ok := s.Task(retryable.ID)
	require.True(t, ok)
	assert.Equal(t, queue.TaskStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)

	_, ok = s.Task(exhausted.ID)
	assert.False(t, ok)
	assert.Len(t, s.FailedTasks("default"), 1)
}
