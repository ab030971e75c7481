package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cernol/formintake/pkg/queue"
)

type MockEnqueuerRepository struct {
	mock.Mock
}

func (m *MockEnqueuerRepository) CreateTask(ctx context.Context, task *queue.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func TestNewEnqueuer(t *testing.T) {
	t.Parallel()

	_, err := queue.NewEnqueuer(nil)
	assert.ErrorIs(t, err, queue.ErrRepositoryNil)
}

func TestEnqueuer_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		repo := new(MockEnqueuerRepository)
		defer repo.AssertExpectations(t)

		var stored *queue.Task
		repo.On("CreateTask", mock.Anything, mock.AnythingOfType("*queue.Task")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*queue.Task) }).
			Return(nil)

		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		task, err := enq.Enqueue(context.Background(), testPayload{Message: "hello", Value: 1})
		require.NoError(t, err)
		require.Same(t, stored, task)

		assert.Equal(t, queue.DefaultQueueName, task.Queue)
		assert.Equal(t, "queue_test.testPayload", task.Name)
		assert.Equal(t, queue.TaskStatusPending, task.Status)
		assert.Equal(t, queue.DefaultMaxAttempts, task.MaxAttempts)
		assert.Zero(t, task.Attempts)
		assert.WithinDuration(t, time.Now(), task.RunAt, time.Second)

		var decoded testPayload
		require.NoError(t, json.Unmarshal(task.Payload, &decoded))
		assert.Equal(t, "hello", decoded.Message)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		repo := new(MockEnqueuerRepository)
		repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil)

		enq, err := queue.NewEnqueuer(repo, queue.WithDefaultQueue("mail"), queue.WithDefaultMaxAttempts(5))
		require.NoError(t, err)

		task, err := enq.Enqueue(context.Background(), testPayload{},
			queue.WithTaskName("send"),
			queue.WithDelay(time.Hour),
		)
		require.NoError(t, err)
		assert.Equal(t, "mail", task.Queue)
		assert.Equal(t, "send", task.Name)
		assert.Equal(t, 5, task.MaxAttempts)
		assert.True(t, task.RunAt.After(time.Now().Add(59*time.Minute)))

		task, err = enq.Enqueue(context.Background(), testPayload{},
			queue.WithQueue("other"),
			queue.WithMaxAttempts(1),
			queue.WithMaxAttempts(50),
		)
		require.NoError(t, err)
		assert.Equal(t, "other", task.Queue)
		assert.Equal(t, 1, task.MaxAttempts)
	})

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()

		enq, err := queue.NewEnqueuer(new(MockEnqueuerRepository))
		require.NoError(t, err)

		_, err = enq.Enqueue(context.Background(), nil)
		assert.ErrorIs(t, err, queue.ErrPayloadNil)
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()

		enq, err := queue.NewEnqueuer(new(MockEnqueuerRepository))
		require.NoError(t, err)

		_, err = enq.Enqueue(context.Background(), make(chan int))
		assert.ErrorIs(t, err, queue.ErrPayloadMarshal)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		repo := new(MockEnqueuerRepository)
		repo.On("CreateTask", mock.Anything, mock.Anything).Return(errors.New("down"))

		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		_, err = enq.Enqueue(context.Background(), testPayload{})
		assert.ErrorIs(t, err, queue.ErrTaskCreate)
		assert.ErrorContains(t, err, "down")
	})
}
