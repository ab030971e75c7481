package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository stores new tasks.
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer handles task enqueueing.
type Enqueuer struct {
	repo               EnqueuerRepository
	defaultQueue       string
	defaultMaxAttempts int
	now                func() time.Time
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &enqueuerOptions{
		defaultQueue:       DefaultQueueName,
		defaultMaxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Enqueuer{
		repo:               repo,
		defaultQueue:       options.defaultQueue,
		defaultMaxAttempts: options.defaultMaxAttempts,
		now:                time.Now,
	}, nil
}

// Enqueue stores payload as a new pending task and returns it.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) (*Task, error) {
	if payload == nil {
		return nil, ErrPayloadNil
	}

	options := &enqueueOptions{
		queue:       e.defaultQueue,
		maxAttempts: e.defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}

	task, err := e.buildTask(payload, options)
	if err != nil {
		return nil, err
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return nil, errors.Join(ErrTaskCreate, fmt.Errorf("task %q in queue %q: %w", task.Name, task.Queue, err))
	}

	return task, nil
}

func (e *Enqueuer) buildTask(payload any, options *enqueueOptions) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrPayloadMarshal, fmt.Errorf("payload of type %T: %w", payload, err))
	}

	name := options.taskName
	if name == "" {
		name = qualifiedStructName(payload)
	}

	now := e.now().UTC()
	return &Task{
		ID:          uuid.New(),
		Queue:       options.queue,
		Name:        name,
		Payload:     data,
		Status:      TaskStatusPending,
		MaxAttempts: options.maxAttempts,
		RunAt:       now.Add(options.delay),
		CreatedAt:   now,
	}, nil
}
