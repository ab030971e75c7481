package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// failedHistory is how many exhausted tasks a queue keeps for inspection.
const failedHistory = 20

// MemoryStorage implements the queue repositories in process memory.
// It is meant for tests and single-process development runs.
type MemoryStorage struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*Task
	completed map[string]int64
	failed    map[string][]Task
	now       func() time.Time
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:     make(map[uuid.UUID]*Task),
		completed: make(map[string]int64),
		failed:    make(map[string][]Task),
		now:       time.Now,
	}
}

// CreateTask implements EnqueuerRepository.
func (ms *MemoryStorage) CreateTask(_ context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy

	return nil
}

// ClaimTask returns the due pending task with the earliest run time.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, queues []string, lockDuration time.Duration) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	var best *Task
	for _, task := range ms.tasks {
		if task.Status != TaskStatusPending || !slices.Contains(queues, task.Queue) || task.RunAt.After(now) {
			continue
		}
		if best == nil || task.RunAt.Before(best.RunAt) {
			best = task
		}
	}
	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.Attempts++
	best.LockedUntil = &lockUntil

	taskCopy := *best
	return &taskCopy, nil
}

// CompleteTask implements WorkerRepository.
func (ms *MemoryStorage) CompleteTask(_ context.Context, task *Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	stored, err := ms.processing(task.ID)
	if err != nil {
		return err
	}

	delete(ms.tasks, stored.ID)
	ms.completed[stored.Queue]++

	return nil
}

// RetryTask implements WorkerRepository.
func (ms *MemoryStorage) RetryTask(_ context.Context, task *Task, runAt time.Time, errMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	stored, err := ms.processing(task.ID)
	if err != nil {
		return err
	}

	stored.Status = TaskStatusPending
	stored.RunAt = runAt
	stored.LockedUntil = nil
	stored.LastError = errMsg

	return nil
}

// FailTask implements WorkerRepository.
func (ms *MemoryStorage) FailTask(_ context.Context, task *Task, errMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	stored, err := ms.processing(task.ID)
	if err != nil {
		return err
	}

	ms.fail(stored, errMsg)
	return nil
}

// RequeueExpired implements WorkerRepository.
func (ms *MemoryStorage) RequeueExpired(_ context.Context, queues []string) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	n := 0
	for _, task := range ms.tasks {
		if task.Status != TaskStatusProcessing || !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.LockedUntil == nil || task.LockedUntil.After(now) {
			continue
		}
		n++
		if task.Exhausted() {
			ms.fail(task, "lock expired")
			continue
		}
		task.Status = TaskStatusPending
		task.LockedUntil = nil
		task.RunAt = now
	}

	return n, nil
}

// Stats implements StatsRepository.
func (ms *MemoryStorage) Stats(_ context.Context, queue string) (Stats, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var s Stats
	for _, task := range ms.tasks {
		if task.Queue != queue {
			continue
		}
		switch task.Status {
		case TaskStatusPending:
			s.Waiting++
		case TaskStatusProcessing:
			s.Active++
		}
	}
	s.Completed = ms.completed[queue]
	s.Failed = int64(len(ms.failed[queue]))

	return s, nil
}

// FailedTasks returns the most recent failed tasks of a queue, newest first.
func (ms *MemoryStorage) FailedTasks(queue string) []Task {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return slices.Clone(ms.failed[queue])
}

// Task returns a copy of a stored task.
func (ms *MemoryStorage) Task(id uuid.UUID) (Task, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

func (ms *MemoryStorage) processing(id uuid.UUID) (*Task, error) {
	task, ok := ms.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if task.Status != TaskStatusProcessing {
		return nil, fmt.Errorf("task %s is not in processing state", id)
	}
	return task, nil
}

// fail must be called with ms.mu held.
func (ms *MemoryStorage) fail(task *Task, errMsg string) {
	task.Status = TaskStatusFailed
	task.LockedUntil = nil
	task.LastError = errMsg

	history := append([]Task{*task}, ms.failed[task.Queue]...)
	if len(history) > failedHistory {
		history = history[:failedHistory]
	}
	ms.failed[task.Queue] = history
	delete(ms.tasks, task.ID)
}
