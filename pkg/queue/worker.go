package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cernol/formintake/pkg/logger"
)

// WorkerRepository defines the storage operations a worker needs.
type WorkerRepository interface {
	// ClaimTask atomically claims the next due task, increments its attempt
	// counter and locks it for lockDuration.
	ClaimTask(ctx context.Context, queues []string, lockDuration time.Duration) (*Task, error)

	// CompleteTask records a successful run.
	CompleteTask(ctx context.Context, task *Task) error

	// RetryTask releases the lock and makes the task due again at runAt.
	RetryTask(ctx context.Context, task *Task, runAt time.Time, errMsg string) error

	// FailTask records a task that will not be retried.
	FailTask(ctx context.Context, task *Task, errMsg string) error

	// RequeueExpired releases tasks whose lock deadline passed, which happens
	// when a worker dies mid-run. Tasks without attempts left are failed instead.
	RequeueExpired(ctx context.Context, queues []string) (int, error)
}

// Worker processes tasks from the queue.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	queues   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pullInterval time.Duration
	lockTimeout  time.Duration
	backoffBase  time.Duration
	logger       *slog.Logger
	now          func() time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a new task worker.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		queues:             []string{DefaultQueueName},
		pullInterval:       time.Second,
		lockTimeout:        2 * time.Minute,
		backoffBase:        2 * time.Second,
		maxConcurrentTasks: 1,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		queues:       options.queues,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrentTasks),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		backoffBase:  options.backoffBase,
		logger:       options.logger.With(logger.Component("queue.worker")),
		now:          time.Now,
	}, nil
}

// RegisterHandlers registers task handlers by name. Nil handlers are ignored.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Start begins processing tasks in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)))

	return nil
}

// Stop cancels polling and waits for running tasks to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	w.logger.Info("worker stopping, waiting for active tasks", slog.String("worker_id", w.workerID.String()))
	w.wg.Wait()
	w.logger.Info("worker stopped", slog.String("worker_id", w.workerID.String()))

	return nil
}

// Run starts the worker and returns a function suitable for errgroup.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

// tick recovers stale locks, then claims tasks until either the queue is
// drained or every slot is busy.
func (w *Worker) tick() {
	if n, err := w.repo.RequeueExpired(w.ctx, w.queues); err != nil {
		w.logger.Error("failed to requeue expired tasks", logger.Error(err))
	} else if n > 0 {
		w.logger.Warn("requeued tasks with expired locks", slog.Int("count", n))
	}

	for {
		select {
		case w.sem <- struct{}{}:
		default:
			w.logger.Debug("all worker slots busy, skipping tick")
			return
		}

		w.stopMu.Lock()
		if w.stopping.Load() {
			w.stopMu.Unlock()
			<-w.sem
			return
		}

		task, err := w.repo.ClaimTask(w.ctx, w.queues, w.lockTimeout)
		if err != nil || task == nil {
			w.stopMu.Unlock()
			<-w.sem
			if err != nil && !errors.Is(err, ErrNoTaskToClaim) && !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to claim task", logger.Error(err))
			}
			return
		}

		w.wg.Add(1)
		w.stopMu.Unlock()

		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()

			if err := w.processTask(task); err != nil && !errors.Is(err, ErrHandlerNotFound) {
				w.logger.Error("failed to process task", logger.TaskID(task.ID.String()), logger.Error(err))
			}
		}()
	}
}

// processTask executes a claimed task. Storage bookkeeping outlives worker
// cancellation so a task finishing during shutdown is still recorded.
func (w *Worker) processTask(task *Task) (retErr error) {
	start := w.now()
	bookkeeping := context.WithoutCancel(w.ctx)

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked",
				logger.TaskID(task.ID.String()),
				slog.String("task_name", task.Name),
				slog.Any("panic", r))
			retErr = w.handleTaskFailure(bookkeeping, task, fmt.Errorf("panic in handler: %v", r), time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[task.Name]
	w.mu.RUnlock()

	if !ok {
		w.logger.Error("no handler registered for task",
			logger.TaskID(task.ID.String()),
			slog.String("task_name", task.Name))
		if err := w.repo.FailTask(bookkeeping, task, "no handler registered for task: "+task.Name); err != nil {
			return fmt.Errorf("failed to mark task %s as failed: %w", task.ID, err)
		}
		return ErrHandlerNotFound
	}

	ctx, cancel := context.WithTimeout(withTaskInfo(context.Background(), task), w.lockTimeout)
	defer cancel()

	if err := handler.Handle(ctx, task.Payload); err != nil {
		return w.handleTaskFailure(bookkeeping, task, err, time.Since(start))
	}

	if err := w.repo.CompleteTask(bookkeeping, task); err != nil {
		return fmt.Errorf("failed to mark task %s as completed: %w", task.ID, err)
	}

	w.logger.Info("task completed",
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.Name),
		slog.String("queue", task.Queue),
		logger.Attempt(task.Attempts),
		logger.Duration(time.Since(start)))

	return nil
}

// handleTaskFailure schedules a retry with exponential backoff, or fails the
// task for good once its attempts are used up.
func (w *Worker) handleTaskFailure(ctx context.Context, task *Task, execErr error, duration time.Duration) error {
	attrs := []any{
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.Name),
		logger.Attempt(task.Attempts),
		slog.Int("max_attempts", task.MaxAttempts),
		logger.Duration(duration),
		logger.Error(execErr),
	}

	if task.Exhausted() {
		if err := w.repo.FailTask(ctx, task, execErr.Error()); err != nil {
			return fmt.Errorf("failed to mark task %s as failed: %w", task.ID, err)
		}
		w.logger.Error("task failed, no attempts left", attrs...)
		return nil
	}

	delay := Backoff(w.backoffBase, task.Attempts)
	if err := w.repo.RetryTask(ctx, task, w.now().Add(delay), execErr.Error()); err != nil {
		return fmt.Errorf("failed to schedule retry of task %s: %w", task.ID, err)
	}
	w.logger.Warn("task failed, retry scheduled", append(attrs, slog.Duration("retry_in", delay))...)

	return nil
}
