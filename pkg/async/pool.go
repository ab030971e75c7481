package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cernol/formintake/pkg/logger"
)

// Task is a unit of background work.
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed number of workers. Tasks run with a
// context detached from the submitter, so they outlive the HTTP request that
// scheduled them.
type Pool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines with a queue of size queue.
func NewPool(workers, queue int, log *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	if log == nil {
		log = logger.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan Task, queue),
		log:    log.With(logger.Component("async.pool")),
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(workers)
	for range workers {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("background task panicked", logger.Error(fmt.Errorf("%w: %v", ErrPanic, r)))
		}
	}()
	if err := t(p.ctx); err != nil {
		p.log.Warn("background task failed", logger.Error(err))
	}
}

// Submit enqueues t without blocking. It fails with ErrPoolFull when the
// queue is saturated and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. When
// ctx expires first, running tasks see their context cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
