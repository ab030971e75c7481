// Package async offers typed futures for fan-out work and a bounded pool for
// fire-and-forget background tasks.
package async

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTimeout    = errors.New("async: timed out waiting for future")
	ErrPoolClosed = errors.New("async: pool is closed")
	ErrPoolFull   = errors.New("async: pool queue is full")
	ErrPanic      = errors.New("async: task panicked")
)

// Future holds the eventual result of a function started with Go.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Go runs fn in its own goroutine. A panic inside fn is converted into an
// error wrapping ErrPanic.
func Go[U any](ctx context.Context, fn func(context.Context) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Await blocks until the function returns.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout is Await bounded by timeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Outcome is one settled future.
type Outcome[U any] struct {
	Value U
	Err   error
}

// Settle waits for every future and returns their outcomes in order. Unlike
// a fail-fast wait, one failure never hides the others.
func Settle[U any](futures ...*Future[U]) []Outcome[U] {
	out := make([]Outcome[U], len(futures))
	for i, f := range futures {
		out[i].Value, out[i].Err = f.Await()
	}
	return out
}
