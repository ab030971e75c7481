package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cernol/formintake/pkg/async"
)

func TestFuture(t *testing.T) {
	t.Parallel()

	t.Run("returns value", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (string, error) { return "ok", nil })
		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.True(t, f.IsComplete())
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := async.Go(ctx, func(context.Context) (int, error) { return 1, nil }).Await()
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("panic becomes error", func(t *testing.T) {
		t.Parallel()
		_, err := async.Go(context.Background(), func(context.Context) (int, error) { panic("boom") }).Await()
		assert.ErrorIs(t, err, async.ErrPanic)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			time.Sleep(200 * time.Millisecond)
			return 1, nil
		})
		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)
	})
}

func TestSettle(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := async.Go(context.Background(), func(context.Context) (string, error) { return "", boom })
	b := async.Go(context.Background(), func(context.Context) (string, error) { return "b", nil })

	out := async.Settle(a, b)
	require.Len(t, out, 2)
	assert.ErrorIs(t, out[0].Err, boom)
	assert.NoError(t, out[1].Err)
	assert.Equal(t, "b", out[1].Value)
}

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("runs tasks and drains on shutdown", func(t *testing.T) {
		t.Parallel()
		p := async.NewPool(2, 10, nil)
		var n atomic.Int32
		for range 5 {
			require.NoError(t, p.Submit(func(context.Context) error {
				time.Sleep(5 * time.Millisecond)
				n.Add(1)
				return nil
			}))
		}
		require.NoError(t, p.Shutdown(context.Background()))
		assert.Equal(t, int32(5), n.Load())
		assert.ErrorIs(t, p.Submit(func(context.Context) error { return nil }), async.ErrPoolClosed)
	})

	t.Run("full queue", func(t *testing.T) {
		t.Parallel()
		p := async.NewPool(1, 0, nil)
		block := make(chan struct{})
		started := make(chan struct{})
		require.Eventually(t, func() bool {
			return p.Submit(func(context.Context) error {
				close(started)
				<-block
				return nil
			}) == nil
		}, time.Second, time.Millisecond)
		<-started
		assert.ErrorIs(t, p.Submit(func(context.Context) error { return nil }), async.ErrPoolFull)
		close(block)
		require.NoError(t, p.Shutdown(context.Background()))
	})

	t.Run("panics are contained", func(t *testing.T) {
		t.Parallel()
		p := async.NewPool(1, 1, nil)
		require.NoError(t, p.Submit(func(context.Context) error { panic("boom") }))
		done := make(chan struct{})
		require.Eventually(t, func() bool {
			return p.Submit(func(context.Context) error { close(done); return nil }) == nil
		}, time.Second, time.Millisecond)
		<-done
		require.NoError(t, p.Shutdown(context.Background()))
	})
}
