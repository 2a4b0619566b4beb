package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	done := make(chan string, 1)
	pool := NewPool("test", func(ctx context.Context, task Task) error {
		done <- task.Payload.(string)
		return nil
	}, PoolConfig{Workers: 2})
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, pool.Submit(Task{ID: "1", Kind: "echo", Payload: "hello"}))
	select {
	case got := <-done:
		assert.Equal(t, "hello", got)
	case <-time.After(time.Second):
		t.Fatal("task was not executed")
	}
}

func TestPoolRetriesFailedTasks(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	pool := NewPool("retry", func(ctx context.Context, task Task) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("boom")
		}
		close(done)
		return nil
	}, PoolConfig{MaxAttempts: 5, Backoff: 5 * time.Millisecond})
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, pool.Submit(Task{ID: "r"}))
	select {
	case <-done:
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried")
	}
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	pool := NewPool("idle", func(context.Context, Task) error { return nil }, PoolConfig{})
	err := pool.Submit(Task{ID: "x"})
	assert.ErrorIs(t, err, ErrPoolStopped)

	pool.Start(context.Background())
	pool.Stop()
	assert.ErrorIs(t, pool.Submit(Task{ID: "y"}), ErrPoolStopped)
}
