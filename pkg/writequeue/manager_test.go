package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_ReturnsOperationError(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	boom := errors.New("boom")
	err := m.Execute(context.Background(), 1, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	err = m.Execute(context.Background(), 1, func() error { return nil })
	assert.NoError(t, err)
}

func TestExecute_SerializesSameKey(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var running, maxRunning int32
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), 7, func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&maxRunning)
					if n <= old || atomic.CompareAndSwapInt32(&maxRunning, old, n) {
						break
					}
				}
				// Unsynchronized read-modify-write, safe only if serialized.
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
				atomic.AddInt32(&running, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestExecute_DifferentKeysRunInParallel(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = m.Execute(context.Background(), 1, func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan error, 1)
	go func() {
		done <- m.Execute(context.Background(), 2, func() error { return nil })
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("operation on another key was blocked")
	}
	close(release)
}

func TestExecute_WriteTimeout(t *testing.T) {
	m := New(&Config{WriteTimeout: 20 * time.Millisecond}, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	defer close(release)

	err := m.Execute(context.Background(), 3, func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, ErrWriteTimeout)
}

func TestExecute_CancelledContextSkipsOperation(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	err := m.Execute(ctx, 4, func() error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	// A follow-up operation on the same key proves the queue is still healthy.
	require.NoError(t, m.Execute(context.Background(), 4, func() error { return nil }))
	assert.False(t, ran.Load())
}

func TestShutdown_RejectsNewWork(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Execute(context.Background(), 5, func() error { return nil }))
	assert.Equal(t, 1, m.QueueCount())

	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.IsClosed())

	err := m.Execute(context.Background(), 5, func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)

	// Idempotent.
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestIdleQueueIsRetired(t *testing.T) {
	m := New(&Config{IdleTimeout: 20 * time.Millisecond}, nil)
	defer m.Shutdown(context.Background())

	require.NoError(t, m.Execute(context.Background(), 6, func() error { return nil }))

	assert.Eventually(t, func() bool { return m.QueueCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, m.QueuedCount(6))

	// The key gets a fresh worker on next use.
	require.NoError(t, m.Execute(context.Background(), 6, func() error { return nil }))
}
