// Package writequeue serializes read-modify-write cycles per record id.
//
// Every notebook mutation is a get -> change -> whole-record update. Two such
// cycles on the same notebook running at once can both read the same prior
// state and the second update silently drops the first. Manager runs the
// operations submitted for one id strictly one after another in FIFO order,
// while different ids proceed in parallel.
package writequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull is returned when the queue for an id is at capacity.
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed is returned after Shutdown.
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout is returned when WriteTimeout elapses before the operation finishes.
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
type Config struct {
	// QueueCapacity is the number of operations that may wait per id. Default 100.
	QueueCapacity int
	// WriteTimeout bounds how long Execute waits for its operation.
	// Zero waits until the operation completes.
	WriteTimeout time.Duration
	// IdleTimeout is how long an empty per-id worker lingers. Default 10 minutes.
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

type keyQueue struct {
	key int64
	ch  chan writeOp
	// pending counts operations accepted but not yet finished. Guarded by Manager.mu.
	pending int
}

// Manager owns one lazily started worker per active id.
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[int64]*keyQueue
	closed bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a write queue manager. A nil cfg uses DefaultConfig and a nil
// logger discards output.
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	c := *cfg
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 100
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	if c.WriteTimeout < 0 {
		c.WriteTimeout = 0
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config: c,
		logger: logger,
		queues: make(map[int64]*keyQueue),
		stopCh: make(chan struct{}),
	}

	m.logger.Debug("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute runs fn after every operation previously submitted for key has
// finished, and returns fn's error.
func (m *Manager) Execute(ctx context.Context, key int64, fn func() error) error {
	queue, err := m.acquire(key)
	if err != nil {
		return err
	}

	result := make(chan error, 1)
	op := writeOp{ctx: ctx, fn: fn, result: result}

	select {
	case queue.ch <- op:
	default:
		m.release(queue)
		return ErrWriteQueueFull
	}

	var timeout <-chan time.Time
	if m.config.WriteTimeout > 0 {
		timer := time.NewTimer(m.config.WriteTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return ErrWriteTimeout
	}
}

// acquire returns the queue for key, starting its worker if needed, and
// reserves a slot so the worker cannot retire underneath the caller.
func (m *Manager) acquire(key int64) (*keyQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrWriteQueueClosed
	}

	queue, ok := m.queues[key]
	if !ok {
		queue = &keyQueue{
			key: key,
			ch:  make(chan writeOp, m.config.QueueCapacity),
		}
		m.queues[key] = queue
		m.wg.Add(1)
		go m.worker(queue)

		m.logger.Debug("created write queue", zap.Int64("key", key))
	}
	queue.pending++
	return queue, nil
}

func (m *Manager) release(queue *keyQueue) {
	m.mu.Lock()
	queue.pending--
	m.mu.Unlock()
}

func (m *Manager) worker(queue *keyQueue) {
	defer m.wg.Done()

	idle := time.NewTimer(m.config.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case op := <-queue.ch:
			m.executeOp(queue, op)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(m.config.IdleTimeout)

		case <-idle.C:
			if m.retire(queue) {
				m.logger.Debug("retired idle write queue", zap.Int64("key", queue.key))
				return
			}
			idle.Reset(m.config.IdleTimeout)

		case <-m.stopCh:
			m.drainUntilIdle(queue)
			m.logger.Debug("write queue worker stopped", zap.Int64("key", queue.key))
			return
		}
	}
}

// retire removes an empty queue from the manager. It refuses while any
// caller holds a reservation.
func (m *Manager) retire(queue *keyQueue) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if queue.pending > 0 || len(queue.ch) > 0 {
		return false
	}
	delete(m.queues, queue.key)
	return true
}

func (m *Manager) executeOp(queue *keyQueue, op writeOp) {
	defer m.release(queue)

	select {
	case <-op.ctx.Done():
		op.result <- op.ctx.Err()
		return
	default:
	}

	op.result <- op.fn()
}

// drainUntilIdle runs queued operations until no caller holds a reservation.
// A caller may have reserved a slot just before Shutdown and still be about
// to send, so an empty channel alone is not enough.
func (m *Manager) drainUntilIdle(queue *keyQueue) {
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case op := <-queue.ch:
			m.executeOp(queue, op)
		case <-poll.C:
			m.mu.Lock()
			pending := queue.pending
			m.mu.Unlock()
			if pending == 0 {
				return
			}
		}
	}
}

// Shutdown stops accepting work, runs everything already queued and waits for
// the workers to exit or ctx to end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stopCh)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Debug("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}

// QueueCount returns the number of ids with a live worker.
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// QueuedCount returns the number of operations reserved or running for key.
func (m *Manager) QueuedCount(key int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if queue, ok := m.queues[key]; ok {
		return queue.pending
	}
	return 0
}

// IsClosed reports whether Shutdown has been called.
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
