package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrPoolStopped is returned by Submit once the pool is no longer accepting tasks.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task is one unit of background work.
type Task struct {
	ID        string
	Kind      string
	Payload   interface{}
	Attempt   int
	Submitted time.Time
}

// Handler runs a task. A returned error schedules a retry until MaxAttempts is reached.
type Handler func(context.Context, Task) error

// PoolConfig sizes a Pool.
type PoolConfig struct {
	Workers     int
	Buffer      int
	MaxAttempts int
	Backoff     time.Duration
	Logger      *zap.Logger
}

// Pool runs tasks on a fixed set of goroutines.
type Pool struct {
	name    string
	handler Handler
	cfg     PoolConfig
	logger  *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewPool builds a stopped pool.
func NewPool(name string, handler Handler, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = cfg.Workers * 16
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("pool", name)),
		tasks:   make(chan Task, cfg.Buffer),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	p.running = true
	p.logger.Info("worker pool started", zap.Int("workers", p.cfg.Workers))
}

// Stop cancels the workers and waits for in-flight tasks to return.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Submit queues a task, blocking while the buffer is full.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	ctx, running := p.ctx, p.running
	p.mu.Unlock()
	if !running {
		return fmt.Errorf("%s: %w", p.name, ErrPoolStopped)
	}
	if task.Submitted.IsZero() {
		task.Submitted = time.Now().UTC()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", p.name, ErrPoolStopped)
	case p.tasks <- task:
		return nil
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			if err := p.handler(p.ctx, task); err != nil {
				p.retry(task, err)
			}
		}
	}
}

func (p *Pool) retry(task Task, err error) {
	task.Attempt++
	fields := []zap.Field{zap.String("task_id", task.ID), zap.String("kind", task.Kind), zap.Int("attempt", task.Attempt), zap.Error(err)}
	if task.Attempt >= p.cfg.MaxAttempts {
		p.logger.Error("task failed, giving up", fields...)
		return
	}
	p.logger.Warn("task failed, retrying", fields...)

	go func() {
		timer := time.NewTimer(p.cfg.Backoff)
		defer timer.Stop()
		select {
		case <-p.ctx.Done():
		case <-timer.C:
			if err := p.Submit(task); err != nil {
				p.logger.Error("failed to resubmit task", zap.String("task_id", task.ID), zap.Error(err))
			}
		}
	}()
}
