/*
Package worker provides a bounded worker pool with rate limiting and context
cancellation. Results are streamed to a handler as tasks finish, so the pool
never holds more than its queue.

Basic usage:

	pool, err := worker.NewPool(worker.Config{
		Workers:   4,
		RateLimit: 100, // 100 tasks/sec
		OnResult: func(r worker.Result, err error) {
			// Runs on the worker goroutine
		},
	})

	pool.Start(ctx)

	pool.Submit(worker.Task{
		ID: 1,
		Execute: func(ctx context.Context) (worker.Result, error) {
			return worker.Result{ID: 1, Data: "processed"}, nil
		},
	})

	err = pool.Wait()
*/
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Task represents a unit of work to be processed by the worker pool
type Task struct {
	// ID identifies the task in results and errors
	ID int

	// Execute performs the work. It receives the pool context for
	// cancellation support
	Execute func(context.Context) (Result, error)
}

// Result represents the output of a processed task
type Result struct {
	// ID matches the task ID that produced this result
	ID int

	// Data holds the actual result data
	Data interface{}

	// Order is the submission sequence number of the task
	Order int
}

// ResultHandler receives every finished task, failed or not. It is called
// concurrently from the worker goroutines.
type ResultHandler func(Result, error)

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of tasks started per second (0 for
	// unlimited)
	RateLimit float64

	// QueueSize is the task channel capacity (0 means 2*Workers)
	QueueSize int

	// OnResult is invoked for each finished task
	OnResult ResultHandler
}

// Pool defines the interface for a worker pool
type Pool interface {
	// Start initializes and starts the worker pool
	Start(context.Context) error

	// Submit adds a task to the pool, blocking while the queue is full
	Submit(Task) error

	// Wait closes the queue, blocks until all submitted tasks are processed
	// and returns the first task error
	Wait() error

	// GetStats returns current statistics about the pool
	GetStats() Stats

	// Status returns the current status of the pool
	Status() Status

	// Stop cancels outstanding work and shuts the pool down
	Stop() error
}

// pool implements the Pool interface
type pool struct {
	config    Config
	tasks     chan taskWithOrder
	limiter   *rate.Limiter
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	started   bool
	closed    bool
	stopped   bool
	startTime time.Time

	statsMu       sync.RWMutex // Separate mutex for stats to avoid blocking pool operations
	stats         Stats
	firstErr      error
	activeWorkers atomic.Int32
	taskOrder     atomic.Int64
}

type taskWithOrder struct {
	Task
	order int
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config) (Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	queue := config.QueueSize
	if queue <= 0 {
		queue = config.Workers * 2
	}

	return &pool{
		config:  config,
		tasks:   make(chan taskWithOrder, queue),
		limiter: limiter,
		stats: Stats{
			Status: StatusStopped,
		},
	}, nil
}

// validateConfig checks if the pool configuration is valid
func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	if config.QueueSize < 0 {
		return fmt.Errorf("queue size must be non-negative")
	}
	return nil
}

// Start initializes and starts the worker pool
func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pool already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.startTime = time.Now()

	p.statsMu.Lock()
	p.stats = Stats{Status: StatusIdle}
	p.statsMu.Unlock()

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return nil
}

// Submit adds a task to the pool for processing
func (p *pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("pool not started")
	}
	if p.closed {
		return fmt.Errorf("pool no longer accepts tasks")
	}

	order := int(p.taskOrder.Add(1) - 1)

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("pool is shutting down: %w", p.ctx.Err())
	case p.tasks <- taskWithOrder{task, order}:
		return nil
	}
}

// closeQueue stops accepting tasks. Callers hold p.mu.
func (p *pool) closeQueue() {
	if !p.closed {
		close(p.tasks)
		p.closed = true
	}
}

// Wait blocks until all submitted tasks are processed
func (p *pool) Wait() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return fmt.Errorf("pool not started")
	}
	p.closeQueue()
	p.mu.Unlock()

	p.wg.Wait()

	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.firstErr
}

// Stop cancels the pool context and waits briefly for the workers
func (p *pool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	if !p.started {
		return nil
	}

	p.setStatus(StatusShuttingDown)
	defer p.setStatus(StatusStopped)

	p.cancel()
	p.closeQueue()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("shutdown timed out")
	}
}

func (p *pool) setStatus(s Status) {
	p.statsMu.Lock()
	p.stats.Status = s
	p.statsMu.Unlock()
}

func (p *pool) GetStats() Stats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()

	var uptime time.Duration
	if !p.startTime.IsZero() {
		uptime = time.Since(p.startTime)
	}

	return Stats{
		ActiveWorkers:  int(p.activeWorkers.Load()),
		QueuedTasks:    len(p.tasks),
		CompletedTasks: p.stats.CompletedTasks,
		FailedTasks:    p.stats.FailedTasks,
		Status:         p.getStatus(),
		Uptime:         uptime,
	}
}

func (p *pool) Status() Status {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()

	return p.getStatus()
}

// getStatus derives the status. Callers hold p.statsMu.
func (p *pool) getStatus() Status {
	switch p.stats.Status {
	case StatusStopped, StatusShuttingDown:
		return p.stats.Status
	}

	if p.activeWorkers.Load() > 0 || len(p.tasks) > 0 {
		return StatusProcessing
	}

	return StatusIdle
}

// worker processes tasks until the queue is closed
func (p *pool) worker(id int) {
	defer p.wg.Done()

	for t := range p.tasks {
		p.activeWorkers.Add(1)
		result, err := p.run(t)
		p.activeWorkers.Add(-1)

		p.statsMu.Lock()
		if err != nil {
			p.stats.FailedTasks++
			if p.firstErr == nil {
				p.firstErr = err
			}
		} else {
			p.stats.CompletedTasks++
		}
		p.statsMu.Unlock()

		if p.config.OnResult != nil {
			p.config.OnResult(result, err)
		}
	}
}

func (p *pool) run(t taskWithOrder) (Result, error) {
	base := Result{ID: t.ID, Order: t.order}

	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return base, fmt.Errorf("rate limiter error: %w", err)
		}
	}

	if err := p.ctx.Err(); err != nil {
		return base, fmt.Errorf("task %d not started: %w", t.ID, err)
	}

	result, err := t.Execute(p.ctx)
	result.ID = t.ID
	result.Order = t.order
	if err != nil {
		return result, fmt.Errorf("task %d failed: %w", t.ID, err)
	}
	return result, nil
}

// IsCancelled reports whether err stems from the pool context being
// cancelled rather than from the task itself.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
