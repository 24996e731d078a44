// Package workerpool runs tasks on a fixed set of goroutines with a bounded
// backlog. Submit never blocks: when the backlog is full it returns
// ErrPoolFull and the caller decides whether to drop, retry or reject.
//
//	pool := workerpool.New("notifications", 4, 64)
//	defer pool.Shutdown(context.Background())
//
//	if err := pool.Submit(func(ctx context.Context) { send(ctx) }); err != nil {
//	    logger.Warn("notice dropped", "error", err)
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Task receives a context that is cancelled when Shutdown gives up waiting.
type Task func(ctx context.Context)

type Pool struct {
	name   string
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts size workers sharing a backlog of backlog tasks. Non-positive
// values default to one worker and twice the workers respectively.
func New(name string, size, backlog int) *Pool {
	if size <= 0 {
		size = 1
	}
	if backlog <= 0 {
		backlog = size * 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{name: name, tasks: make(chan Task, backlog), ctx: ctx, cancel: cancel}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit queues task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// Pending reports how many tasks wait for a worker.
func (p *Pool) Pending() int { return len(p.tasks) }

// Shutdown stops accepting tasks and waits for the backlog to drain. When
// ctx ends first the running tasks see their context cancelled and
// ctx.Err() is returned. Safe to call more than once.
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

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes task, logging a panic instead of losing the worker.
func (p *Pool) run(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("workerpool: task panicked", "pool", p.name, "error", fmt.Sprint(rec))
		}
	}()
	task(p.ctx)
}
