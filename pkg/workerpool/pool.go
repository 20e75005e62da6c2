// Package workerpool is a bounded goroutine pool with backpressure, plus
// ForEach for fanning a batch of independent items across it.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	errs := workerpool.ForEach(ctx, pool, ids, func(ctx context.Context, id uint) error {
//	    return svc.Approve(ctx, id)
//	})
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	closeCh chan struct{}
}

// New creates a Pool with size workers (at least one).
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
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

// SubmitWait blocks until the task is queued, the pool closes or ctx ends.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.closeCh)
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}

// ForEach runs fn once per item on p and returns the error for every item
// that failed, keyed by item. Items are independent: one failure does not
// stop the rest. A panicking fn is reported as that item's error. Items not
// submitted because ctx ended or the pool closed report that error.
func ForEach[T comparable](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) error) map[T]error {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs = make(map[T]error)
	)
	record := func(item T, err error) {
		mu.Lock()
		errs[item] = err
		mu.Unlock()
	}

	for _, item := range items {
		wg.Add(1)
		err := p.SubmitWait(ctx, func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					record(item, fmt.Errorf("workerpool: panic: %v", r))
				}
			}()
			if err := fn(ctx, item); err != nil {
				record(item, err)
			}
		})
		if err != nil {
			wg.Done()
			record(item, err)
		}
	}
	wg.Wait()
	return errs
}
