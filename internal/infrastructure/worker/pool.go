package worker

import (
	"context"
	"sync"
)

// workerPool is a fixed-size goroutine pool with a bounded input queue.
// Workers keep draining the queue after Close until it is empty.
type workerPool[T any] struct {
	queue   chan T
	process func(ctx context.Context, t T)
	ctx     context.Context
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity size.
func newWorkerPool[T any](ctx context.Context, n, size int, fn func(context.Context, T)) *workerPool[T] {
	if n <= 0 {
		n = 1
	}
	if size < 0 {
		size = 0
	}
	p := &workerPool[T]{
		queue:   make(chan T, size),
		process: fn,
		ctx:     ctx,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run()
		}()
	}
	return p
}

func (p *workerPool[T]) run() {
	for t := range p.queue {
		p.process(p.ctx, t)
	}
}

// Submit enqueues a job without blocking (returns false if full or closed).
func (p *workerPool[T]) Submit(t T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.queue <- t:
		return true
	default:
		return false
	}
}

// SubmitWait blocks until the job is queued, stop is closed or the pool is closed.
func (p *workerPool[T]) SubmitWait(t T, stop <-chan struct{}) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.queue <- t:
		return true
	case <-stop:
		return false
	}
}

// Close stops accepting jobs. Callers blocked in SubmitWait must be released
// through their stop channel first.
func (p *workerPool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.queue)
}

// Wait blocks until every worker has returned.
func (p *workerPool[T]) Wait() {
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T]) QueueCap() int {
	return cap(p.queue)
}
