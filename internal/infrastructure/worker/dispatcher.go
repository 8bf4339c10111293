package worker

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/metrics"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

// Processor runs the deferred work of one accepted transaction.
type Processor interface {
	Process(ctx context.Context, transactionID string) error
}

type job struct {
	transactionID string
	enqueuedAt    time.Time
}

// Dispatcher hands accepted transactions to a bounded worker pool. Dispatch
// never blocks the caller: when the queue is full the job waits in a tracked
// overflow goroutine until a slot frees up.
type Dispatcher struct {
	pool      *workerPool[job]
	processor Processor
	cancel    context.CancelFunc
	stop      chan struct{}
	mu        sync.Mutex
	stopped   bool
	overflow  sync.WaitGroup
	logger    *zerolog.Logger
}

// NewDispatcher starts workers bound to ctx. Cancelling ctx interrupts jobs in
// flight; Shutdown is the graceful path.
func NewDispatcher(ctx context.Context, processor Processor, workers, queueSize int) *Dispatcher {
	l := log.GetLogger()
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		processor: processor,
		cancel:    cancel,
		stop:      make(chan struct{}),
		logger:    &l,
	}
	d.pool = newWorkerPool[job](ctx, workers, queueSize, d.run)
	return d
}

// Dispatch schedules transactionID for background processing.
func (d *Dispatcher) Dispatch(transactionID string) {
	j := job{transactionID: transactionID, enqueuedAt: time.Now()}
	if d.pool.Submit(j) {
		metrics.QueueDepth.Set(float64(d.pool.QueueLen()))
		return
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.logger.Error().Str("transaction_id", transactionID).Msg("Dispatcher stopped, transaction left PROCESSING")
		metrics.TransitionsAbandoned.Inc()
		return
	}
	d.overflow.Add(1)
	d.mu.Unlock()

	metrics.QueueOverflow.Inc()
	d.logger.Warn().Str("transaction_id", transactionID).Int("queue_cap", d.pool.QueueCap()).Msg("Processor queue full, parking job")
	go func() {
		defer d.overflow.Done()
		if !d.pool.SubmitWait(j, d.stop) {
			d.logger.Error().Str("transaction_id", transactionID).Msg("Dispatcher stopped, transaction left PROCESSING")
			metrics.TransitionsAbandoned.Inc()
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, j job) {
	metrics.QueueDepth.Set(float64(d.pool.QueueLen()))
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Str("transaction_id", j.transactionID).Msg("Processor panicked, transaction left PROCESSING")
			metrics.TransitionsAbandoned.Inc()
		}
	}()

	if err := d.processor.Process(ctx, j.transactionID); err != nil {
		d.logger.Debug().Err(err).Str("transaction_id", j.transactionID).Msg("Processing ended without transition")
		return
	}
	metrics.ProcessingDuration.Observe(time.Since(j.enqueuedAt).Seconds())
}

// Shutdown stops accepting work and lets queued jobs finish until ctx is
// done; after that jobs in flight are interrupted and stay PROCESSING.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.stop)
	}
	d.mu.Unlock()
	d.overflow.Wait()
	d.pool.Close()

	done := make(chan struct{})
	go func() {
		d.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn().Msg("Shutdown deadline reached, interrupting background processing")
		d.cancel()
		<-done
	}
	d.cancel()
}
