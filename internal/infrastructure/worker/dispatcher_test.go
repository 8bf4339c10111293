package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu      sync.Mutex
	seen    []string
	release chan struct{}
	done    chan string
}

func newRecordingProcessor(blocking bool) *recordingProcessor {
	p := &recordingProcessor{done: make(chan string, 100)}
	if blocking {
		p.release = make(chan struct{})
	}
	return p
}

func (p *recordingProcessor) Process(ctx context.Context, transactionID string) error {
	if transactionID == "boom" {
		panic("processor failure")
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			p.done <- transactionID
			return ctx.Err()
		}
	}
	p.mu.Lock()
	p.seen = append(p.seen, transactionID)
	p.mu.Unlock()
	p.done <- transactionID
	return nil
}

func (p *recordingProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

func waitFor(t *testing.T, ch <-chan string, n int) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-timeout:
			t.Fatalf("timed out after %d of %d jobs", i, n)
		}
	}
}

func TestDispatcherProcessesEveryJob(t *testing.T) {
	p := newRecordingProcessor(false)
	d := NewDispatcher(context.Background(), p, 4, 16)
	defer d.Shutdown(context.Background())

	for i := 0; i < 10; i++ {
		d.Dispatch(fmt.Sprintf("tx_%02d", i))
	}
	waitFor(t, p.done, 10)

	assert.Len(t, p.processed(), 10)
}

func TestDispatchDoesNotBlockWhenQueueIsFull(t *testing.T) {
	p := newRecordingProcessor(true)
	d := NewDispatcher(context.Background(), p, 1, 1)

	start := time.Now()
	for i := 0; i < 20; i++ {
		d.Dispatch(fmt.Sprintf("tx_%02d", i))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "dispatch must return immediately")

	close(p.release)
	waitFor(t, p.done, 20)
	d.Shutdown(context.Background())

	assert.Len(t, p.processed(), 20, "overflowed jobs must still run")
}

func TestDispatcherShutdownDrainsQueue(t *testing.T) {
	p := newRecordingProcessor(false)
	d := NewDispatcher(context.Background(), p, 2, 64)

	for i := 0; i < 30; i++ {
		d.Dispatch(fmt.Sprintf("tx_%02d", i))
	}
	d.Shutdown(context.Background())

	assert.Len(t, p.processed(), 30)
}

func TestDispatcherShutdownDeadlineInterruptsJobs(t *testing.T) {
	p := newRecordingProcessor(true)
	d := NewDispatcher(context.Background(), p, 1, 4)
	d.Dispatch("tx_in_flight")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	finished := make(chan struct{})
	go func() {
		d.Shutdown(ctx)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not return after its deadline")
	}
	assert.Empty(t, p.processed(), "interrupted job must not be reported as processed")
}

func TestDispatcherSurvivesPanics(t *testing.T) {
	p := newRecordingProcessor(false)
	d := NewDispatcher(context.Background(), p, 1, 8)

	d.Dispatch("boom")
	d.Dispatch("tx_after_panic")
	waitFor(t, p.done, 1)
	d.Shutdown(context.Background())

	require.Equal(t, []string{"tx_after_panic"}, p.processed())
}

func TestDispatchAfterShutdownIsDropped(t *testing.T) {
	p := newRecordingProcessor(false)
	d := NewDispatcher(context.Background(), p, 1, 1)
	d.Shutdown(context.Background())

	assert.NotPanics(t, func() { d.Dispatch("tx_late") })
	assert.Empty(t, p.processed())
}
