// Package lane implements the fixed-size worker-pool "lane" abstraction
// the service uses to bound concurrency for each class of work: general
// metadata-store access and metadata serialization each run on their own
// lane so a burst on one never starves the other. Request handling and
// blob-store I/O do not run on a lane.
package lane

import (
	"context"
	"sync"

	"github.com/wsobjects/wsd/internal/logger"
)

// job is a unit of work queued onto a Lane. fn executes the work and
// reports its result on done; Lane.worker is the only reader of fn and
// the only writer of done.
type job struct {
	fn   func() (any, error)
	done chan result
}

type result struct {
	val any
	err error
}

// Lane is a bounded pool of workers draining a single job queue. A Lane
// with one worker gives FIFO, single-threaded execution — used for the
// serialization lane; a Lane with N workers gives bounded
// parallelism — used for the general metadata-store lane.
type Lane struct {
	name    string
	queue   chan job
	workers int
	wg      sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// New creates a Lane with the given name (used only for logging/metrics),
// worker count, and queue depth. Call Start before submitting work.
func New(name string, workers, queueDepth int) *Lane {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth <= 0 {
		queueDepth = 64
	}
	return &Lane{
		name:    name,
		queue:   make(chan job, queueDepth),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the lane's worker goroutines. Calling Start more than
// once is a no-op.
func (l *Lane) Start() {
	l.startOnce.Do(func() {
		for i := 0; i < l.workers; i++ {
			l.wg.Add(1)
			go l.worker()
		}
		logger.Info("lane started", logger.Lane(l.name), "workers", l.workers)
	})
}

// Stop signals workers to exit once the queue drains and blocks until
// they do. Submitting after Stop panics, matching a closed channel send.
func (l *Lane) Stop() {
	l.stopOnce.Do(func() {
		close(l.queue)
		l.wg.Wait()
		close(l.stopCh)
		logger.Info("lane stopped", logger.Lane(l.name))
	})
}

func (l *Lane) worker() {
	defer l.wg.Done()
	for j := range l.queue {
		val, err := j.fn()
		j.done <- result{val: val, err: err}
	}
}

// Do submits fn to the lane and blocks until it runs and returns, or ctx
// is canceled first. This is the "post-and-wait" pattern: fn always runs
// to completion on the lane even if the caller gives up waiting, so a
// canceled caller never leaves the lane's internal state half-updated.
func Do[T any](ctx context.Context, l *Lane, fn func() (T, error)) (T, error) {
	var zero T
	done := make(chan result, 1)
	j := job{
		fn: func() (any, error) {
			return fn()
		},
		done: done,
	}

	select {
	case l.queue <- j:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-done:
		if r.err != nil {
			return zero, r.err
		}
		v, _ := r.val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// QueueDepth reports the number of jobs currently queued, for metrics.
func (l *Lane) QueueDepth() int {
	return len(l.queue)
}

// Name returns the lane's name, for metrics labeling.
func (l *Lane) Name() string {
	return l.name
}
