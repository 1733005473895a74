// Package worker runs frames accepted on the asynchronous path through the
// coaching pipeline.
package worker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/formcoach/internal/adapters/mq/queue"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/pkg/logger"
	"github.com/okian/formcoach/pkg/metrics"
)

const (
	defaultQueueSize       = 1024
	metricsUpdateInterval  = 5 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.FrameJob

// Processor handles one frame job.
type Processor interface {
	Process(ctx context.Context, j Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, j Job) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, j Job) error { return f(ctx, j) } //nolint:gocritic // hugeParam

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs from a single queue.
type Worker interface {
	// Run processes jobs until the queue is drained and closed or ctx ends.
	Run(ctx context.Context)

	// Shutdown waits for Run to return.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	proc   Processor
	name   string
	done   chan struct{}
	logger logger.Logger

	active    *atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker(q Queue, proc Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  q,
		proc:   proc,
		name:   "worker",
		done:   make(chan struct{}),
		logger: logger.Get().Named("worker"),
		active: new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for j := range w.queue.Dequeue(ctx) {
		if err := w.process(ctx, j); err != nil {
			w.logger.Error(ctx, "error processing frame",
				logger.String("session_id", j.SessionID),
				logger.String("frame_id", j.FrameID),
				logger.Error(err),
			)
		}
	}
}

// Shutdown waits for the worker loop to finish. Close the queue first.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of jobs handled without error.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of jobs whose processing returned an error.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: jobs are passed by value for channel semantics
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
	}()

	if err := w.proc.Process(ctx, j); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process")
		return fmt.Errorf("process frame %s: %w", j.FrameID, err)
	}
	w.processed.Add(1)
	return nil
}

// Pool runs one worker per shard. A session always hashes to the same
// shard, so its frames are processed in arrival order.
type Pool struct {
	shards          []*queue.InMemoryQueue
	workers         []*InMemoryWorker
	queueSize       int
	metricsInterval time.Duration
	active          atomic.Int64

	started  atomic.Bool
	shutdown chan struct{}
	stopped  atomic.Bool

	logger logger.Logger
}

// NewPool creates a pool with workerCount shards. Zero or less means one
// shard per CPU.
func NewPool(workerCount int, proc Processor, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		queueSize:       defaultQueueSize,
		metricsInterval: metricsUpdateInterval,
		shutdown:        make(chan struct{}),
		logger:          logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}

	perShard := p.queueSize / workerCount
	if perShard < 1 {
		perShard = 1
	}
	p.shards = make([]*queue.InMemoryQueue, workerCount)
	p.workers = make([]*InMemoryWorker, workerCount)
	for i := range p.shards {
		p.shards[i] = queue.NewInMemoryQueue(queue.WithCapacity(perShard))
		w := NewInMemoryWorker(p.shards[i], proc, WithName("worker-"+strconv.Itoa(i)))
		w.active = &p.active
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateQueueCapacity(p.Cap())
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return p
}

// Start starts all workers in the pool. Calling it twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

// Submit routes a job to its session's shard without blocking.
func (p *Pool) Submit(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam
	if p.stopped.Load() {
		return ErrStopped
	}
	err := p.shards[p.shardFor(j.SessionID)].Enqueue(ctx, j)
	switch {
	case err == nil:
		p.updateMetrics()
		return nil
	case errors.Is(err, queue.ErrFull):
		return fmt.Errorf("%w: %w", ErrBackpressure, err)
	case errors.Is(err, queue.ErrClosed):
		return ErrStopped
	default:
		return err
	}
}

func (p *Pool) shardFor(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(p.shards))) //nolint:gosec // shard count is small and positive
}

// Len returns the number of jobs waiting across all shards.
func (p *Pool) Len() int {
	n := 0
	for _, q := range p.shards {
		n += q.Len()
	}
	return n
}

// Cap returns the total queue capacity across all shards.
func (p *Pool) Cap() int {
	n := 0
	for _, q := range p.shards {
		n += q.Cap()
	}
	return n
}

// Workers returns the number of workers (and shards).
func (p *Pool) Workers() int { return len(p.workers) }

// Processed returns the number of jobs handled without error.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed returns the number of jobs that failed.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(p.metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	size, capacity := p.Len(), p.Cap()
	metrics.UpdateQueueSize(size)
	if capacity > 0 {
		metrics.UpdateQueueUtilization(float64(size) / float64(capacity))
	}
}

// Shutdown stops accepting jobs, lets the workers drain what is queued and
// waits for them. A context without deadline is bounded by a default timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	for _, q := range p.shards {
		if err := q.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	close(p.shutdown)

	if !p.started.Load() {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	p.updateMetrics()
	return errors.Join(errs...)
}
