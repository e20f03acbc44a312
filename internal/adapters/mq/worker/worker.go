// Package worker defines worker contracts for asynchronous record
// persistence.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/wardsight/wardsight/internal/adapters/mq/queue"
	"github.com/wardsight/wardsight/pkg/logger"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Writer persists one record.
type Writer interface {
	Put(ctx context.Context, key string, value []byte) error
}

// Queue defines how workers receive pending writes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Write
}

// Worker drains the persistence queue into the record store.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// Persister implements Worker for draining writes.
type Persister struct {
	queue  Queue
	writer Writer
	name   string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewPersister creates a new persistence worker.
func NewPersister(q Queue, writer Writer, opts ...Option) *Persister {
	w := &Persister{
		queue:    q,
		writer:   writer,
		name:     "persister",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("persister"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "persister" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *Persister) Run(ctx context.Context) {
	defer close(w.done)

	writeChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case write, ok := <-writeChan:
			if !ok {
				return
			}
			w.persist(ctx, write)
		}
	}
}

// signalStop closes the shutdown channel exactly once, so Shutdown
// and Pool.Stop can both request a stop safely.
func (w *Persister) signalStop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Shutdown gracefully stops the worker.
func (w *Persister) Shutdown(ctx context.Context) error {
	w.signalStop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// persist handles a single write. Failures are logged and counted
// but never retried; the cache still holds the current state, so a
// lost write only costs durability for that record version.
func (w *Persister) persist(ctx context.Context, write queue.Write) {
	if err := w.writer.Put(ctx, write.Key, write.Value); err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("persister", "store_write")
		w.logger.Error(ctx, "record write failed",
			logger.String("key", write.Key),
			logger.Error(err),
		)
		return
	}
	metrics.RecordPersistWrite()
}

// Pool manages multiple persistence workers.
type Pool struct {
	workers []*Persister
	queue   Queue
	writer  Writer

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, writer Writer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*Persister, workerCount),
		queue:   q,
		writer:  writer,
		logger:  logger.Get().Named("persister-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewPersister(
			q,
			writer,
			WithName("persister-"+strconv.Itoa(i)),
		)
	}

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	for _, worker := range p.workers {
		worker.signalStop()
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and drains all workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
