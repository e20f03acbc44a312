// Package queue defines the contract for enqueuing and consuming
// persistence writes.
//
// Implementations may use channels or more advanced structures. The
// in-memory bounded queue decouples the ingest path from storage
// latency; when it fills, writes are dropped rather than blocking
// the reading pipeline.
package queue

import (
	"context"
	"sync"

	"github.com/wardsight/wardsight/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Write is one pending record store write.
type Write struct {
	Key   string
	Value []byte
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a write to the queue.
	// Returns false if the queue is full and the write was dropped.
	Enqueue(ctx context.Context, w Write) bool

	// Dequeue returns a channel that will receive writes as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Write

	// Len returns the current number of queued writes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new writes can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	writes     chan Write
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.writes = make(chan Write, q.bufferSize)

	metrics.UpdatePersistQueueCapacity(q.capacity)
	metrics.UpdatePersistQueueDepth(0)

	return q
}

// Enqueue adds a write to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, w Write) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordPersistDropped()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.writes) >= q.capacity {
		metrics.RecordPersistDropped()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.writes <- w:
		metrics.UpdatePersistQueueDepth(len(q.writes))
		return true
	case <-ctx.Done():
		metrics.RecordPersistDropped()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordPersistDropped()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive writes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Write {
	dequeueChan := make(chan Write)
	go func() {
		defer close(dequeueChan)
		for w := range q.writes {
			select {
			case dequeueChan <- w:
				metrics.UpdatePersistQueueDepth(len(q.writes))
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued writes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.writes)
	metrics.UpdatePersistQueueDepth(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.writes)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
