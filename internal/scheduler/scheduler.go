// Package scheduler drives the periodic snapshot broadcast.
package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wardsight/wardsight/internal/domain/types"
	"github.com/wardsight/wardsight/pkg/logger"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// defaultInterval matches the display refresh cadence.
const defaultInterval = 2 * time.Second

const nanosPerMillisecond = 1e6

// Source produces the display states for one broadcast tick.
type Source interface {
	// States returns every patient's display state for the given
	// window. Live sources ignore the window.
	States(ctx context.Context, window int) []types.PatientDisplayState

	// MaxWindow returns the last replay window, or a negative value
	// for live sources.
	MaxWindow() int
}

// Broadcaster fans one payload out to all connected viewers.
type Broadcaster interface {
	Broadcast(payload []byte)
	ClientCount() int
}

// Scheduler ticks at a fixed interval, pulls a snapshot from the
// source, and hands one marshaled payload to the broadcaster. In
// replay mode the window advances each tick and wraps at the end of
// the dataset for a closed-loop demo feed.
type Scheduler struct {
	interval time.Duration
	source   Source
	sink     Broadcaster

	window int

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex

	logger logger.Logger
}

// New creates a scheduler.
func New(source Source, sink Broadcaster, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: defaultInterval,
		source:   source,
		sink:     sink,
		logger:   logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the broadcast loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(loopCtx)
}

// Stop halts the loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()

	window := s.window
	states := s.source.States(ctx, window)

	payload, err := json.Marshal(states)
	if err != nil {
		s.logger.Error(ctx, "snapshot marshal failed", logger.Error(err))
		metrics.RecordErrorByComponent("scheduler", "marshal")
		return
	}

	s.sink.Broadcast(payload)

	metrics.RecordBroadcastTick()
	metrics.RecordBroadcastLatency(float64(time.Since(start).Nanoseconds()) / nanosPerMillisecond)
	metrics.UpdateBroadcastPayloadBytes(len(payload))

	if maxWindow := s.source.MaxWindow(); maxWindow >= 0 {
		s.window++
		if s.window > maxWindow {
			s.logger.Info(ctx, "replay wrapped", logger.Int("max_window", maxWindow))
			s.window = 0
		}
	}
}
