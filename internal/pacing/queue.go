// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package pacing smooths bursty feeds into a steady release rate. A queue
// sits between a high-volume source adapter and the broadcaster, releasing
// at most one event per tick so a poll that returns twenty new items reaches
// subscribers as a readable trickle instead of a wall of simultaneous lines.
package pacing

import (
	"context"
	"sync"
	"time"

	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/metrics"
	"github.com/cwadley/threatcast/internal/models"
)

// DefaultCap bounds a queue when no explicit capacity is configured.
const DefaultCap = 50

// Queue is a bounded pacing buffer. Accept never blocks the producer; when
// the buffer is full the oldest event of equal-or-lower severity is evicted,
// so a backlog sheds routine events before important ones. It implements
// suture.Service; the release ticker runs until the context is canceled.
type Queue struct {
	name       string
	interval   time.Duration
	capacity   int
	bySeverity bool
	sink       Sink

	mu    sync.Mutex
	items []models.Event
}

// Sink receives released events, normally the broadcaster.
type Sink interface {
	Accept(ev models.Event)
}

// Option configures a Queue.
type Option func(*Queue)

// WithCapacity overrides the default buffer bound.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// BySeverity releases the most severe buffered event first instead of FIFO.
// Ties release in arrival order.
func BySeverity() Option {
	return func(q *Queue) { q.bySeverity = true }
}

// New builds a pacing queue that releases one event per interval into sink.
func New(name string, interval time.Duration, sink Sink, opts ...Option) *Queue {
	q := &Queue{
		name:     name,
		interval: interval,
		capacity: DefaultCap,
		sink:     sink,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// String implements fmt.Stringer for suture logging.
func (q *Queue) String() string { return "pacing-" + q.name }

// Len returns the current buffer depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Accept buffers one event. When the buffer is full, the oldest event no
// more severe than the incoming one is evicted; if everything buffered
// outranks the incoming event, the incoming event itself is dropped.
func (q *Queue) Accept(ev models.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		if !q.evictLocked(ev.Severity) {
			metrics.QueueDropped.WithLabelValues(q.name).Inc()
			metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.items)))
			return
		}
		metrics.QueueDropped.WithLabelValues(q.name).Inc()
	}

	q.items = append(q.items, ev)
	metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.items)))
}

// evictLocked removes the oldest event whose severity does not exceed rank.
// It reports false when nothing qualifies.
func (q *Queue) evictLocked(incoming models.Severity) bool {
	for i, ev := range q.items {
		if ev.Severity.Rank() <= incoming.Rank() {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Serve implements suture.Service: release exactly one event per tick until
// the context is canceled. An empty buffer makes the tick a no-op; release
// spacing never falls below the configured interval.
func (q *Queue) Serve(ctx context.Context) error {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug().Str("queue", q.name).Int("abandoned", q.Len()).Msg("pacing queue stopped")
			return ctx.Err()
		case <-ticker.C:
			if ev, ok := q.pop(); ok {
				q.sink.Accept(ev)
				metrics.QueueReleased.WithLabelValues(q.name).Inc()
			}
		}
	}
}

// pop removes and returns the next event to release.
func (q *Queue) pop() (models.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return models.Event{}, false
	}

	idx := 0
	if q.bySeverity {
		for i, ev := range q.items {
			if ev.Severity.Rank() > q.items[idx].Severity.Rank() {
				idx = i
			}
		}
	}

	ev := q.items[idx]
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.items)))
	return ev, true
}
