// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package pacing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwadley/threatcast/internal/models"
)

// timedSink records released events with their arrival times.
type timedSink struct {
	mu     sync.Mutex
	events []models.Event
	times  []time.Time
}

func (s *timedSink) Accept(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	s.times = append(s.times, time.Now())
}

func (s *timedSink) snapshot() ([]models.Event, []time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Event(nil), s.events...), append([]time.Time(nil), s.times...)
}

func event(severity models.Severity, name string) models.Event {
	return models.NewEvent(models.CategoryBGPAnomaly, severity, models.BGPAnomalyPayload{Description: name})
}

func description(ev models.Event) string {
	return ev.Payload.(models.BGPAnomalyPayload).Description
}

func TestQueue_ReleasesOnePerTickWithMinimumSpacing(t *testing.T) {
	sink := &timedSink{}
	q := New("test", 20*time.Millisecond, sink)

	for i := 0; i < 3; i++ {
		q.Accept(event(models.SeverityLow, "e"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Serve(ctx) }()

	require.Eventually(t, func() bool {
		events, _ := sink.snapshot()
		return len(events) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	_, times := sink.snapshot()
	for i := 1; i < len(times); i++ {
		spacing := times[i].Sub(times[i-1])
		assert.GreaterOrEqual(t, spacing, 15*time.Millisecond, "release %d arrived too soon", i)
	}
}

func TestQueue_FIFOByDefault(t *testing.T) {
	sink := &timedSink{}
	q := New("test", time.Hour, sink)

	q.Accept(event(models.SeverityLow, "first"))
	q.Accept(event(models.SeverityCritical, "second"))
	q.Accept(event(models.SeverityMedium, "third"))

	for i := 0; i < 3; i++ {
		ev, ok := q.pop()
		require.True(t, ok)
		sink.Accept(ev)
	}

	events, _ := sink.snapshot()
	assert.Equal(t, "first", description(events[0]))
	assert.Equal(t, "second", description(events[1]))
	assert.Equal(t, "third", description(events[2]))
}

func TestQueue_BySeverityReleasesMostSevereFirst(t *testing.T) {
	sink := &timedSink{}
	q := New("test", time.Hour, sink, BySeverity())

	q.Accept(event(models.SeverityLow, "low"))
	q.Accept(event(models.SeverityHigh, "high-1"))
	q.Accept(event(models.SeverityMedium, "medium"))
	q.Accept(event(models.SeverityHigh, "high-2"))

	var got []string
	for {
		ev, ok := q.pop()
		if !ok {
			break
		}
		got = append(got, description(ev))
	}

	assert.Equal(t, []string{"high-1", "high-2", "medium", "low"}, got, "ties release in arrival order")
}

func TestQueue_EvictionDropsOldestOfEqualOrLowerSeverity(t *testing.T) {
	sink := &timedSink{}
	q := New("test", time.Hour, sink, WithCapacity(3))

	q.Accept(event(models.SeverityLow, "old-low"))
	q.Accept(event(models.SeverityHigh, "old-high"))
	q.Accept(event(models.SeverityLow, "new-low"))
	require.Equal(t, 3, q.Len())

	// Full. A medium arrival evicts the oldest low, never the high.
	q.Accept(event(models.SeverityMedium, "incoming-medium"))
	assert.Equal(t, 3, q.Len())

	var got []string
	for {
		ev, ok := q.pop()
		if !ok {
			break
		}
		got = append(got, description(ev))
	}
	assert.Equal(t, []string{"old-high", "new-low", "incoming-medium"}, got)
}

func TestQueue_IncomingDroppedWhenEverythingBufferedOutranksIt(t *testing.T) {
	sink := &timedSink{}
	q := New("test", time.Hour, sink, WithCapacity(2))

	q.Accept(event(models.SeverityCritical, "crit-1"))
	q.Accept(event(models.SeverityCritical, "crit-2"))

	q.Accept(event(models.SeverityLow, "routine"))
	assert.Equal(t, 2, q.Len())

	ev, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "crit-1", description(ev))
}

func TestQueue_NeverExceedsCapacity(t *testing.T) {
	sink := &timedSink{}
	q := New("test", time.Hour, sink, WithCapacity(5))

	for i := 0; i < 100; i++ {
		q.Accept(event(models.SeverityLow, "e"))
	}
	assert.Equal(t, 5, q.Len())
}

func TestQueue_EmptyTickIsNoOp(t *testing.T) {
	sink := &timedSink{}
	q := New("test", 5*time.Millisecond, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := q.Serve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	events, _ := sink.snapshot()
	assert.Empty(t, events)
}
