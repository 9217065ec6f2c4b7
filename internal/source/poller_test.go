// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/cwadley/threatcast/internal/models"
	"github.com/cwadley/threatcast/internal/simulate"
)

// collector is a Sink that records everything it receives.
type collector struct {
	mu     sync.Mutex
	events []models.Event
}

func (c *collector) Accept(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) all() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Event(nil), c.events...)
}

func textDefinition(endpoint string) Definition {
	return Definition{
		Name:       "testfeed",
		Category:   models.CategoryPhishing,
		Endpoint:   endpoint,
		Cadence:    time.Hour,
		MaxPerPoll: 10,
		Parse:      parseOpenPhish,
	}
}

func TestPoller_IdenticalSnapshotEmitsNothingOnSecondPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("https://phish.example.test/login\nhttps://phish.example.test/verify\n"))
	}))
	defer srv.Close()

	sink := &collector{}
	p := NewPoller(textDefinition(srv.URL), 100, time.Second, simulate.New(1), sink)

	p.poll(context.Background())
	require.Len(t, sink.all(), 2)

	p.poll(context.Background())
	assert.Len(t, sink.all(), 2, "an unchanged upstream snapshot must add nothing")
}

func TestPoller_TransportFailureDegradesToSynthetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := &collector{}
	p := NewPoller(textDefinition(srv.URL), 100, time.Second, simulate.New(1), sink)

	p.poll(context.Background())

	events := sink.all()
	require.NotEmpty(t, events, "a failed poll must still produce events")
	for _, ev := range events {
		assert.True(t, ev.Simulated)
		assert.Equal(t, models.CategoryPhishing, ev.Category)
	}
	assert.Equal(t, 1, p.State().ConsecutiveFailures)
}

func TestPoller_ProviderThrottlingSkipsCycleWithoutSynthetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sink := &collector{}
	p := NewPoller(textDefinition(srv.URL), 100, time.Second, simulate.New(1), sink)

	p.poll(context.Background())

	assert.Empty(t, sink.all(), "throttled cycles must not add synthetic load")
	assert.Equal(t, 0, p.State().ConsecutiveFailures, "throttling is not a failure")
}

func TestPoller_ThrottlingStreakNeverYieldsSynthetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sink := &collector{}
	p := NewPoller(textDefinition(srv.URL), 100, time.Second, simulate.New(1), sink)
	// Unthrottle the courtesy limiter so every cycle reaches the provider
	// and the streak exercises the circuit breaker.
	p.fetcher.limiter = rate.NewLimiter(rate.Inf, 0)

	for i := 0; i < 10; i++ {
		p.poll(context.Background())
	}

	assert.Empty(t, sink.all(), "a sustained 429 streak must never fabricate events")
	assert.Equal(t, 0, p.State().ConsecutiveFailures)
}

func TestPoller_MissingRequiredKeyRunsSimulated(t *testing.T) {
	def := textDefinition("https://unreachable.example.test/feed")
	def.RequiresKey = true

	sink := &collector{}
	p := NewPoller(def, 100, time.Second, simulate.New(1), sink)

	require.True(t, p.Simulated())

	p.poll(context.Background())

	events := sink.all()
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.True(t, ev.Simulated)
	}
}

func TestPoller_MaxPerPollCapsEmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 50; i++ {
			w.Write([]byte("https://phish.example.test/page"))
			w.Write([]byte{byte('0' + i%10), '\n'})
		}
	}))
	defer srv.Close()

	def := textDefinition(srv.URL)
	def.MaxPerPoll = 3

	sink := &collector{}
	p := NewPoller(def, 100, time.Second, simulate.New(1), sink)

	p.poll(context.Background())

	assert.Len(t, sink.all(), 3)
}

func TestPoller_ServeStopsOnCancel(t *testing.T) {
	def := textDefinition("https://unreachable.example.test/feed")
	def.RequiresKey = true
	def.Cadence = 10 * time.Millisecond

	sink := &collector{}
	p := NewPoller(def, 100, time.Second, simulate.New(1), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	assert.NotEmpty(t, sink.all())
}
