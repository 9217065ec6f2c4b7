// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/cwadley/threatcast/internal/dedup"
	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/metrics"
	"github.com/cwadley/threatcast/internal/models"
	"github.com/cwadley/threatcast/internal/simulate"
)

// StreamDefinition parameterizes the streamer for one persistent-relay feed.
type StreamDefinition struct {
	// Name identifies the source in logs, metrics and the status report.
	Name string

	// Category tags every event this source emits.
	Category models.Category

	// URL is the upstream WebSocket endpoint.
	URL string

	// SubscribeMessage, when set, is sent once after every connect.
	SubscribeMessage []byte

	// Handle converts one inbound message into zero or more items.
	// Malformed messages yield nothing; the stream continues.
	Handle func(data []byte) []Item

	// SimulateCadence is the synthetic emission interval used in
	// simulate-mode and defaults to 5s.
	SimulateCadence time.Duration

	// SimulateBatch is the synthetic batch size, small and bounded.
	SimulateBatch int

	// Simulated forces simulate-mode regardless of connectivity.
	Simulated bool
}

// Streamer runs one streaming feed: Connecting -> Streaming -> Disconnected
// -> Connecting with exponential backoff (1s doubling to 60s), reset on a
// successful reconnect. It implements suture.Service.
type Streamer struct {
	def  StreamDefinition
	seen *dedup.SeenSet
	gen  *simulate.Generator
	sink Sink

	// dial is swappable for tests.
	dial func(ctx context.Context, url string) (*websocket.Conn, error)

	mu                  sync.Mutex
	backoffDelay        time.Duration
	consecutiveFailures int
	lastSuccess         time.Time
}

const (
	streamInitialBackoff = 1 * time.Second
	streamMaxBackoff     = 60 * time.Second
)

// NewStreamer builds a streaming adapter.
func NewStreamer(def StreamDefinition, seenCap int, gen *simulate.Generator, sink Sink) *Streamer {
	if def.SimulateCadence <= 0 {
		def.SimulateCadence = 5 * time.Second
	}
	if def.SimulateBatch <= 0 {
		def.SimulateBatch = 1
	}

	return &Streamer{
		def:  def,
		seen: dedup.NewSeenSet(seenCap, 0),
		gen:  gen,
		sink: sink,
		dial: func(ctx context.Context, url string) (*websocket.Conn, error) {
			dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
			conn, resp, err := dialer.DialContext(ctx, url, nil)
			if resp != nil {
				resp.Body.Close()
			}
			return conn, err
		},
	}
}

// Name returns the source name.
func (s *Streamer) Name() string { return s.def.Name }

// String implements fmt.Stringer for suture logging.
func (s *Streamer) String() string { return "source-" + s.def.Name }

// Simulated reports whether this adapter runs without live upstream data.
func (s *Streamer) Simulated() bool { return s.def.Simulated }

// State returns a snapshot of the adapter's health.
func (s *Streamer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Name:                s.def.Name,
		BackoffDelay:        s.backoffDelay,
		ConsecutiveFailures: s.consecutiveFailures,
		LastSuccess:         s.lastSuccess,
		Simulated:           s.def.Simulated,
	}
}

// Serve implements suture.Service. In simulate-mode it ticks synthetic
// events; otherwise it holds the relay connection open, reconnecting with
// capped exponential backoff on every disconnect.
func (s *Streamer) Serve(ctx context.Context) error {
	if s.def.Simulated {
		return s.serveSimulated(ctx)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = streamInitialBackoff
	bo.MaxInterval = streamMaxBackoff
	bo.MaxElapsedTime = 0 // never give up
	bo.Reset()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := s.dial(ctx, s.def.URL)
		if err != nil {
			delay := bo.NextBackOff()
			s.recordDisconnect(delay)
			metrics.SourceReconnects.WithLabelValues(s.def.Name).Inc()
			logging.Warn().
				Err(err).
				Str("source", s.def.Name).
				Dur("retry_in", delay).
				Msg("stream connect failed, emitting synthetic batch")

			// The stream must not stall while the relay is unreachable.
			s.emitSynthetic()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		bo.Reset()
		s.recordConnect()
		logging.Info().Str("source", s.def.Name).Msg("stream connected")

		s.readLoop(ctx, conn)

		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.SourceReconnects.WithLabelValues(s.def.Name).Inc()
	}
}

// readLoop consumes messages until the connection drops or ctx is canceled.
func (s *Streamer) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	if len(s.def.SubscribeMessage) > 0 {
		if err := conn.WriteMessage(websocket.TextMessage, s.def.SubscribeMessage); err != nil {
			logging.Warn().Err(err).Str("source", s.def.Name).Msg("subscribe message failed")
			return
		}
	}

	// Unblock the blocking read when the context is canceled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logging.Warn().Err(err).Str("source", s.def.Name).Msg("stream disconnected")
			}
			return
		}

		s.mu.Lock()
		s.lastSuccess = time.Now()
		s.mu.Unlock()

		emitted := 0
		for _, item := range s.def.Handle(data) {
			if item.Key != "" {
				if s.seen.Seen(item.Key) {
					metrics.SourceDedupSuppressed.WithLabelValues(s.def.Name).Inc()
					continue
				}
				s.seen.Mark(item.Key)
			}
			s.sink.Accept(item.Event)
			emitted++
		}
		metrics.RecordEmitted(s.def.Name, emitted, false)
	}
}

func (s *Streamer) serveSimulated(ctx context.Context) error {
	s.emitSynthetic()

	ticker := time.NewTicker(s.def.SimulateCadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug().Str("source", s.def.Name).Msg("streamer stopped")
			return ctx.Err()
		case <-ticker.C:
			s.emitSynthetic()
		}
	}
}

func (s *Streamer) emitSynthetic() {
	batch := s.gen.Batch(s.def.Category, s.def.SimulateBatch)
	for _, ev := range batch {
		s.sink.Accept(ev)
	}
	metrics.RecordEmitted(s.def.Name, len(batch), true)
}

func (s *Streamer) recordDisconnect(delay time.Duration) {
	s.mu.Lock()
	s.backoffDelay = delay
	s.consecutiveFailures++
	s.mu.Unlock()
}

func (s *Streamer) recordConnect() {
	s.mu.Lock()
	s.backoffDelay = 0
	s.consecutiveFailures = 0
	s.lastSuccess = time.Now()
	s.mu.Unlock()
}
