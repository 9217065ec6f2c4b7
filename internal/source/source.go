// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package source implements the twelve feed adapters. Each adapter owns one
// upstream feed: it polls or streams on its own cadence, normalizes results,
// deduplicates against a bounded recency set, and degrades to synthetic
// output on failure. One polymorphic poller and one streamer cover all
// twelve feeds; the per-provider files supply only parsing and wiring.
package source

import (
	"errors"
	"time"

	"github.com/cwadley/threatcast/internal/models"
)

// ErrRateLimited signals an explicit provider throttling response. The poll
// cycle is skipped with no synthetic fallback, to avoid amplifying load
// against an already-throttling provider.
var ErrRateLimited = errors.New("source: provider rate limited")

// Sink receives normalized events from an adapter. Satisfied by a pacing
// queue for high-volume feeds and by the broadcaster directly for the rest.
type Sink interface {
	Accept(ev models.Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev models.Event)

// Accept implements Sink.
func (f SinkFunc) Accept(ev models.Event) { f(ev) }

// Item is one parsed upstream record: a normalized event plus the stable
// dedup key that suppresses its re-emission.
type Item struct {
	Key   string
	Event models.Event
}

// Definition parameterizes the polymorphic poller for one feed.
type Definition struct {
	// Name identifies the source in logs, metrics and the status report.
	Name string

	// Category tags every event this source emits.
	Category models.Category

	// Endpoint is the upstream URL polled each cycle.
	Endpoint string

	// Cadence is the poll interval, tuned to the provider's rate limits.
	Cadence time.Duration

	// MaxPerPoll caps new items parsed from one poll so a single response
	// cannot flood downstream.
	MaxPerPoll int

	// SimulateBatch is the synthetic batch size emitted on failure or in
	// simulate-mode. Small and bounded.
	SimulateBatch int

	// RequiresKey marks providers that need an API key. An empty APIKey on
	// such a source switches it to simulate-mode instead of failing startup.
	RequiresKey bool

	// APIKey is sent as a bearer token when present.
	APIKey string

	// Simulated forces simulate-mode regardless of key availability.
	Simulated bool

	// Parse converts one upstream response body into items. Malformed
	// records are skipped inside Parse, never returned as errors, so one
	// bad row cannot void a whole poll.
	Parse func(body []byte) ([]Item, error)

	// SeenTTL optionally expires dedup keys for time-boxed feeds.
	SeenTTL time.Duration
}

// State is a point-in-time snapshot of one adapter's health.
type State struct {
	Name                string
	Cadence             time.Duration
	BackoffDelay        time.Duration
	ConsecutiveFailures int
	LastSuccess         time.Time
	Simulated           bool
}
