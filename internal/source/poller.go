// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cwadley/threatcast/internal/dedup"
	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/metrics"
	"github.com/cwadley/threatcast/internal/simulate"
)

// Poller runs one polling feed: Idle -> Polling -> {Success, Failure} -> Idle
// after a cadence delay, with Failure degrading to a synthetic batch so the
// stream never stalls. It implements suture.Service.
type Poller struct {
	def     Definition
	fetcher *Fetcher
	seen    *dedup.SeenSet
	gen     *simulate.Generator
	sink    Sink

	mu                  sync.Mutex
	consecutiveFailures int
	lastSuccess         time.Time
	simulated           bool
}

// NewPoller builds a polling adapter. A source that requires an API key and
// has none runs entirely in simulate-mode; everything else about its
// lifecycle is unchanged.
func NewPoller(def Definition, seenCap int, fetchTimeout time.Duration, gen *simulate.Generator, sink Sink) *Poller {
	if def.MaxPerPoll <= 0 {
		def.MaxPerPoll = 10
	}
	if def.SimulateBatch <= 0 {
		def.SimulateBatch = 2
	}

	return &Poller{
		def:       def,
		fetcher:   NewFetcher(def.Name, def.APIKey, fetchTimeout),
		seen:      dedup.NewSeenSet(seenCap, def.SeenTTL),
		gen:       gen,
		sink:      sink,
		simulated: def.Simulated || (def.RequiresKey && def.APIKey == ""),
	}
}

// Name returns the source name.
func (p *Poller) Name() string { return p.def.Name }

// String implements fmt.Stringer for suture logging.
func (p *Poller) String() string { return "source-" + p.def.Name }

// Simulated reports whether this adapter runs without live upstream data.
func (p *Poller) Simulated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.simulated
}

// State returns a snapshot of the adapter's health.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Name:                p.def.Name,
		Cadence:             p.def.Cadence,
		ConsecutiveFailures: p.consecutiveFailures,
		LastSuccess:         p.lastSuccess,
		Simulated:           p.simulated,
	}
}

// Serve implements suture.Service: poll immediately, then on every cadence
// tick until the context is canceled. Cancellation is cooperative; each
// cycle is short-lived because every fetch carries a bounded timeout.
func (p *Poller) Serve(ctx context.Context) error {
	p.poll(ctx)

	ticker := time.NewTicker(p.def.Cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug().Str("source", p.def.Name).Msg("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs one cycle. Failures are recorded, never escalated: the only
// outcomes are emitted live events, an emitted synthetic batch, or a
// deliberately skipped cycle on provider throttling.
func (p *Poller) poll(ctx context.Context) {
	if p.Simulated() {
		p.emitSynthetic()
		return
	}

	start := time.Now()
	body, err := p.fetcher.Fetch(ctx, p.def.Endpoint)

	switch {
	case errors.Is(err, ErrRateLimited):
		metrics.RecordPoll(p.def.Name, time.Since(start), "rate_limited")
		logging.Debug().Str("source", p.def.Name).Msg("provider throttling, skipping cycle")
		return

	case err != nil:
		metrics.RecordPoll(p.def.Name, time.Since(start), "transport")
		p.recordFailure()
		logging.Warn().Err(err).Str("source", p.def.Name).Msg("poll failed, emitting synthetic batch")
		p.emitSynthetic()
		return
	}

	items, err := p.def.Parse(body)
	if err != nil {
		metrics.RecordPoll(p.def.Name, time.Since(start), "parse")
		p.recordFailure()
		logging.Warn().Err(err).Str("source", p.def.Name).Msg("unparseable response, emitting synthetic batch")
		p.emitSynthetic()
		return
	}

	metrics.RecordPoll(p.def.Name, time.Since(start), "")
	p.recordSuccess()

	emitted := 0
	for _, item := range items {
		if emitted >= p.def.MaxPerPoll {
			break
		}
		if p.seen.Seen(item.Key) {
			metrics.SourceDedupSuppressed.WithLabelValues(p.def.Name).Inc()
			continue
		}
		p.sink.Accept(item.Event)
		p.seen.Mark(item.Key)
		emitted++
	}

	metrics.RecordEmitted(p.def.Name, emitted, false)
	metrics.SourceSeenSetSize.WithLabelValues(p.def.Name).Set(float64(p.seen.Len()))

	logging.Debug().
		Str("source", p.def.Name).
		Int("parsed", len(items)).
		Int("emitted", emitted).
		Msg("poll completed")
}

// emitSynthetic publishes a small bounded batch of synthetic events.
func (p *Poller) emitSynthetic() {
	batch := p.gen.Batch(p.def.Category, p.def.SimulateBatch)
	for _, ev := range batch {
		p.sink.Accept(ev)
	}
	metrics.RecordEmitted(p.def.Name, len(batch), true)
}

func (p *Poller) recordFailure() {
	p.mu.Lock()
	p.consecutiveFailures++
	p.mu.Unlock()
}

func (p *Poller) recordSuccess() {
	p.mu.Lock()
	p.consecutiveFailures = 0
	p.lastSuccess = time.Now()
	p.mu.Unlock()
}
