// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline: source polling, deduplication, pacing and subscriber fan-out.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source Adapter Metrics
	SourceEventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_events_emitted_total",
			Help: "Total number of normalized events emitted per source",
		},
		[]string{"source", "simulated"},
	)

	SourcePollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_poll_duration_seconds",
			Help:    "Duration of upstream polls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourcePollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_poll_errors_total",
			Help: "Total number of failed upstream polls",
		},
		[]string{"source", "error_type"}, // transport, parse, rate_limited
	)

	SourceDedupSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_dedup_suppressed_total",
			Help: "Total number of items dropped as already seen",
		},
		[]string{"source"},
	)

	SourceSeenSetSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_seen_set_entries",
			Help: "Current number of keys in each source's recency set",
		},
		[]string{"source"},
	)

	SourceReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_stream_reconnects_total",
			Help: "Total number of streaming source reconnect attempts",
		},
		[]string{"source"},
	)

	// Pacing Queue Metrics
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pacing_queue_depth",
			Help: "Current number of buffered events per pacing queue",
		},
		[]string{"queue"},
	)

	QueueDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pacing_queue_dropped_total",
			Help: "Total number of events evicted from full pacing queues",
		},
		[]string{"queue"},
	)

	QueueReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pacing_queue_released_total",
			Help: "Total number of events released downstream per queue",
		},
		[]string{"queue"},
	)

	// Broadcaster Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket subscribers",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of messages fanned out to subscribers",
		},
	)

	WSSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_send_failures_total",
			Help: "Total number of failed sends that removed a subscriber",
		},
	)

	// Circuit Breaker Metrics
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_breaker_state",
			Help: "Per-source circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)
)

// RecordPoll records one poll attempt and its outcome.
func RecordPoll(source string, duration time.Duration, errType string) {
	SourcePollDuration.WithLabelValues(source).Observe(duration.Seconds())
	if errType != "" {
		SourcePollErrors.WithLabelValues(source, errType).Inc()
	}
}

// RecordEmitted records emitted events, split by live/simulated origin.
func RecordEmitted(source string, count int, simulated bool) {
	if count == 0 {
		return
	}
	label := "false"
	if simulated {
		label = "true"
	}
	SourceEventsEmitted.WithLabelValues(source, label).Add(float64(count))
}
