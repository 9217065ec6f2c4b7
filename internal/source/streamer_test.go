// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwadley/threatcast/internal/models"
	"github.com/cwadley/threatcast/internal/simulate"
)

func TestStreamer_SimulateModeTicksSyntheticEvents(t *testing.T) {
	def := StreamDefinition{
		Name:            "certstream",
		Category:        models.CategoryCertIssued,
		Simulated:       true,
		SimulateCadence: 10 * time.Millisecond,
		SimulateBatch:   1,
	}

	sink := &collector{}
	s := NewStreamer(def, 100, simulate.New(1), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	events := sink.all()
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.True(t, ev.Simulated)
		assert.Equal(t, models.CategoryCertIssued, ev.Category)
	}
}

func TestStreamer_FailedConnectEmitsSyntheticAndBacksOff(t *testing.T) {
	def := StreamDefinition{
		Name:     "certstream",
		Category: models.CategoryCertIssued,
		URL:      "wss://unreachable.example.test/",
	}

	sink := &collector{}
	s := NewStreamer(def, 100, simulate.New(1), sink)
	s.dial = func(ctx context.Context, url string) (*websocket.Conn, error) {
		return nil, errors.New("connection refused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	// First dial fails immediately; the synthetic batch lands before the
	// one-second backoff elapses.
	require.Eventually(t, func() bool {
		return len(sink.all()) > 0
	}, time.Second, 5*time.Millisecond)

	state := s.State()
	assert.Equal(t, 1, state.ConsecutiveFailures)
	assert.GreaterOrEqual(t, state.BackoffDelay, 500*time.Millisecond)
	assert.LessOrEqual(t, state.BackoffDelay, 2*time.Second)

	for _, ev := range sink.all() {
		assert.True(t, ev.Simulated)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestStreamer_DeliversAndDeduplicatesStreamMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Same key twice, then a second key.
		conn.WriteMessage(websocket.TextMessage, []byte("alpha"))
		conn.WriteMessage(websocket.TextMessage, []byte("alpha"))
		conn.WriteMessage(websocket.TextMessage, []byte("beta"))

		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	def := StreamDefinition{
		Name:     "testsource",
		Category: models.CategoryCertIssued,
		URL:      "ws" + strings.TrimPrefix(srv.URL, "http"),
		Handle: func(data []byte) []Item {
			key := string(data)
			return []Item{{
				Key: key,
				Event: models.NewEvent(models.CategoryCertIssued, models.SeverityLow, models.CertIssuedPayload{
					CommonName:  key + ".example.test",
					Fingerprint: key,
				}),
			}}
		},
	}

	sink := &collector{}
	s := NewStreamer(def, 100, simulate.New(1), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return len(sink.all()) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	events := sink.all()
	require.Len(t, events, 2, "the duplicate key must be suppressed")
	a := events[0].Payload.(models.CertIssuedPayload)
	b := events[1].Payload.(models.CertIssuedPayload)
	assert.Equal(t, "alpha", a.Fingerprint)
	assert.Equal(t, "beta", b.Fingerprint)
}
