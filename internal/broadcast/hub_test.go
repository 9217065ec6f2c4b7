// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package broadcast

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwadley/threatcast/internal/models"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	hub := NewHub()
	hub.SetSourceLister(func() []string { return []string{"urlhaus", "openphish"} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("hub did not stop")
		}
	})

	return hub, cancel
}

func receive(t *testing.T, c *Client) models.WireMessage {
	t.Helper()

	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg models.WireMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return models.WireMessage{}
	}
}

func TestHub_WelcomeMessageOnRegister(t *testing.T) {
	hub, _ := startHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client

	msg := receive(t, client)
	assert.Equal(t, models.MessageTypeWelcome, msg.Type)

	raw, err := json.Marshal(msg.Data)
	require.NoError(t, err)
	var welcome models.WelcomeData
	require.NoError(t, json.Unmarshal(raw, &welcome))

	assert.Equal(t, []string{"urlhaus", "openphish"}, welcome.ActiveSources)
	assert.Equal(t, 1, welcome.Subscribers)
	assert.Len(t, welcome.Categories, 12)
}

func TestHub_EventsFanOutToEverySubscriber(t *testing.T) {
	hub, _ := startHub(t)

	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	hub.Register <- a
	hub.Register <- b
	receive(t, a) // welcomes
	receive(t, b)

	hub.Accept(models.NewEvent(models.CategoryPhishing, models.SeverityMedium, models.PhishingPayload{
		URL: "https://phish.example.test/",
	}))

	msgA := receive(t, a)
	msgB := receive(t, b)
	assert.Equal(t, "phishing", msgA.Type)
	assert.Equal(t, "phishing", msgB.Type)
}

func TestHub_SlowSubscriberIsRemoved(t *testing.T) {
	hub := NewHub()

	client := NewClient(hub, nil)
	hub.clients[client] = true
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("{}")
	}

	hub.fanOut([]byte(`{"type":"phishing"}`))

	assert.Equal(t, 0, hub.ClientCount(), "a subscriber with a full buffer must be dropped")

	// The channel was closed by the hub.
	drained := 0
	for range client.send {
		drained++
	}
	assert.Equal(t, cap(client.send), drained)
}

func TestHub_ShutdownClosesSubscribers(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil)
	hub.Register <- client
	receive(t, client)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// Closed channel drains immediately.
	for range client.send {
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_AcceptNeverBlocksProducer(t *testing.T) {
	hub := NewHub() // not running, channel fills up

	ev := models.NewEvent(models.CategoryDDoS, models.SeverityLow, models.DDoSPayload{TargetIP: "203.0.113.1"})
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.Accept(ev)
	}
	// Reaching here without deadlock is the assertion.
	assert.Equal(t, cap(hub.broadcast), len(hub.broadcast))
}

func TestHub_ActiveSourcesWithoutListerIsEmpty(t *testing.T) {
	hub := NewHub()
	assert.Empty(t, hub.ActiveSources())
}
