// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package broadcast fans normalized events out to WebSocket subscribers.
// Every subscriber receives every event; there is no per-client filtering
// and no retention, a subscriber joining mid-stream sees only what arrives
// after its welcome message.
package broadcast

import (
	"context"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/metrics"
	"github.com/cwadley/threatcast/internal/models"
)

// Hub maintains the set of active subscribers and fans events out to them.
// Each event is serialized exactly once regardless of subscriber count.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// sourceNames reports the active source list for welcome messages and
	// the status endpoint. Set once at wiring time, before Run.
	sourceNames func() []string
}

// NewHub creates a hub. sourceNames may be nil until SetSourceLister runs.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// SetSourceLister installs the provider of the active source list. Called
// once during pipeline wiring, before the hub starts serving.
func (h *Hub) SetSourceLister(fn func() []string) {
	h.sourceNames = fn
}

// Accept serializes one event and queues it for fan-out. It never blocks a
// producer: when the broadcast channel is full the event is dropped and
// counted, the same policy applied to individual slow subscribers.
func (h *Hub) Accept(ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error().Err(err).Str("category", string(ev.Category)).Msg("event serialization failed")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		metrics.WSSendFailures.Inc()
		logging.Warn().Str("category", string(ev.Category)).Msg("broadcast channel full, dropping event")
	}
}

// RunWithContext runs the fan-out loop until the context is canceled, then
// closes every subscriber and returns ctx.Err(). Designed for suture
// supervision.
//
// Lifecycle events take priority over pending broadcasts so the client set
// is always settled before a message fans out. Go's select picks randomly
// among ready channels; the staged selects below impose the ordering.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case data := <-h.broadcast:
			h.fanOut(data)
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (h *Hub) String() string { return "broadcast-hub" }

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ActiveSources returns the current source list, empty when the lister is
// not yet wired.
func (h *Hub) ActiveSources() []string {
	if h.sourceNames == nil {
		return []string{}
	}
	return h.sourceNames()
}

// addClient registers a subscriber and sends its welcome message.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("subscriber connected")

	welcome := models.WireMessage{
		Type: models.MessageTypeWelcome,
		Data: models.WelcomeData{
			ActiveSources: h.ActiveSources(),
			Subscribers:   total,
			Categories:    models.CategoryDescriptions,
		},
	}
	data, err := json.Marshal(welcome)
	if err != nil {
		logging.Error().Err(err).Msg("welcome serialization failed")
		return
	}

	select {
	case client.send <- data:
	default:
		// A subscriber that cannot take the welcome will not take the
		// stream either.
		h.removeClient(client)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("subscriber disconnected")
}

// fanOut delivers one pre-serialized event to every subscriber in client-ID
// order. A subscriber with a full send buffer is removed rather than allowed
// to stall the others.
func (h *Hub) fanOut(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- data:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSSendFailures.Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("removing slow subscriber")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

// shutdown closes every subscriber in ID order and logs the result. Context
// cancellation is the normal stop path, not an error.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "broadcast-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("broadcast hub stopped")
}
