// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package api

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/cwadley/threatcast/internal/broadcast"
	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/models"
)

// Handler serves the HTTP endpoints.
type Handler struct {
	hub       *broadcast.Hub
	startedAt time.Time
	upgrader  websocket.Upgrader
}

// NewHandler builds the handler around the broadcast hub.
func NewHandler(hub *broadcast.Hub) *Handler {
	return &Handler{
		hub:       hub,
		startedAt: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			// The feed is public and read-only; any origin may subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// Status reports the active sources, subscriber count and uptime.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	report := models.StatusReport{
		Sources: h.hub.ActiveSources(),
		Clients: h.hub.ClientCount(),
		Uptime:  time.Since(h.startedAt).Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logging.Error().Err(err).Msg("status encoding failed")
	}
}

// WebSocket upgrades the connection and hands it to the hub. The welcome
// message is the hub's responsibility, sent as part of registration.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	client := broadcast.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}

// Banner serves a plain-text landing page for anyone hitting the root with
// a browser or curl.
func (h *Handler) Banner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "threatcast - live threat feed")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  /ws       live event stream (websocket)")
	fmt.Fprintln(w, "  /status   active sources and subscriber count")
	fmt.Fprintln(w, "  /healthz  liveness probe")
	fmt.Fprintln(w, "  /metrics  prometheus metrics")
}
