// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwadley/threatcast/internal/broadcast"
	"github.com/cwadley/threatcast/internal/models"
)

func testServer(t *testing.T) (*httptest.Server, *broadcast.Hub) {
	t.Helper()

	hub := broadcast.NewHub()
	hub.SetSourceLister(func() []string { return []string{"urlhaus", "rislive"} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	srv := httptest.NewServer(NewRouter(NewHandler(hub)))

	t.Cleanup(func() {
		srv.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("hub did not stop")
		}
	})

	return srv, hub
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var report models.StatusReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	assert.Equal(t, []string{"urlhaus", "rislive"}, report.Sources)
	assert.Equal(t, 0, report.Clients)
	assert.GreaterOrEqual(t, report.Uptime, 0.0)
}

func TestBanner(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestUnknownPathsGetTheBanner(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v9/whatever")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestWebSocket_WelcomeThenEvents(t *testing.T) {
	srv, hub := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome models.WireMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, models.MessageTypeWelcome, welcome.Type)

	hub.Accept(models.NewEvent(models.CategoryRansomware, models.SeverityHigh, models.RansomwarePayload{
		Group:  "lockbox",
		Victim: "example corp",
	}))

	var event models.WireMessage
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "ransomware", event.Type)

	// The subscriber count reflects the open connection.
	statusResp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer statusResp.Body.Close()
	var report models.StatusReport
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&report))
	assert.Equal(t, 1, report.Clients)
}

func TestWebSocket_InboundMessagesAreIgnored(t *testing.T) {
	srv, hub := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome models.WireMessage
	require.NoError(t, conn.ReadJSON(&welcome))

	// Whatever the client says, the stream keeps flowing.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe","data":"phishing"}`)))

	hub.Accept(models.NewEvent(models.CategoryDDoS, models.SeverityLow, models.DDoSPayload{
		TargetIP: "203.0.113.9",
		Vector:   "udp_flood",
	}))

	var event models.WireMessage
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "ddos", event.Type)
}
