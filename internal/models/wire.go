// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package models

// Wire message types beyond the twelve category tags.
const (
	MessageTypeWelcome = "welcome"
)

// WireMessage is the envelope for every text message sent to a subscriber:
// one of the twelve category tags or a control tag, plus a tag-specific record.
type WireMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// WelcomeData is sent once per connection, immediately after the upgrade.
type WelcomeData struct {
	ActiveSources []string            `json:"active_sources"`
	Subscribers   int                 `json:"subscribers"`
	Categories    map[Category]string `json:"categories"`
}

// StatusReport is returned by the plain /status endpoint.
type StatusReport struct {
	Sources []string `json:"sources"`
	Clients int      `json:"clients"`
	Uptime  float64  `json:"uptime_seconds"`
}
