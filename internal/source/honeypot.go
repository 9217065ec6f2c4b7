// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cwadley/threatcast/internal/models"
)

// NewHoneypot defines the hosted honeypot network's SSH brute-force feed.
// The provider requires an API key; without one the adapter runs in
// simulate-mode.
func NewHoneypot(cadence time.Duration, apiKey string) Definition {
	return Definition{
		Name:        "honeypot",
		Category:    models.CategorySSHBruteforce,
		Endpoint:    "https://api.honeynet.example.com/v1/events/ssh",
		Cadence:     cadence,
		MaxPerPoll:  30,
		RequiresKey: true,
		APIKey:      apiKey,
		// Attackers recycle addresses; let keys age out so a returning
		// address surfaces again.
		SeenTTL: time.Hour,
		Parse:   parseHoneypot,
	}
}

type honeypotResponse struct {
	Events []honeypotEvent `json:"events"`
}

type honeypotEvent struct {
	SourceIP string `json:"src_ip"`
	Country  string `json:"country"`
	Username string `json:"username"`
	Password string `json:"password"`
	Sensor   string `json:"sensor"`
	Attempts int    `json:"attempts"`
}

func parseHoneypot(body []byte) ([]Item, error) {
	var resp honeypotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("honeypot json: %w", err)
	}

	items := make([]Item, 0, len(resp.Events))
	for _, e := range resp.Events {
		if e.SourceIP == "" {
			continue
		}

		severity := models.SeverityLow
		if e.Attempts >= 100 {
			severity = models.SeverityMedium
		}

		payload := models.SSHBruteforcePayload{
			SourceIP:   e.SourceIP,
			Country:    e.Country,
			Username:   e.Username,
			Password:   e.Password,
			SensorName: e.Sensor,
			Attempts:   e.Attempts,
		}

		items = append(items, Item{
			Key:   e.SourceIP,
			Event: models.NewEvent(models.CategorySSHBruteforce, severity, payload),
		})
	}
	return items, nil
}
