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

// NewFeodo defines the Feodo Tracker botnet C2 feed.
func NewFeodo(cadence time.Duration) Definition {
	return Definition{
		Name:       "feodo",
		Category:   models.CategoryBotnetC2,
		Endpoint:   "https://feodotracker.abuse.ch/downloads/ipblocklist.json",
		Cadence:    cadence,
		MaxPerPoll: 10,
		Parse:      parseFeodo,
	}
}

type feodoEntry struct {
	IPAddress string `json:"ip_address"`
	Port      int    `json:"port"`
	Status    string `json:"status"`
	Malware   string `json:"malware"`
	Country   string `json:"country"`
	FirstSeen string `json:"first_seen_utc"`
}

func parseFeodo(body []byte) ([]Item, error) {
	var entries []feodoEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("feodo json: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.IPAddress == "" {
			continue
		}

		firstSeen, _ := time.Parse("2006-01-02 15:04:05", e.FirstSeen)

		severity := models.SeverityHigh
		if e.Status == "offline" {
			severity = models.SeverityMedium
		}

		payload := models.BotnetC2Payload{
			IPAddress: e.IPAddress,
			Port:      e.Port,
			Malware:   e.Malware,
			Country:   e.Country,
			FirstSeen: firstSeen,
		}

		items = append(items, Item{
			Key:   fmt.Sprintf("%s:%d", e.IPAddress, e.Port),
			Event: models.NewEvent(models.CategoryBotnetC2, severity, payload),
		})
	}
	return items, nil
}
