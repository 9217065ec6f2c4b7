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

// NewBreachFeed defines the indexed breach-dump feed. Keyed access only.
func NewBreachFeed(cadence time.Duration, apiKey string) Definition {
	return Definition{
		Name:        "breachfeed",
		Category:    models.CategoryDataBreach,
		Endpoint:    "https://api.breachfeed.example.io/v3/breaches/latest",
		Cadence:     cadence,
		MaxPerPoll:  8,
		RequiresKey: true,
		APIKey:      apiKey,
		Parse:       parseBreachFeed,
	}
}

type breachEntry struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	PwnCount    int64    `json:"pwn_count"`
	DataClasses []string `json:"data_classes"`
	AddedDate   string   `json:"added_date"`
}

func parseBreachFeed(body []byte) ([]Item, error) {
	var entries []breachEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("breachfeed json: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}

		added, _ := time.Parse(time.RFC3339, e.AddedDate)

		severity := models.SeverityMedium
		if e.PwnCount >= 10_000_000 {
			severity = models.SeverityHigh
		}

		payload := models.DataBreachPayload{
			Name:         e.Name,
			Domain:       e.Domain,
			RecordCount:  e.PwnCount,
			DataClasses:  e.DataClasses,
			DiscoveredAt: added,
		}

		items = append(items, Item{
			Key:   e.Name,
			Event: models.NewEvent(models.CategoryDataBreach, severity, payload),
		})
	}
	return items, nil
}
