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

// NewDefacement defines the defacement archive feed. Keyed access only.
func NewDefacement(cadence time.Duration, apiKey string) Definition {
	return Definition{
		Name:        "defacement",
		Category:    models.CategoryDefacement,
		Endpoint:    "https://api.defaced.example.org/v2/recent",
		Cadence:     cadence,
		MaxPerPoll:  10,
		RequiresKey: true,
		APIKey:      apiKey,
		Parse:       parseDefacement,
	}
}

type defacementEntry struct {
	URL      string `json:"url"`
	Attacker string `json:"attacker"`
	Country  string `json:"country"`
}

func parseDefacement(body []byte) ([]Item, error) {
	var entries []defacementEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("defacement json: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.URL == "" {
			continue
		}

		payload := models.DefacementPayload{
			URL:      e.URL,
			Attacker: e.Attacker,
			Country:  e.Country,
		}

		items = append(items, Item{
			Key:   e.URL,
			Event: models.NewEvent(models.CategoryDefacement, models.SeverityMedium, payload),
		})
	}
	return items, nil
}
