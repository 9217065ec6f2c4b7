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

// NewDDoSMon defines the volumetric attack monitor feed. Keyed access only.
func NewDDoSMon(cadence time.Duration, apiKey string) Definition {
	return Definition{
		Name:        "ddosmon",
		Category:    models.CategoryDDoS,
		Endpoint:    "https://api.ddosmon.example.net/v1/attacks/active",
		Cadence:     cadence,
		MaxPerPoll:  12,
		RequiresKey: true,
		APIKey:      apiKey,
		// Attacks persist across polls; expire keys so a long-running
		// attack resurfaces periodically rather than once.
		SeenTTL: 30 * time.Minute,
		Parse:   parseDDoSMon,
	}
}

type ddosmonResponse struct {
	Attacks []ddosmonAttack `json:"attacks"`
}

type ddosmonAttack struct {
	TargetIP   string  `json:"target_ip"`
	TargetPort int     `json:"target_port"`
	Vector     string  `json:"vector"`
	Gbps       float64 `json:"gbps"`
	Country    string  `json:"country"`
}

func parseDDoSMon(body []byte) ([]Item, error) {
	var resp ddosmonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ddosmon json: %w", err)
	}

	items := make([]Item, 0, len(resp.Attacks))
	for _, a := range resp.Attacks {
		if a.TargetIP == "" || a.Vector == "" {
			continue
		}

		severity := models.SeverityLow
		switch {
		case a.Gbps >= 100:
			severity = models.SeverityHigh
		case a.Gbps >= 10:
			severity = models.SeverityMedium
		}

		payload := models.DDoSPayload{
			TargetIP:   a.TargetIP,
			TargetPort: a.TargetPort,
			Vector:     a.Vector,
			Gbps:       a.Gbps,
			Country:    a.Country,
		}

		items = append(items, Item{
			Key:   a.TargetIP + "/" + a.Vector,
			Event: models.NewEvent(models.CategoryDDoS, severity, payload),
		})
	}
	return items, nil
}
