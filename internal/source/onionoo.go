// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cwadley/threatcast/internal/models"
)

// NewOnionoo defines the Tor network status feed, limited to recently seen
// relays so each poll reflects network churn rather than the full consensus.
func NewOnionoo(cadence time.Duration) Definition {
	return Definition{
		Name:       "onionoo",
		Category:   models.CategoryTorRelay,
		Endpoint:   "https://onionoo.torproject.org/details?type=relay&running=true&order=-first_seen&limit=50",
		Cadence:    cadence,
		MaxPerPoll: 25,
		Parse:      parseOnionoo,
	}
}

type onionooResponse struct {
	Relays []onionooRelay `json:"relays"`
}

type onionooRelay struct {
	Nickname    string   `json:"nickname"`
	Fingerprint string   `json:"fingerprint"`
	ORAddresses []string `json:"or_addresses"`
	Country     string   `json:"country"`
	Flags       []string `json:"flags"`
	Bandwidth   int64    `json:"advertised_bandwidth"`
}

func parseOnionoo(body []byte) ([]Item, error) {
	var resp onionooResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("onionoo json: %w", err)
	}

	items := make([]Item, 0, len(resp.Relays))
	for _, r := range resp.Relays {
		if r.Fingerprint == "" {
			continue
		}

		severity := models.SeverityLow
		for _, flag := range r.Flags {
			if flag == "Exit" {
				severity = models.SeverityMedium
				break
			}
		}

		payload := models.TorRelayPayload{
			Fingerprint: r.Fingerprint,
			Nickname:    r.Nickname,
			IPAddress:   relayAddress(r.ORAddresses),
			Country:     strings.ToUpper(r.Country),
			Flags:       r.Flags,
			Bandwidth:   r.Bandwidth,
		}

		items = append(items, Item{
			Key:   r.Fingerprint,
			Event: models.NewEvent(models.CategoryTorRelay, severity, payload),
		})
	}
	return items, nil
}

// relayAddress extracts the host from the first OR address, which is
// formatted host:port.
func relayAddress(addrs []string) string {
	if len(addrs) == 0 {
		return ""
	}
	addr := addrs[0]
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return strings.Trim(addr[:i], "[]")
	}
	return addr
}
