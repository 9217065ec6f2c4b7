// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"bufio"
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/cwadley/threatcast/internal/models"
)

// NewOpenPhish defines the OpenPhish community feed: plain text, one
// confirmed phishing URL per line.
func NewOpenPhish(cadence time.Duration) Definition {
	return Definition{
		Name:       "openphish",
		Category:   models.CategoryPhishing,
		Endpoint:   "https://openphish.com/feed.txt",
		Cadence:    cadence,
		MaxPerPoll: 15,
		Parse:      parseOpenPhish,
	}
}

func parseOpenPhish(body []byte) ([]Item, error) {
	var items []Item

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Host == "" {
			continue
		}

		payload := models.PhishingPayload{
			URL:          line,
			TargetedName: guessBrand(u.Hostname()),
		}

		items = append(items, Item{
			Key:   line,
			Event: models.NewEvent(models.CategoryPhishing, models.SeverityMedium, payload),
		})
	}
	return items, scanner.Err()
}

// guessBrand spots a handful of frequently impersonated brands in the
// phishing hostname. Best effort only; unknown hosts yield an empty brand.
func guessBrand(host string) string {
	host = strings.ToLower(host)
	for _, brand := range []string{"paypal", "apple", "microsoft", "amazon", "netflix", "facebook", "google", "dhl"} {
		if strings.Contains(host, brand) {
			return brand
		}
	}
	return ""
}
