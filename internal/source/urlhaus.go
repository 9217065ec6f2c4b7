// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cwadley/threatcast/internal/models"
)

// NewURLhaus defines the URLhaus recent-additions feed. The feed is CSV with
// comment lines; columns are id, dateadded, url, url_status, last_online,
// threat, tags, urlhaus_link, reporter.
func NewURLhaus(cadence time.Duration) Definition {
	return Definition{
		Name:       "urlhaus",
		Category:   models.CategoryMalwareURL,
		Endpoint:   "https://urlhaus.abuse.ch/downloads/csv_recent/",
		Cadence:    cadence,
		MaxPerPoll: 20,
		Parse:      parseURLhaus,
	}
}

func parseURLhaus(body []byte) ([]Item, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.Comment = '#'
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("urlhaus csv: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		if len(row) < 9 {
			continue
		}

		rawURL := row[2]
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			continue
		}

		firstSeen, _ := time.Parse("2006-01-02 15:04:05", row[1])

		severity := models.SeverityMedium
		if row[3] == "online" {
			severity = models.SeverityHigh
		}

		payload := models.MalwareURLPayload{
			URL:       rawURL,
			Host:      u.Hostname(),
			Threat:    row[5],
			Reporter:  row[8],
			FirstSeen: firstSeen,
		}
		if row[6] != "" {
			payload.Tags = splitTags(row[6])
		}

		items = append(items, Item{
			Key:   rawURL,
			Event: models.NewEvent(models.CategoryMalwareURL, severity, payload),
		})
	}
	return items, nil
}

// splitTags splits the comma-separated tag column, dropping empties.
func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
