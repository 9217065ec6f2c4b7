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

// NewRansomwatch defines the ransomwatch leak-site posts feed.
func NewRansomwatch(cadence time.Duration) Definition {
	return Definition{
		Name:       "ransomwatch",
		Category:   models.CategoryRansomware,
		Endpoint:   "https://raw.githubusercontent.com/joshhighet/ransomwatch/main/posts.json",
		Cadence:    cadence,
		MaxPerPoll: 8,
		Parse:      parseRansomwatch,
	}
}

type ransomwatchPost struct {
	PostTitle  string `json:"post_title"`
	GroupName  string `json:"group_name"`
	Discovered string `json:"discovered"`
}

func parseRansomwatch(body []byte) ([]Item, error) {
	var posts []ransomwatchPost
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("ransomwatch json: %w", err)
	}

	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		if p.GroupName == "" || p.PostTitle == "" {
			continue
		}

		discovered, _ := time.Parse("2006-01-02 15:04:05.000000", p.Discovered)

		payload := models.RansomwarePayload{
			Group:        p.GroupName,
			Victim:       p.PostTitle,
			DiscoveredAt: discovered,
		}

		items = append(items, Item{
			Key:   p.GroupName + "/" + p.PostTitle,
			Event: models.NewEvent(models.CategoryRansomware, models.SeverityHigh, payload),
		})
	}
	return items, nil
}
