// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/cwadley/threatcast/internal/models"
)

// NewRISLive defines the RIPE RIS Live BGP update stream. Every announced
// prefix is graded by the classifier; routine announcements are thinned
// before they ever reach the queue.
func NewRISLive(classifier *BGPClassifier) StreamDefinition {
	return StreamDefinition{
		Name:             "rislive",
		Category:         models.CategoryBGPAnomaly,
		URL:              "wss://ris-live.ripe.net/v1/ws/?client=threatcast",
		SubscribeMessage: []byte(`{"type":"ris_subscribe","data":{"type":"UPDATE"}}`),
		Handle:           risHandler(classifier),
		SimulateBatch:    2,
	}
}

type risEnvelope struct {
	Type string    `json:"type"`
	Data risUpdate `json:"data"`
}

type risUpdate struct {
	PeerASN       string            `json:"peer_asn"`
	Host          string            `json:"host"`
	Type          string            `json:"type"`
	Path          []json.RawMessage `json:"path"`
	Announcements []struct {
		Prefixes []string `json:"prefixes"`
	} `json:"announcements"`
}

func risHandler(classifier *BGPClassifier) func(data []byte) []Item {
	return func(data []byte) []Item {
		var env risEnvelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type != "ris_message" {
			return nil
		}
		if env.Data.Type != "UPDATE" {
			return nil
		}

		path := decodeASPath(env.Data.Path)
		peerASN := parseASN(env.Data.PeerASN)

		var items []Item
		for _, ann := range env.Data.Announcements {
			for _, prefix := range ann.Prefixes {
				severity, payload, keep := classifier.Classify(prefix, path, peerASN, env.Data.Host)
				if !keep {
					continue
				}
				items = append(items, Item{
					Key:   fmt.Sprintf("%s/%d/%s", prefix, payload.OriginASN, payload.Kind),
					Event: models.NewEvent(models.CategoryBGPAnomaly, severity, payload),
				})
			}
		}
		return items
	}
}

// decodeASPath flattens a RIS path. Plain ASNs are kept in order; AS_SET
// segments arrive as nested arrays and are skipped, since set membership
// carries no ordering the heuristics could use.
func decodeASPath(raw []json.RawMessage) []uint32 {
	path := make([]uint32, 0, len(raw))
	for _, seg := range raw {
		var asn uint32
		if err := json.Unmarshal(seg, &asn); err != nil {
			continue
		}
		path = append(path, asn)
	}
	return path
}

func parseASN(s string) uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
