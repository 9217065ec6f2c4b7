// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package models defines the normalized event types flowing through the
// Threatcast pipeline and the wire messages served to subscribers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies which feed produced an event. The category fully
// determines the shape of the event payload.
type Category string

// The twelve feed categories.
const (
	CategoryMalwareURL    Category = "malware_url"
	CategoryPhishing      Category = "phishing"
	CategoryBotnetC2      Category = "botnet_c2"
	CategorySSHBruteforce Category = "ssh_bruteforce"
	CategoryBGPAnomaly    Category = "bgp_anomaly"
	CategoryCertIssued    Category = "cert_issued"
	CategoryRansomware    Category = "ransomware"
	CategoryDefacement    Category = "defacement"
	CategoryDDoS          Category = "ddos"
	CategoryTorRelay      Category = "tor_relay"
	CategoryVulnerability Category = "vulnerability"
	CategoryDataBreach    Category = "data_breach"
)

// Categories lists every category in a fixed order. The order matches the
// supervisor's documented startup order.
var Categories = []Category{
	CategoryMalwareURL,
	CategorySSHBruteforce,
	CategoryTorRelay,
	CategoryBGPAnomaly,
	CategoryCertIssued,
	CategoryPhishing,
	CategoryBotnetC2,
	CategoryRansomware,
	CategoryDefacement,
	CategoryDDoS,
	CategoryVulnerability,
	CategoryDataBreach,
}

// CategoryDescriptions maps each category to a human-readable description,
// reported once per connection in the welcome message.
var CategoryDescriptions = map[Category]string{
	CategoryMalwareURL:    "Newly observed malware distribution URLs",
	CategoryPhishing:      "Active phishing pages targeting credential theft",
	CategoryBotnetC2:      "Botnet command-and-control endpoints",
	CategorySSHBruteforce: "SSH brute-force attempts captured by honeypots",
	CategoryBGPAnomaly:    "BGP route leaks and prefix hijacks",
	CategoryCertIssued:    "TLS certificates observed in transparency logs",
	CategoryRansomware:    "Ransomware group victim publications",
	CategoryDefacement:    "Website defacement reports",
	CategoryDDoS:          "Volumetric denial-of-service attacks in progress",
	CategoryTorRelay:      "Tor relays joining or changing flags",
	CategoryVulnerability: "Recently published CVEs",
	CategoryDataBreach:    "Newly indexed credential breach dumps",
}

// Severity ranks events within a category. Only BGP-style queues order
// releases by severity; elsewhere it is informational.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for queue sorting. Unknown severities rank
// lowest so malformed data never jumps the queue.
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the numeric ordering of a severity, higher is more severe.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Event is a normalized threat event. Exactly one event per upstream item
// reaches the broadcaster; there is no retention after fan-out.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Category  Category    `json:"type"`
	Severity  Severity    `json:"severity,omitempty"`
	Payload   interface{} `json:"data"`
	Simulated bool        `json:"-"`
	EmittedAt time.Time   `json:"emitted_at"`
}

// NewEvent builds a normalized event stamped with the current time.
func NewEvent(category Category, severity Severity, payload interface{}) Event {
	return Event{
		ID:        uuid.New(),
		Category:  category,
		Severity:  severity,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
}
