// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package models

import "time"

// MalwareURLPayload describes a newly observed malware distribution URL.
type MalwareURLPayload struct {
	URL       string    `json:"url"`
	Host      string    `json:"host"`
	Threat    string    `json:"threat"`
	Tags      []string  `json:"tags,omitempty"`
	Reporter  string    `json:"reporter,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
}

// PhishingPayload describes an active phishing page.
type PhishingPayload struct {
	URL          string `json:"url"`
	TargetedName string `json:"targeted_brand,omitempty"`
	Country      string `json:"country,omitempty"`
}

// BotnetC2Payload describes a botnet command-and-control endpoint.
type BotnetC2Payload struct {
	IPAddress string    `json:"ip_address"`
	Port      int       `json:"port"`
	Malware   string    `json:"malware"`
	Country   string    `json:"country,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
}

// SSHBruteforcePayload describes a brute-force attempt against a honeypot.
type SSHBruteforcePayload struct {
	SourceIP   string `json:"source_ip"`
	Country    string `json:"country,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	SensorName string `json:"sensor,omitempty"`
	Attempts   int    `json:"attempts"`
}

// BGPAnomalyPayload describes a suspected route leak or prefix hijack.
type BGPAnomalyPayload struct {
	Kind        string   `json:"kind"` // leak or hijack
	Prefix      string   `json:"prefix"`
	ASPath      []uint32 `json:"as_path"`
	OriginASN   uint32   `json:"origin_asn"`
	PeerASN     uint32   `json:"peer_asn,omitempty"`
	Collector   string   `json:"collector,omitempty"`
	Description string   `json:"description"`
}

// CertIssuedPayload describes a certificate observed in a transparency log.
type CertIssuedPayload struct {
	CommonName  string    `json:"common_name"`
	SANs        []string  `json:"sans,omitempty"`
	Issuer      string    `json:"issuer"`
	Fingerprint string    `json:"fingerprint"`
	NotBefore   time.Time `json:"not_before"`
}

// RansomwarePayload describes a victim publication by a ransomware group.
type RansomwarePayload struct {
	Group        string    `json:"group"`
	Victim       string    `json:"victim"`
	Country      string    `json:"country,omitempty"`
	Sector       string    `json:"sector,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// DefacementPayload describes a reported website defacement.
type DefacementPayload struct {
	URL      string `json:"url"`
	Attacker string `json:"attacker,omitempty"`
	Country  string `json:"country,omitempty"`
}

// DDoSPayload describes an in-progress volumetric attack.
type DDoSPayload struct {
	TargetIP   string  `json:"target_ip"`
	TargetPort int     `json:"target_port,omitempty"`
	Vector     string  `json:"vector"`
	Gbps       float64 `json:"gbps"`
	Country    string  `json:"country,omitempty"`
}

// TorRelayPayload describes a Tor relay joining the network or changing flags.
type TorRelayPayload struct {
	Fingerprint string   `json:"fingerprint"`
	Nickname    string   `json:"nickname,omitempty"`
	IPAddress   string   `json:"ip_address"`
	Country     string   `json:"country,omitempty"`
	Flags       []string `json:"flags,omitempty"`
	Bandwidth   int64    `json:"bandwidth_bytes,omitempty"`
}

// VulnerabilityPayload describes a recently published CVE.
type VulnerabilityPayload struct {
	CVE       string    `json:"cve"`
	Summary   string    `json:"summary"`
	CVSS      float64   `json:"cvss,omitempty"`
	Published time.Time `json:"published"`
}

// DataBreachPayload describes a newly indexed breach dump.
type DataBreachPayload struct {
	Name         string    `json:"name"`
	Domain       string    `json:"domain,omitempty"`
	RecordCount  int64     `json:"record_count"`
	DataClasses  []string  `json:"data_classes,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
