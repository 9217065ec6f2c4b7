// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package simulate produces synthetic threat events indistinguishable in
// shape from live ones. Adapters fall back to it on upstream failure, and
// sources without API keys run on it entirely. The generator is seedable so
// simulate-mode output is reproducible in tests.
package simulate

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cwadley/threatcast/internal/models"
)

// Generator produces synthetic events for every category from one seeded
// random stream. Safe for concurrent use by multiple adapters.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator. A zero seed falls back to the wall clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Batch produces n synthetic events for the category, marked Simulated.
func (g *Generator) Batch(category models.Category, n int) []models.Event {
	events := make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		ev := g.Event(category)
		events = append(events, ev)
	}
	return events
}

// Event produces one synthetic event for the category.
func (g *Generator) Event(category models.Category) models.Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	var (
		severity models.Severity
		payload  interface{}
	)

	switch category {
	case models.CategoryMalwareURL:
		severity, payload = g.malwareURL()
	case models.CategoryPhishing:
		severity, payload = g.phishing()
	case models.CategoryBotnetC2:
		severity, payload = g.botnetC2()
	case models.CategorySSHBruteforce:
		severity, payload = g.sshBruteforce()
	case models.CategoryBGPAnomaly:
		severity, payload = g.bgpAnomaly()
	case models.CategoryCertIssued:
		severity, payload = g.certIssued()
	case models.CategoryRansomware:
		severity, payload = g.ransomware()
	case models.CategoryDefacement:
		severity, payload = g.defacement()
	case models.CategoryDDoS:
		severity, payload = g.ddos()
	case models.CategoryTorRelay:
		severity, payload = g.torRelay()
	case models.CategoryVulnerability:
		severity, payload = g.vulnerability()
	case models.CategoryDataBreach:
		severity, payload = g.dataBreach()
	default:
		severity, payload = models.SeverityLow, struct{}{}
	}

	ev := models.NewEvent(category, severity, payload)
	ev.Simulated = true
	return ev
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) ip() string {
	// Documentation/test ranges keep synthetic data obviously non-routable.
	return fmt.Sprintf("203.0.113.%d", g.rng.Intn(254)+1)
}

func (g *Generator) host() string {
	return fmt.Sprintf("%s-%s.%s",
		g.pick(hostAdjectives), g.pick(hostNouns), g.pick(tlds))
}

func (g *Generator) malwareURL() (models.Severity, interface{}) {
	host := g.host()
	return models.SeverityMedium, models.MalwareURLPayload{
		URL:       fmt.Sprintf("http://%s/%s.exe", host, g.pick(binNames)),
		Host:      host,
		Threat:    g.pick(malwareFamilies),
		Tags:      []string{g.pick(malwareTags)},
		FirstSeen: time.Now().UTC(),
	}
}

func (g *Generator) phishing() (models.Severity, interface{}) {
	return models.SeverityMedium, models.PhishingPayload{
		URL:          fmt.Sprintf("https://%s/login", g.host()),
		TargetedName: g.pick(brands),
		Country:      g.pick(countries),
	}
}

func (g *Generator) botnetC2() (models.Severity, interface{}) {
	return models.SeverityHigh, models.BotnetC2Payload{
		IPAddress: g.ip(),
		Port:      g.pickInt(c2Ports),
		Malware:   g.pick(malwareFamilies),
		Country:   g.pick(countries),
		FirstSeen: time.Now().UTC(),
	}
}

func (g *Generator) sshBruteforce() (models.Severity, interface{}) {
	return models.SeverityLow, models.SSHBruteforcePayload{
		SourceIP:   g.ip(),
		Country:    g.pick(countries),
		Username:   g.pick(usernames),
		Password:   g.pick(passwords),
		SensorName: fmt.Sprintf("sensor-%02d", g.rng.Intn(16)),
		Attempts:   g.rng.Intn(40) + 1,
	}
}

func (g *Generator) bgpAnomaly() (models.Severity, interface{}) {
	kinds := []string{"leak", "hijack"}
	kind := g.pick(kinds)
	severity := models.SeverityMedium
	if kind == "hijack" {
		severity = models.SeverityHigh
	}
	origin := uint32(g.rng.Intn(64000) + 1000)
	return severity, models.BGPAnomalyPayload{
		Kind:        kind,
		Prefix:      fmt.Sprintf("203.0.113.0/%d", 20+g.rng.Intn(8)),
		ASPath:      []uint32{uint32(g.rng.Intn(64000) + 1000), origin},
		OriginASN:   origin,
		Description: fmt.Sprintf("synthetic %s observation", kind),
	}
}

func (g *Generator) certIssued() (models.Severity, interface{}) {
	host := g.host()
	fp := make([]byte, 0, 40)
	for i := 0; i < 20; i++ {
		fp = append(fp, fmt.Sprintf("%02x", g.rng.Intn(256))...)
	}
	return models.SeverityLow, models.CertIssuedPayload{
		CommonName:  host,
		SANs:        []string{host, "www." + host},
		Issuer:      g.pick(issuers),
		Fingerprint: string(fp),
		NotBefore:   time.Now().UTC(),
	}
}

func (g *Generator) ransomware() (models.Severity, interface{}) {
	return models.SeverityHigh, models.RansomwarePayload{
		Group:        g.pick(ransomGroups),
		Victim:       fmt.Sprintf("%s %s", g.pick(companyAdjectives), g.pick(companyNouns)),
		Country:      g.pick(countries),
		Sector:       g.pick(sectors),
		DiscoveredAt: time.Now().UTC(),
	}
}

func (g *Generator) defacement() (models.Severity, interface{}) {
	return models.SeverityLow, models.DefacementPayload{
		URL:      fmt.Sprintf("http://%s/index.html", g.host()),
		Attacker: g.pick(defacerHandles),
		Country:  g.pick(countries),
	}
}

func (g *Generator) ddos() (models.Severity, interface{}) {
	gbps := g.rng.Float64() * 400
	severity := models.SeverityMedium
	if gbps > 100 {
		severity = models.SeverityHigh
	}
	return severity, models.DDoSPayload{
		TargetIP:   g.ip(),
		TargetPort: g.pickInt(ddosPorts),
		Vector:     g.pick(ddosVectors),
		Gbps:       gbps,
		Country:    g.pick(countries),
	}
}

func (g *Generator) torRelay() (models.Severity, interface{}) {
	fp := make([]byte, 0, 40)
	for i := 0; i < 20; i++ {
		fp = append(fp, fmt.Sprintf("%02X", g.rng.Intn(256))...)
	}
	return models.SeverityLow, models.TorRelayPayload{
		Fingerprint: string(fp),
		Nickname:    fmt.Sprintf("%s%s%02d", g.pick(hostAdjectives), g.pick(hostNouns), g.rng.Intn(100)),
		IPAddress:   g.ip(),
		Country:     g.pick(countries),
		Flags:       []string{"Running", g.pick(relayFlags)},
		Bandwidth:   int64(g.rng.Intn(50_000_000)),
	}
}

func (g *Generator) vulnerability() (models.Severity, interface{}) {
	cvss := 2 + g.rng.Float64()*8
	severity := models.SeverityLow
	switch {
	case cvss >= 9:
		severity = models.SeverityCritical
	case cvss >= 7:
		severity = models.SeverityHigh
	case cvss >= 4:
		severity = models.SeverityMedium
	}
	return severity, models.VulnerabilityPayload{
		CVE:       fmt.Sprintf("CVE-%d-%05d", time.Now().Year(), g.rng.Intn(99999)),
		Summary:   fmt.Sprintf("%s in %s %s", g.pick(vulnKinds), g.pick(companyNouns), g.pick(vulnComponents)),
		CVSS:      float64(int(cvss*10)) / 10,
		Published: time.Now().UTC(),
	}
}

func (g *Generator) dataBreach() (models.Severity, interface{}) {
	return models.SeverityHigh, models.DataBreachPayload{
		Name:         fmt.Sprintf("%s %s", g.pick(companyAdjectives), g.pick(companyNouns)),
		Domain:       g.host(),
		RecordCount:  int64(g.rng.Intn(40_000_000) + 10_000),
		DataClasses:  []string{"email addresses", g.pick(dataClasses)},
		DiscoveredAt: time.Now().UTC(),
	}
}

// pickInt selects from an int slice.
func (g *Generator) pickInt(options []int) int {
	return options[g.rng.Intn(len(options))]
}
