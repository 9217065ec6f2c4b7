// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"fmt"
	"math/rand"
	"net/netip"
	"sync"

	"github.com/cwadley/threatcast/internal/models"
)

// BGP anomaly kinds.
const (
	BGPKindRouteLeak      = "leak"
	BGPKindPossibleHijack = "hijack"
	BGPKindAnnouncement   = "announcement"
)

// majorNetworks maps well-known origin ASNs to their operator names.
// Announcements touching these networks are always worth surfacing.
var majorNetworks = map[uint32]string{
	15169: "Google",
	8075:  "Microsoft",
	13335: "Cloudflare",
	16509: "Amazon",
	32934: "Meta",
	2914:  "NTT",
	3356:  "Lumen",
	701:   "Verizon",
	6453:  "TATA",
	1299:  "Arelion",
}

// BGPClassifier grades raw route announcements into anomaly events. The
// heuristics are intentionally coarse; this is a live-feed triage filter,
// not an RPKI validator.
//
// Routine low-severity announcements are thinned probabilistically so the
// firehose does not drown the interesting events downstream.
type BGPClassifier struct {
	dropProbability float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBGPClassifier builds a classifier. dropProbability is the chance a
// below-medium announcement is discarded, clamped to [0, 1]. seed fixes the
// thinning sequence; zero seeds from the wall clock.
func NewBGPClassifier(dropProbability float64, seed int64) *BGPClassifier {
	if dropProbability < 0 {
		dropProbability = 0
	}
	if dropProbability > 1 {
		dropProbability = 1
	}

	var rng *rand.Rand
	if seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	} else {
		rng = rand.New(rand.NewSource(seed))
	}

	return &BGPClassifier{dropProbability: dropProbability, rng: rng}
}

// Classify grades one announcement. Heuristics apply in priority order; the
// first match wins. The second return value is false when the announcement
// was thinned and should not be emitted.
func (c *BGPClassifier) Classify(prefix string, path []uint32, peerASN uint32, collector string) (models.Severity, models.BGPAnomalyPayload, bool) {
	payload := models.BGPAnomalyPayload{
		Prefix:    prefix,
		ASPath:    path,
		PeerASN:   peerASN,
		Collector: collector,
	}
	if len(path) > 0 {
		payload.OriginASN = path[len(path)-1]
	}

	// A repeated ASN anywhere in the path means prepending at best and a
	// propagation loop at worst.
	if repeated, asn := repeatedASN(path); repeated {
		payload.Kind = BGPKindRouteLeak
		payload.Description = fmt.Sprintf("AS%d appears multiple times in path, possible route leak", asn)
		return models.SeverityHigh, payload, true
	}

	// Very specific prefixes are the classic hijack signature: a /25 or
	// longer outcompetes any legitimate covering route.
	if bits, ok := prefixBits(prefix); ok && bits >= 25 {
		payload.Kind = BGPKindPossibleHijack
		payload.Description = fmt.Sprintf("unusually specific /%d announcement, possible hijack", bits)
		return models.SeverityHigh, payload, true
	}

	if len(path) > 8 {
		payload.Kind = BGPKindRouteLeak
		payload.Description = fmt.Sprintf("abnormally long AS path (%d hops)", len(path))
		return models.SeverityMedium, payload, true
	}

	if name, ok := majorNetworks[payload.OriginASN]; ok {
		payload.Kind = BGPKindAnnouncement
		payload.Description = fmt.Sprintf("announcement involving %s (AS%d)", name, payload.OriginASN)
		return models.SeverityMedium, payload, true
	}

	payload.Kind = BGPKindAnnouncement
	payload.Description = fmt.Sprintf("routine announcement of %s", prefix)

	c.mu.Lock()
	drop := c.rng.Float64() < c.dropProbability
	c.mu.Unlock()

	return models.SeverityLow, payload, !drop
}

// repeatedASN reports whether any ASN occurs more than once in the path.
func repeatedASN(path []uint32) (bool, uint32) {
	seen := make(map[uint32]struct{}, len(path))
	for _, asn := range path {
		if _, ok := seen[asn]; ok {
			return true, asn
		}
		seen[asn] = struct{}{}
	}
	return false, 0
}

// prefixBits parses an IPv4 CIDR prefix length. IPv6 announcements are not
// graded by specificity.
func prefixBits(prefix string) (int, bool) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil || !p.Addr().Is4() {
		return 0, false
	}
	return p.Bits(), true
}
