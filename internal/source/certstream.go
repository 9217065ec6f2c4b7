// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cwadley/threatcast/internal/models"
)

// NewCertStream defines the certificate transparency firehose.
func NewCertStream() StreamDefinition {
	return StreamDefinition{
		Name:          "certstream",
		Category:      models.CategoryCertIssued,
		URL:           "wss://certstream.calidog.io/",
		Handle:        handleCertStream,
		SimulateBatch: 2,
	}
}

type certstreamMessage struct {
	MessageType string `json:"message_type"`
	Data        struct {
		LeafCert struct {
			Subject struct {
				CN string `json:"CN"`
			} `json:"subject"`
			Issuer struct {
				O string `json:"O"`
			} `json:"issuer"`
			AllDomains  []string `json:"all_domains"`
			Fingerprint string   `json:"fingerprint"`
			NotBefore   float64  `json:"not_before"`
		} `json:"leaf_cert"`
	} `json:"data"`
}

func handleCertStream(data []byte) []Item {
	var msg certstreamMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.MessageType != "certificate_update" {
		return nil
	}

	leaf := msg.Data.LeafCert
	if leaf.Fingerprint == "" {
		return nil
	}

	cn := leaf.Subject.CN
	if cn == "" && len(leaf.AllDomains) > 0 {
		cn = leaf.AllDomains[0]
	}

	// Punycode names are overrepresented in homograph phishing; surface
	// them above the background of routine issuance.
	severity := models.SeverityLow
	if strings.Contains(cn, "xn--") {
		severity = models.SeverityMedium
	}

	payload := models.CertIssuedPayload{
		CommonName:  cn,
		SANs:        leaf.AllDomains,
		Issuer:      leaf.Issuer.O,
		Fingerprint: leaf.Fingerprint,
		NotBefore:   time.Unix(int64(leaf.NotBefore), 0).UTC(),
	}

	return []Item{{
		Key:   leaf.Fingerprint,
		Event: models.NewEvent(models.CategoryCertIssued, severity, payload),
	}}
}
