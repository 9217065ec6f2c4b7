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

// NewNVD defines the NVD recently-published CVE feed (API 2.0). NVD accepts
// unauthenticated requests at a crawl; an API key is required for the poll
// rate this adapter runs at.
func NewNVD(cadence time.Duration, apiKey string) Definition {
	return Definition{
		Name:        "nvd",
		Category:    models.CategoryVulnerability,
		Endpoint:    "https://services.nvd.nist.gov/rest/json/cves/2.0?resultsPerPage=20",
		Cadence:     cadence,
		MaxPerPoll:  10,
		RequiresKey: true,
		APIKey:      apiKey,
		Parse:       parseNVD,
	}
}

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE nvdCVE `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVE struct {
	ID           string `json:"id"`
	Published    string `json:"published"`
	Descriptions []struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"descriptions"`
	Metrics struct {
		CVSSMetricV31 []struct {
			CVSSData struct {
				BaseScore float64 `json:"baseScore"`
			} `json:"cvssData"`
		} `json:"cvssMetricV31"`
	} `json:"metrics"`
}

func parseNVD(body []byte) ([]Item, error) {
	var resp nvdResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("nvd json: %w", err)
	}

	items := make([]Item, 0, len(resp.Vulnerabilities))
	for _, v := range resp.Vulnerabilities {
		cve := v.CVE
		if cve.ID == "" {
			continue
		}

		published, _ := time.Parse("2006-01-02T15:04:05.000", cve.Published)

		var cvss float64
		if len(cve.Metrics.CVSSMetricV31) > 0 {
			cvss = cve.Metrics.CVSSMetricV31[0].CVSSData.BaseScore
		}

		payload := models.VulnerabilityPayload{
			CVE:       cve.ID,
			Summary:   englishDescription(cve),
			CVSS:      cvss,
			Published: published,
		}

		items = append(items, Item{
			Key:   cve.ID,
			Event: models.NewEvent(models.CategoryVulnerability, cvssSeverity(cvss), payload),
		})
	}
	return items, nil
}

func englishDescription(cve nvdCVE) string {
	for _, d := range cve.Descriptions {
		if d.Lang == "en" {
			return d.Value
		}
	}
	if len(cve.Descriptions) > 0 {
		return cve.Descriptions[0].Value
	}
	return ""
}

// cvssSeverity maps a CVSS v3.1 base score onto the standard bands.
func cvssSeverity(score float64) models.Severity {
	switch {
	case score >= 9.0:
		return models.SeverityCritical
	case score >= 7.0:
		return models.SeverityHigh
	case score >= 4.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
