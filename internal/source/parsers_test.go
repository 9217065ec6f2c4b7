// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwadley/threatcast/internal/models"
)

func TestParseURLhaus(t *testing.T) {
	body := []byte(`# abuse.ch URLhaus Database Dump
# Last updated: 2026-08-24 10:00:05 UTC
"3491000","2026-08-24 09:59:01","http://bad.example.test/payload.exe","online","","malware_download","elf,mozi","https://urlhaus.abuse.ch/url/3491000/","reporter1"
"3491001","2026-08-24 09:58:44","http://other.example.test/doc.bin","offline","2026-08-24 09:59:00","malware_download","","https://urlhaus.abuse.ch/url/3491001/","reporter2"
not,enough,fields
`)

	items, err := parseURLhaus(body)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "http://bad.example.test/payload.exe", items[0].Key)
	first := items[0].Event.Payload.(models.MalwareURLPayload)
	assert.Equal(t, "bad.example.test", first.Host)
	assert.Equal(t, "malware_download", first.Threat)
	assert.Equal(t, []string{"elf", "mozi"}, first.Tags)
	assert.Equal(t, models.SeverityHigh, items[0].Event.Severity)

	assert.Equal(t, models.SeverityMedium, items[1].Event.Severity)
}

func TestSplitTagsDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"elf", "mozi"}, splitTags("elf,,mozi,"))
	assert.Nil(t, splitTags(""))
}

func TestParseOpenPhish(t *testing.T) {
	body := []byte("https://paypal-secure.example.test/login\n\nhttps://plain.example.test/\nnot a url\n")

	items, err := parseOpenPhish(body)
	require.NoError(t, err)
	require.Len(t, items, 2)

	payload := items[0].Event.Payload.(models.PhishingPayload)
	assert.Equal(t, "paypal", payload.TargetedName)

	payload = items[1].Event.Payload.(models.PhishingPayload)
	assert.Empty(t, payload.TargetedName)
}

func TestParseFeodo(t *testing.T) {
	body := []byte(`[
		{"ip_address":"203.0.113.10","port":443,"status":"online","malware":"QakBot","country":"US","first_seen_utc":"2026-08-20 11:30:00"},
		{"ip_address":"","port":80,"status":"online","malware":"Emotet"}
	]`)

	items, err := parseFeodo(body)
	require.NoError(t, err)
	require.Len(t, items, 1, "entries without an address are skipped")

	assert.Equal(t, "203.0.113.10:443", items[0].Key)
	payload := items[0].Event.Payload.(models.BotnetC2Payload)
	assert.Equal(t, "QakBot", payload.Malware)
	assert.Equal(t, models.SeverityHigh, items[0].Event.Severity)
}

func TestParseFeodo_MalformedBodyIsParseError(t *testing.T) {
	_, err := parseFeodo([]byte("<html>maintenance</html>"))
	assert.Error(t, err)
}

func TestParseNVD_SeverityBands(t *testing.T) {
	body := []byte(`{"vulnerabilities":[
		{"cve":{"id":"CVE-2026-0001","published":"2026-08-24T09:00:00.000",
			"descriptions":[{"lang":"en","value":"Remote code execution."}],
			"metrics":{"cvssMetricV31":[{"cvssData":{"baseScore":9.8}}]}}},
		{"cve":{"id":"CVE-2026-0002","published":"2026-08-24T09:05:00.000",
			"descriptions":[{"lang":"fr","value":"Description seulement."}],
			"metrics":{}}}
	]}`)

	items, err := parseNVD(body)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, models.SeverityCritical, items[0].Event.Severity)
	payload := items[0].Event.Payload.(models.VulnerabilityPayload)
	assert.Equal(t, "CVE-2026-0001", payload.CVE)
	assert.Equal(t, "Remote code execution.", payload.Summary)

	assert.Equal(t, models.SeverityLow, items[1].Event.Severity)
	payload = items[1].Event.Payload.(models.VulnerabilityPayload)
	assert.Equal(t, "Description seulement.", payload.Summary, "falls back to any available language")
}

func TestHandleCertStream(t *testing.T) {
	msg := []byte(`{"message_type":"certificate_update","data":{"leaf_cert":{
		"subject":{"CN":"xn--paypl-7ve.example.test"},
		"issuer":{"O":"Example CA"},
		"all_domains":["xn--paypl-7ve.example.test","www.xn--paypl-7ve.example.test"],
		"fingerprint":"AA:BB:CC","not_before":1756022400}}}`)

	items := handleCertStream(msg)
	require.Len(t, items, 1)

	assert.Equal(t, "AA:BB:CC", items[0].Key)
	assert.Equal(t, models.SeverityMedium, items[0].Event.Severity, "punycode names are surfaced")
	payload := items[0].Event.Payload.(models.CertIssuedPayload)
	assert.Equal(t, "Example CA", payload.Issuer)
	assert.Len(t, payload.SANs, 2)

	assert.Empty(t, handleCertStream([]byte(`{"message_type":"heartbeat"}`)))
	assert.Empty(t, handleCertStream([]byte(`garbage`)))
}

func TestRISHandler(t *testing.T) {
	handle := risHandler(NewBGPClassifier(0, 1))

	msg := []byte(`{"type":"ris_message","data":{
		"peer_asn":"174","host":"rrc00","type":"UPDATE",
		"path":[174,3356,3356,64500],
		"announcements":[{"prefixes":["192.0.2.0/24"]}]}}`)

	items := handle(msg)
	require.Len(t, items, 1)

	ev := items[0].Event
	assert.Equal(t, models.CategoryBGPAnomaly, ev.Category)
	assert.Equal(t, models.SeverityHigh, ev.Severity)
	payload := ev.Payload.(models.BGPAnomalyPayload)
	assert.Equal(t, BGPKindRouteLeak, payload.Kind)
	assert.Equal(t, uint32(174), payload.PeerASN)
	assert.Equal(t, "rrc00", payload.Collector)

	assert.Empty(t, handle([]byte(`{"type":"ris_error","data":{}}`)))
	assert.Empty(t, handle([]byte(`{"type":"ris_message","data":{"type":"KEEPALIVE"}}`)))
}

func TestParseOnionoo(t *testing.T) {
	body := []byte(`{"relays":[
		{"nickname":"fastrelay","fingerprint":"ABCDEF0123","or_addresses":["203.0.113.5:9001"],
		 "country":"de","flags":["Fast","Exit","Running"],"advertised_bandwidth":52428800},
		{"nickname":"noprint","or_addresses":["203.0.113.6:9001"]}
	]}`)

	items, err := parseOnionoo(body)
	require.NoError(t, err)
	require.Len(t, items, 1)

	payload := items[0].Event.Payload.(models.TorRelayPayload)
	assert.Equal(t, "203.0.113.5", payload.IPAddress)
	assert.Equal(t, "DE", payload.Country)
	assert.Equal(t, models.SeverityMedium, items[0].Event.Severity, "exit relays rank above the baseline")
}
