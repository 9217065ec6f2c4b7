// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package simulate

// Value pools for synthetic payloads. Kept deliberately generic so simulated
// output never names a real organization or routable address.

var hostAdjectives = []string{
	"silver", "rapid", "hidden", "broken", "quiet", "molten", "frozen", "vivid",
}

var hostNouns = []string{
	"falcon", "harbor", "lantern", "summit", "willow", "canyon", "beacon", "drift",
}

var tlds = []string{"example", "test", "invalid"}

var binNames = []string{"update", "install", "setup", "invoice", "scan", "patch"}

var malwareFamilies = []string{
	"Emotet", "QakBot", "AgentTesla", "RedLine", "Formbook", "Remcos", "Lokibot",
}

var malwareTags = []string{"exe", "dll", "doc", "zip", "elf"}

var brands = []string{
	"Global Bank", "Parcel Express", "Cloud Mail", "Crypto Exchange", "Tax Portal",
}

var countries = []string{
	"US", "DE", "BR", "IN", "CN", "RU", "FR", "GB", "NL", "KR", "JP", "VN",
}

var c2Ports = []int{443, 8080, 4443, 1080, 50050, 8443}

var usernames = []string{"root", "admin", "ubuntu", "test", "oracle", "postgres", "git"}

var passwords = []string{"123456", "password", "admin", "root", "qwerty", "1q2w3e", "letmein"}

var issuers = []string{
	"Let's Encrypt", "ZeroSSL", "Sectigo", "DigiCert", "GlobalSign",
}

var ransomGroups = []string{
	"lockfile", "darkvault", "cryptmire", "hollowbyte", "nightshade",
}

var companyAdjectives = []string{
	"United", "Coastal", "Premier", "Northern", "Integrated", "Allied",
}

var companyNouns = []string{
	"Logistics", "Healthcare", "Manufacturing", "Insurance", "Utilities", "Retail",
}

var sectors = []string{
	"healthcare", "manufacturing", "finance", "education", "government", "energy",
}

var defacerHandles = []string{
	"gh0st_sec", "xNullByte", "darkpage", "cyb3r_fury", "sp3ctr3",
}

var ddosVectors = []string{
	"udp-flood", "syn-flood", "dns-amplification", "ntp-amplification", "http-flood",
}

var ddosPorts = []int{53, 80, 443, 123, 27015}

var relayFlags = []string{"Fast", "Guard", "Stable", "Exit", "HSDir"}

var vulnKinds = []string{
	"buffer overflow", "SQL injection", "path traversal", "use-after-free",
	"authentication bypass", "deserialization flaw",
}

var vulnComponents = []string{
	"Gateway", "Agent", "Console", "Router Firmware", "API Server",
}

var dataClasses = []string{
	"passwords", "phone numbers", "physical addresses", "session tokens", "payment cards",
}
