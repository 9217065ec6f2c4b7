// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package config loads Threatcast configuration with layered precedence:
// built-in defaults, an optional YAML file, then environment variables.
package config

import "time"

// Config is the root configuration for the Threatcast server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Sources  SourcesConfig  `koanf:"sources"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`

	// TLSAtProxy indicates TLS terminates at a fronting proxy; the server
	// itself always listens in plaintext when this is set.
	TLSAtProxy bool `koanf:"tls_at_proxy"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// PipelineConfig holds knobs shared by every adapter and queue.
type PipelineConfig struct {
	// QueueCap bounds each pacing queue; older buffered items are dropped
	// beyond it, preferring to retain the most severe.
	QueueCap int `koanf:"queue_cap" validate:"min=1"`

	// SeenSetCap bounds each source's dedup recency set.
	SeenSetCap int `koanf:"seen_set_cap" validate:"min=1"`

	// FetchTimeout bounds every upstream fetch so a hung provider cannot
	// delay that adapter's next cycle.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// BGPDropProbability is the chance a below-medium-severity BGP event
	// is dropped before enqueueing. Volume policy, not correctness.
	BGPDropProbability float64 `koanf:"bgp_drop_probability" validate:"min=0,max=1"`

	// SimulateSeed seeds every synthetic generator. Zero means seed from
	// the wall clock; tests set it for reproducible output.
	SimulateSeed int64 `koanf:"simulate_seed"`

	// SimulateAll forces every source into simulate-mode. Demo and offline
	// operation; no upstream connection is ever attempted.
	SimulateAll bool `koanf:"simulate_all"`
}

// SourceConfig holds per-source overrides. An empty APIKey on a source that
// requires one silently switches only that source into simulate-mode.
type SourceConfig struct {
	APIKey  string        `koanf:"api_key"`
	Cadence time.Duration `koanf:"cadence"`
}

// SourcesConfig carries one entry per feed.
type SourcesConfig struct {
	URLhaus     SourceConfig `koanf:"urlhaus"`
	OpenPhish   SourceConfig `koanf:"openphish"`
	Feodo       SourceConfig `koanf:"feodo"`
	Honeypot    SourceConfig `koanf:"honeypot"`
	RISLive     SourceConfig `koanf:"rislive"`
	CertStream  SourceConfig `koanf:"certstream"`
	Ransomwatch SourceConfig `koanf:"ransomwatch"`
	Defacement  SourceConfig `koanf:"defacement"`
	DDoSMon     SourceConfig `koanf:"ddosmon"`
	Onionoo     SourceConfig `koanf:"onionoo"`
	NVD         SourceConfig `koanf:"nvd"`
	BreachFeed  SourceConfig `koanf:"breachfeed"`
}

// defaultConfig returns a Config with production defaults. Cadences reflect
// each provider's published rate limits.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8420,
			Timeout:    30 * time.Second,
			TLSAtProxy: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Pipeline: PipelineConfig{
			QueueCap:           50,
			SeenSetCap:         2000,
			FetchTimeout:       15 * time.Second,
			BGPDropProbability: 0.5,
			SimulateSeed:       0,
		},
		Sources: SourcesConfig{
			URLhaus:     SourceConfig{Cadence: 90 * time.Second},
			OpenPhish:   SourceConfig{Cadence: 300 * time.Second},
			Feodo:       SourceConfig{Cadence: 600 * time.Second},
			Honeypot:    SourceConfig{Cadence: 60 * time.Second},
			RISLive:     SourceConfig{},
			CertStream:  SourceConfig{},
			Ransomwatch: SourceConfig{Cadence: 600 * time.Second},
			Defacement:  SourceConfig{Cadence: 600 * time.Second},
			DDoSMon:     SourceConfig{Cadence: 120 * time.Second},
			Onionoo:     SourceConfig{Cadence: 300 * time.Second},
			NVD:         SourceConfig{Cadence: 600 * time.Second},
			BreachFeed:  SourceConfig{Cadence: 600 * time.Second},
		},
	}
}
