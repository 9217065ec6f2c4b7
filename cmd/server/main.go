// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package main is the entry point for the Threatcast server.
//
// Threatcast aggregates a dozen public threat-intelligence feeds, normalizes
// and deduplicates their events, paces the bursty ones, and streams the
// result to WebSocket subscribers in real time.
//
// # Startup order
//
//  1. Configuration: defaults, optional YAML file, then environment (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Pipeline: twelve source adapters, pacing queues, broadcast hub,
//     assembled under a suture supervision tree
//  4. HTTP server: /ws, /status, /healthz, /metrics
//
// # Configuration
//
// Settings layer with highest priority last: built-in defaults, a YAML file
// (THREATCAST_CONFIG or ./config.yaml), then THREATCAST_* environment
// variables, e.g. THREATCAST_SERVER_PORT=9000 or
// THREATCAST_SOURCES_NVD_API_KEY=....
//
// Sources that require an API key run in simulate-mode when the key is
// absent; the server always exposes all twelve feeds. Set
// THREATCAST_PIPELINE_SIMULATE_ALL=true for fully offline operation.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: subscribers get WebSocket
// close frames, queues stop releasing, adapters stop mid-backoff, and the
// HTTP server drains within its timeout.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwadley/threatcast/internal/api"
	"github.com/cwadley/threatcast/internal/config"
	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("addr", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("simulate_all", cfg.Pipeline.SimulateAll).
		Msg("threatcast starting")

	p := pipeline.New(cfg, logging.NewSlogLogger())

	handler := api.NewRouter(api.NewHandler(p.Hub()))
	p.Tree().AddAPIService(api.NewServer(cfg.Server, handler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	err = p.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		// The only way here is a terminal supervisor error, e.g. a failed
		// port bind.
		logging.Fatal().Err(err).Msg("threatcast terminated")
	}

	if report, rerr := p.Tree().UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within timeout")
		}
	}

	logging.Info().Msg("threatcast stopped")
}
