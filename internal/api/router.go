// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package api exposes the HTTP surface: the WebSocket feed, a health probe,
// a plain status report and Prometheus metrics. The feed is public; there is
// no authentication anywhere on this surface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the route table around a handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	// The WebSocket endpoint sits outside the rate limit: one long-lived
	// connection per subscriber, limited instead by the hub itself.
	r.Get("/ws", h.WebSocket)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(120, time.Minute))

		r.Get("/healthz", h.Healthz)
		r.Get("/status", h.Status)
		r.Handle("/metrics", promhttp.Handler())

		// Everything else, including the root, gets the banner.
		r.Get("/", h.Banner)
		r.NotFound(h.Banner)
	})

	return r
}
