// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/cwadley/threatcast/internal/config"
	"github.com/cwadley/threatcast/internal/logging"
)

// Server runs the HTTP listener as a supervised service. A failed bind
// terminates the whole tree; there is nothing to serve without a port, and
// retrying the same bind in a restart loop helps nobody.
type Server struct {
	addr       string
	handler    http.Handler
	timeout    time.Duration
	tlsAtProxy bool
}

// NewServer builds the service from listener settings.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		handler:    handler,
		timeout:    cfg.Timeout,
		tlsAtProxy: cfg.TLSAtProxy,
	}
}

// String implements fmt.Stringer for suture logging.
func (s *Server) String() string { return "http-server" }

// Serve implements suture.Service: listen until the context is canceled,
// then shut down gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		logging.Error().Err(err).Str("addr", s.addr).Msg("listener bind failed")
		return fmt.Errorf("bind %s: %v: %w", s.addr, err, suture.ErrTerminateSupervisorTree)
	}

	srv := &http.Server{
		Handler: s.handler,
		// WebSocket connections are long-lived; only the header read gets
		// a deadline here.
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	if !s.tlsAtProxy {
		logging.Warn().Msg("no fronting proxy configured, connections are plaintext end to end")
	}
	logging.Info().Str("addr", s.addr).Bool("tls_at_proxy", s.tlsAtProxy).Msg("http server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("http server shutdown incomplete")
		}
		return ctx.Err()

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
