// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/metrics"
)

// maxResponseBytes bounds upstream response bodies.
const maxResponseBytes = 4 << 20 // 4 MB

// Fetcher issues bounded, breaker-protected HTTP fetches for one source.
//
// Two protections stack here:
//   - a courtesy rate limiter caps outbound request rate regardless of the
//     configured cadence, so a misconfigured cadence cannot hammer a provider
//   - a circuit breaker skips a flapping provider instead of probing it on
//     every cycle
type Fetcher struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	apiKey  string
	timeout time.Duration
}

// NewFetcher creates a fetcher for one source. timeout bounds each request;
// a hung upstream can never delay the adapter's next cycle beyond it.
func NewFetcher(name, apiKey string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	metrics.BreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 4
		},
		// Throttling is back-pressure, not provider failure. It must never
		// open the breaker, or a sustained 429 streak would surface as
		// ErrOpenState and the caller would degrade to synthetic output
		// instead of skipping the cycle.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRateLimited)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("fetch circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &Fetcher{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 2),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

// Fetch retrieves the endpoint body. It returns ErrRateLimited both for an
// explicit provider 429 and when the local courtesy limiter denies the
// request; every other failure is a transport error for the caller to
// degrade on.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if !f.limiter.Allow() {
		return nil, ErrRateLimited
	}

	return f.breaker.Execute(func() ([]byte, error) {
		reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "threatcast/1.0")
		req.Header.Set("Accept", "application/json, text/plain, */*")
		if f.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+f.apiKey)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", f.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, ErrRateLimited
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("fetch %s: unexpected status %d", f.name, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read %s body: %w", f.name, err)
		}
		return body, nil
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
