// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestFetcher_Returns429AsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewFetcher("testfeed", "", time.Second)

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestFetcher_SustainedThrottlingNeverOpensTheBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewFetcher("testfeed", "", time.Second)
	// Unthrottle the courtesy limiter so every request reaches the breaker.
	f.limiter = rate.NewLimiter(rate.Inf, 0)

	// Well past the trip threshold: every cycle must still surface as
	// throttling, never as an open breaker.
	for i := 0; i < 10; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.ErrorIs(t, err, ErrRateLimited, "cycle %d", i)
	}
}

func TestFetcher_RepeatedServerErrorsOpenTheBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher("testfeed", "", time.Second)
	f.limiter = rate.NewLimiter(rate.Inf, 0)

	for i := 0; i < 4; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRateLimited)
	}

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited, "an open breaker is a transport failure")
}
