// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay is the wait between attempts when the caller passes no
// delay. Tests override this to avoid real sleeps.
var RetryBaseDelay = 5 * time.Second

const defaultAttempts = 3

// DoWithRetry executes a body-less HTTP request up to attempts times. A
// transport error, HTTP 429 (Too Many Requests) or any 5xx response counts
// as a failed attempt; everything else is returned to the caller as-is.
//
// When attempts is 0 the default (3) is used, and when delay is 0 the
// RetryBaseDelay is used. Failed response bodies are drained and closed
// before waiting. If the context is cancelled during a wait the function
// returns ctx.Err(). After the last attempt the final error, or the final
// failed response, is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, attempts int, delay time.Duration) (*http.Response, error) {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if delay <= 0 {
		delay = RetryBaseDelay
	}
	log := zerolog.Ctx(ctx)

	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= attempts {
			return resp, err
		}

		var cause error
		if err != nil {
			cause = err
		} else {
			cause = fmt.Errorf("HTTP %d", resp.StatusCode)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		log.Warn().Err(cause).
			Str("url", req.URL.String()).
			Int("attempt", attempt).
			Int("attempts", attempts).
			Dur("retry_in", delay).
			Msg("request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
