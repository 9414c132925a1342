// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/preprint-classifier/pkg/types"
)

// DefaultBaseBackoff is the first retry wait when a RatePolicy leaves
// BaseBackoff unset. Tests override this to avoid real sleeps.
var DefaultBaseBackoff = 2 * time.Second

// DoWithRetry executes an HTTP request and retries throttled responses
// according to policy. HTTP 429 is always retryable; 5xx responses are
// retryable when policy.RetryOnServerError is set. The wait starts at
// policy.BaseBackoff and doubles each attempt.
//
// With policy.MaxRetries of 0 the request is sent exactly once. On each retry
// the response body is drained and closed before sleeping, and request
// bodies are rewound through req.GetBody. If the context is cancelled
// during a wait the function returns ctx.Err(). After exhausting retries the
// last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy types.RatePolicy) (*http.Response, error) {
	base := policy.BaseBackoff
	if base <= 0 {
		base = DefaultBaseBackoff
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode, policy) || attempt >= policy.MaxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * base
		if err := Pause(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

func retryable(status int, policy types.RatePolicy) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return policy.RetryOnServerError && status >= 500
}

// Pause blocks for d or until ctx is done, whichever comes first.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
