package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/timeout"
)

const (
	breakerFailureThreshold = 5
	breakerDelay            = 30 * time.Second
)

// newResilientTransport bounds every attempt with a timeout and stops calling an upstream
// that keeps failing. Requests are never retried; callers may retry resolutions themselves.
func newResilientTransport(next http.RoundTripper, requestTimeout time.Duration) http.RoundTripper {
	breaker := circuitbreaker.NewBuilder[*http.Response]().
		HandleIf(isUpstreamFailure).
		WithFailureThreshold(breakerFailureThreshold).
		WithDelay(breakerDelay).
		Build()

	return failsafehttp.NewRoundTripper(next, timeout.New[*http.Response](requestTimeout), breaker)
}

// isUpstreamFailure counts transport errors and 5xx responses against the breaker.
// Client cancellations and 4xx answers (bad API keys) are not upstream failures.
func isUpstreamFailure(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return resp != nil && resp.StatusCode >= http.StatusInternalServerError
}
