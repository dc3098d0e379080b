package lightnet

import (
	"context"
	"net/http"
	"time"

	"github.com/aaguseynov/lightnet/internal/backoff"
	"github.com/aaguseynov/lightnet/internal/singleflight"
)

// TokenProvider supplies and refreshes the bearer token injected by
// AuthInterceptor. Both calls may block; they receive the caller's context.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

const refreshKey = "token-refresh"

// AuthInterceptor injects an Authorization: Bearer header on every
// request and refreshes the token when the server answers 401.
//
// The refresh is single-flight: while one refresh is in flight the
// interceptor is "refreshing" and every other 401 joins that call instead
// of starting its own; all joiners share the owner's outcome. A
// successful refresh retries immediately, a failed one propagates the
// Unauthorized error.
type AuthInterceptor struct {
	provider   TokenProvider
	maxRetries int
	group      *singleflight.Group
}

// NewAuthInterceptor builds an AuthInterceptor around provider. maxRetries
// bounds how many refresh-and-retry rounds a single logical request may
// consume.
func NewAuthInterceptor(provider TokenProvider, maxRetries int) *AuthInterceptor {
	return &AuthInterceptor{
		provider:   provider,
		maxRetries: maxRetries,
		group:      singleflight.New(),
	}
}

// Adapt injects the current bearer token. A provider failure aborts the
// attempt with the provider's error.
func (i *AuthInterceptor) Adapt(ctx context.Context, req *http.Request) (*http.Request, error) {
	if i.provider == nil || req == nil {
		return req, nil
	}
	token, err := i.provider.Token(ctx)
	if err != nil {
		return req, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// Retry refreshes the token for Unauthorized failures while the budget
// lasts. Any other failure kind is not retried.
func (i *AuthInterceptor) Retry(ctx context.Context, err *Error, _ *http.Request, retryCount int) (time.Duration, bool) {
	if i.provider == nil || err == nil || err.Type != ErrorTypeUnauthorized || retryCount >= i.maxRetries {
		return 0, false
	}

	_, refreshErr, _ := i.group.Do(ctx, refreshKey, func() (any, error) {
		return i.provider.Refresh(ctx)
	})
	return 0, refreshErr == nil
}

// Refreshing reports whether a token refresh is currently in flight.
func (i *AuthInterceptor) Refreshing() bool {
	return i.group.InFlight(refreshKey)
}

// BackoffInterceptor retries transient failures (timeouts, 5xx and 429
// server responses, wrapped transport errors) with delays computed by a
// backoff strategy. Requests are left untouched on the way out.
type BackoffInterceptor struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
	strategy   backoff.Strategy
}

// NewBackoffInterceptor returns a backoff interceptor with exponential
// jitter and the default curve (100ms initial, 10s cap, 2x growth).
func NewBackoffInterceptor() *BackoffInterceptor {
	return NewBackoffInterceptorWithStrategy(backoff.ExponentialJitter{}, 100*time.Millisecond, 10*time.Second, 2.0, 0.1)
}

// NewBackoffInterceptorWithStrategy returns a backoff interceptor with a
// caller-chosen strategy and curve.
func NewBackoffInterceptorWithStrategy(strategy backoff.Strategy, initial, max time.Duration, multiplier, jitter float64) *BackoffInterceptor {
	return &BackoffInterceptor{
		initial:    initial,
		max:        max,
		multiplier: multiplier,
		jitter:     jitter,
		strategy:   strategy,
	}
}

// Adapt is the identity.
func (i *BackoffInterceptor) Adapt(_ context.Context, req *http.Request) (*http.Request, error) {
	return req, nil
}

// Retry schedules a delayed retry for transient failures.
func (i *BackoffInterceptor) Retry(_ context.Context, err *Error, _ *http.Request, retryCount int) (time.Duration, bool) {
	if !isTransient(err) {
		return 0, false
	}
	return i.strategy.Delay(retryCount, i.initial, i.max, i.multiplier, i.jitter), true
}

// isTransient reports whether a classified failure might succeed on retry.
func isTransient(err *Error) bool {
	if err == nil {
		return false
	}
	switch err.Type {
	case ErrorTypeTimeout, ErrorTypeUnderlying:
		return true
	case ErrorTypeServer:
		return err.StatusCode >= 500 || err.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}
