package lightnet

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// stubTokenProvider scripts Token/Refresh behavior and counts refreshes.
type stubTokenProvider struct {
	token     func(context.Context) (string, error)
	refresh   func(context.Context) (string, error)
	refreshes int32
}

func (p *stubTokenProvider) Token(ctx context.Context) (string, error) {
	if p.token != nil {
		return p.token(ctx)
	}
	return "token", nil
}

func (p *stubTokenProvider) Refresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&p.refreshes, 1)
	if p.refresh != nil {
		return p.refresh(ctx)
	}
	return "token", nil
}

func (p *stubTokenProvider) refreshCalls() int {
	return int(atomic.LoadInt32(&p.refreshes))
}

func TestAuthInterceptorInjectsBearerToken(t *testing.T) {
	provider := &stubTokenProvider{
		token: func(context.Context) (string, error) { return "secret", nil },
	}
	interceptor := NewAuthInterceptor(provider, 3)

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/users", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	adapted, err := interceptor.Adapt(context.Background(), req)
	if err != nil {
		t.Fatalf("Adapt() returned error: %v", err)
	}
	if got := adapted.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("expected Bearer secret, got %q", got)
	}
}

func TestAuthInterceptorTokenFailureAbortsAttempt(t *testing.T) {
	provider := &stubTokenProvider{
		token: func(context.Context) (string, error) { return "", errors.New("vault down") },
	}
	interceptor := NewAuthInterceptor(provider, 3)

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/users", nil)
	if _, err := interceptor.Adapt(context.Background(), req); err == nil {
		t.Fatal("expected Adapt to surface the provider error")
	}
}

func TestAuthInterceptorRetriesOnlyUnauthorized(t *testing.T) {
	interceptor := NewAuthInterceptor(&stubTokenProvider{}, 3)

	if _, retry := interceptor.Retry(context.Background(), newError(ErrorTypeTimeout, "t"), nil, 0); retry {
		t.Error("expected no retry for Timeout")
	}
	if _, retry := interceptor.Retry(context.Background(), newError(ErrorTypeUnauthorized, "u"), nil, 0); !retry {
		t.Error("expected retry for Unauthorized with refresh available")
	}
	if _, retry := interceptor.Retry(context.Background(), newError(ErrorTypeUnauthorized, "u"), nil, 3); retry {
		t.Error("expected no retry once the budget is exhausted")
	}
}

func TestAuthInterceptorRefreshFailureStopsRetry(t *testing.T) {
	provider := &stubTokenProvider{
		refresh: func(context.Context) (string, error) { return "", errors.New("refresh denied") },
	}
	interceptor := NewAuthInterceptor(provider, 3)

	if _, retry := interceptor.Retry(context.Background(), newError(ErrorTypeUnauthorized, "u"), nil, 0); retry {
		t.Error("expected no retry after failed refresh")
	}
	if provider.refreshCalls() != 1 {
		t.Errorf("expected 1 refresh call, got %d", provider.refreshCalls())
	}
}

func TestAuthInterceptorJoinsInFlightRefresh(t *testing.T) {
	started := make(chan struct{})
	finish := make(chan struct{})
	provider := &stubTokenProvider{
		refresh: func(context.Context) (string, error) {
			close(started)
			<-finish
			return "fresh", nil
		},
	}
	interceptor := NewAuthInterceptor(provider, 3)

	ownerDone := make(chan bool, 1)
	go func() {
		_, retry := interceptor.Retry(context.Background(), newError(ErrorTypeUnauthorized, "u"), nil, 0)
		ownerDone <- retry
	}()

	<-started
	if !interceptor.Refreshing() {
		t.Fatal("expected interceptor to report an in-flight refresh")
	}

	joinerDone := make(chan bool, 1)
	go func() {
		_, retry := interceptor.Retry(context.Background(), newError(ErrorTypeUnauthorized, "u"), nil, 0)
		joinerDone <- retry
	}()

	// Give the joiner a moment to park on the in-flight call, then finish.
	time.Sleep(20 * time.Millisecond)
	close(finish)

	if !<-ownerDone {
		t.Error("expected owner to retry after successful refresh")
	}
	if !<-joinerDone {
		t.Error("expected joiner to retry after shared refresh")
	}
	if provider.refreshCalls() != 1 {
		t.Errorf("expected a single shared refresh, got %d", provider.refreshCalls())
	}
	if interceptor.Refreshing() {
		t.Error("expected interceptor back to idle after completion")
	}
}

func TestBackoffInterceptorRetriesTransientFailures(t *testing.T) {
	interceptor := NewBackoffInterceptor()

	cases := []struct {
		name  string
		err   *Error
		retry bool
	}{
		{"timeout", newError(ErrorTypeTimeout, "t"), true},
		{"underlying", wrapUnderlying(errors.New("conn reset")), true},
		{"server 500", &Error{Type: ErrorTypeServer, StatusCode: 500}, true},
		{"server 429", &Error{Type: ErrorTypeServer, StatusCode: 429}, true},
		{"server 404", &Error{Type: ErrorTypeServer, StatusCode: 404}, false},
		{"unauthorized", newError(ErrorTypeUnauthorized, "u"), false},
		{"decoding", newError(ErrorTypeDecoding, "d"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delay, retry := interceptor.Retry(context.Background(), tc.err, nil, 1)
			if retry != tc.retry {
				t.Errorf("retry = %v, want %v", retry, tc.retry)
			}
			if retry && delay <= 0 {
				t.Errorf("expected positive delay, got %v", delay)
			}
		})
	}
}

func TestBackoffInterceptorDelayGrows(t *testing.T) {
	interceptor := NewBackoffInterceptorWithStrategy(
		// Zero jitter keeps the curve deterministic.
		deterministicStrategy{}, 100*time.Millisecond, 10*time.Second, 2.0, 0,
	)

	d0, _ := interceptor.Retry(context.Background(), newError(ErrorTypeTimeout, "t"), nil, 0)
	d2, _ := interceptor.Retry(context.Background(), newError(ErrorTypeTimeout, "t"), nil, 2)
	if d2 <= d0 {
		t.Errorf("expected delay to grow with attempts: attempt0=%v attempt2=%v", d0, d2)
	}
}

type deterministicStrategy struct{}

func (deterministicStrategy) Delay(attempt int, initial, _ time.Duration, multiplier, _ float64) time.Duration {
	d := initial
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * multiplier)
	}
	return d
}
