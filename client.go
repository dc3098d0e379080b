package lightnet

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client executes Endpoint descriptors over a single Transport, layering
// interceptor-driven retries, plugin notifications, typed decoding and
// per-task cancellation on top. It is safe for concurrent use; individual
// calls run concurrently and only the cancellation and retry bookkeeping
// is serialized.
type Client struct {
	transport   Transport
	codec       Codec
	interceptor Interceptor
	plugins     []Plugin
	maxRetries  int
	timeout     time.Duration
	limiter     *rate.Limiter
	newTaskID   func() TaskID

	tasks *taskRegistry

	validationError error
}

// New constructs a Client from functional options. A best effort
// validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	c := &Client{
		codec:      JSONCodec{},
		maxRetries: 3,
		timeout:    DefaultTimeout,
		newTaskID:  func() TaskID { return TaskID(uuid.NewString()) },
		tasks:      newTaskRegistry(),
	}

	for _, option := range options {
		option(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(&http.Client{})
	}

	if err := c.ValidateConfiguration(); err != nil {
		c.validationError = err
	}

	return c
}

// Execute runs one logical request described by endpoint and decodes the
// response body into out. Pass nil (or a *Empty) for calls whose success
// carries no body. The task ID defaults to a fresh UUID; supply
// WithTaskID to cancel the call later via CancelRequest.
//
// Failures are always *Error values from the closed taxonomy.
func (c *Client) Execute(ctx context.Context, endpoint Endpoint, out any, opts ...CallOption) error {
	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.taskID == "" {
		options.taskID = c.newTaskID()
	}
	return c.do(ctx, endpoint, out, options.taskID)
}

// Do is the typed form of Execute, returning the decoded value directly.
func Do[T any](ctx context.Context, c *Client, endpoint Endpoint, opts ...CallOption) (T, error) {
	var out T
	err := c.Execute(ctx, endpoint, &out, opts...)
	return out, err
}

// CancelRequest cancels the transport handle registered under id, if any.
// The awaiting caller observes a Cancelled error through the normal
// failure path. Calling it again, or with an unknown id, is a no-op.
func (c *Client) CancelRequest(id TaskID) {
	c.tasks.cancel(id)
}

// CancelAllRequests cancels every in-flight handle and resets all retry
// bookkeeping, including counters for endpoints with no cancelled call.
func (c *Client) CancelAllRequests() {
	c.tasks.cancelAll()
}

// do runs one attempt and recurses for retries, carrying the same task ID
// so cancellation follows the logical request across attempts.
func (c *Client) do(ctx context.Context, endpoint Endpoint, out any, taskID TaskID) error {
	fingerprint := endpoint.fingerprint()
	attempt := c.tasks.retryCount(fingerprint)

	req, err := c.buildRequest(ctx, endpoint)
	if err == nil && c.interceptor != nil {
		req, err = c.interceptor.Adapt(ctx, req)
	}
	if err != nil {
		return c.handleFailure(ctx, endpoint, req, out, taskID, fingerprint, attempt, err)
	}

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return c.handleFailure(ctx, endpoint, req, out, taskID, fingerprint, attempt, classifySendError(werr))
		}
	}

	for _, p := range c.plugins {
		p.WillSend(req)
	}

	// The cancel handle is registered before dispatch so a concurrent
	// CancelRequest can find it; it is removed as soon as the transport
	// returns, regardless of outcome.
	sendCtx, cancel := context.WithTimeout(ctx, c.timeoutFor(endpoint))
	c.tasks.register(taskID, cancel)

	resp, sendErr := c.transport.Send(req.WithContext(sendCtx))

	c.tasks.unregister(taskID)
	cancel()

	if sendErr != nil {
		return c.handleFailure(ctx, endpoint, req, out, taskID, fingerprint, attempt, classifySendError(sendErr))
	}

	if verr := ValidateResponse(resp); verr != nil {
		return c.handleFailure(ctx, endpoint, req, out, taskID, fingerprint, attempt, verr)
	}

	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		if isEmptyTarget(out) {
			c.tasks.clearRetries(fingerprint)
			c.notifyDidReceive(resp, nil, req)
			return nil
		}
		if len(resp.Body) == 0 {
			noData := newError(ErrorTypeNoData, "response body is empty")
			return c.handleFailure(ctx, endpoint, req, out, taskID, fingerprint, attempt, noData)
		}
	}

	if out != nil {
		if decodeErr := c.codec.Decode(resp.Body, out); decodeErr != nil {
			derr := &Error{Type: ErrorTypeDecoding, Message: "cannot decode response body", Cause: decodeErr}
			return c.handleFailure(ctx, endpoint, req, out, taskID, fingerprint, attempt, derr)
		}
	}

	c.tasks.clearRetries(fingerprint)
	c.notifyDidReceive(resp, nil, req)
	return nil
}

// handleFailure implements the retry decision path. Classified failures
// are reported to plugins and then offered to the interceptor while the
// retry budget lasts; anything outside the taxonomy is wrapped as
// Underlying and propagated directly without consulting the interceptor.
func (c *Client) handleFailure(ctx context.Context, endpoint Endpoint, req *http.Request, out any, taskID TaskID, fingerprint string, attempt int, err error) error {
	var cerr *Error
	if !errors.As(err, &cerr) {
		wrapped := wrapUnderlying(err)
		c.notifyDidReceive(nil, wrapped, req)
		c.tasks.clearRetries(fingerprint)
		return wrapped
	}

	c.notifyDidReceive(nil, cerr, req)

	if c.interceptor != nil && attempt < c.maxRetries {
		delay, retry := c.interceptor.Retry(ctx, cerr, req, attempt)
		if retry {
			c.tasks.incrementRetries(fingerprint)
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					c.tasks.clearRetries(fingerprint)
					// The context error is the terminal outcome of this
					// call, so plugins hear about it like any other.
					terminal := classifySendError(ctx.Err())
					c.notifyDidReceive(nil, terminal, req)
					return terminal
				}
			}
			return c.do(ctx, endpoint, out, taskID)
		}
	}

	c.tasks.clearRetries(fingerprint)
	return cerr
}

func (c *Client) notifyDidReceive(resp *Response, err error, req *http.Request) {
	for _, p := range c.plugins {
		p.DidReceive(resp, err, req)
	}
}

func (c *Client) timeoutFor(endpoint Endpoint) time.Duration {
	if endpoint.Timeout > 0 {
		return endpoint.Timeout
	}
	return c.timeout
}

// isEmptyTarget reports whether out is the designated empty-response
// marker: nil or a pointer to Empty.
func isEmptyTarget(out any) bool {
	if out == nil {
		return true
	}
	_, ok := out.(*Empty)
	return ok
}

// classifySendError maps a raw transport failure onto the taxonomy:
// context cancellation becomes Cancelled, deadline expiry or a net-level
// timeout becomes Timeout, everything else is wrapped as Underlying.
func classifySendError(err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Type: ErrorTypeCancelled, Message: "request cancelled", Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Cause: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Cause: err}
	}
	return wrapUnderlying(err)
}

// HTTPTransport adapts *http.Client to the Transport interface, reading
// the response body eagerly so handles can be released before decoding.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps an *http.Client. Per-request timeouts are driven
// through the request context, so the wrapped client's own Timeout should
// normally stay zero.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Send implements Transport.
func (t *HTTPTransport) Send(req *http.Request) (*Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// endpointLabel reduces a request to host+path for metric labels.
func endpointLabel(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}
	host := req.URL.Host
	path := req.URL.Path
	if path == "" || path == "/" {
		return host + "/"
	}
	return host + path
}
