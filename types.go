package lightnet

import (
	"context"
	"net/http"
	"time"
)

// Transport dispatches a single HTTP request and returns the fully read
// response. Cancellation is driven through the request's context; the
// default implementation wraps *http.Client.
type Transport interface {
	Send(req *http.Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(*http.Request) (*Response, error)

func (f TransportFunc) Send(req *http.Request) (*Response, error) {
	return f(req)
}

// Response is the raw transport-level outcome handed to the validator,
// the codec and the plugins.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// TaskID identifies one logical request for cancellation bookkeeping.
type TaskID string

// Interceptor adapts outgoing requests and decides retry policy for
// classified failures.
//
// Adapt may return a modified request (for example with an Authorization
// header injected); the adapted request is the one sent and the one
// reported to plugins. Returning an error aborts the attempt.
//
// Retry is consulted after a classified failure while the retry budget
// lasts. It returns a delay and whether to retry: (0, true) retries
// immediately, (d, true) retries after d, (_, false) propagates the error.
// req is nil when the request could not be built.
type Interceptor interface {
	Adapt(ctx context.Context, req *http.Request) (*http.Request, error)
	Retry(ctx context.Context, err *Error, req *http.Request, retryCount int) (time.Duration, bool)
}

// Plugin observes the request lifecycle. Hooks run sequentially in
// registration order, never alter control flow, and must not panic.
//
// WillSend fires once per attempt with the adapted request before
// dispatch. DidReceive fires with either a response (success) or an error
// (failure); req is nil when request building itself failed.
type Plugin interface {
	WillSend(req *http.Request)
	DidReceive(resp *Response, err error, req *http.Request)
}

// BasePlugin provides no-op hook implementations for embedding, so plugin
// types only override what they observe.
type BasePlugin struct{}

func (BasePlugin) WillSend(*http.Request)                     {}
func (BasePlugin) DidReceive(*Response, error, *http.Request) {}

// Codec is the serializer boundary: request bodies go through Encode,
// response bodies through Decode.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// Empty is the designated response marker for calls whose success carries
// no body (204 or an empty payload).
type Empty struct{}

// Option configures a Client at construction time.
type Option func(*Client)

// CallOption configures a single Execute call.
type CallOption func(*callOptions)

type callOptions struct {
	taskID TaskID
}

// WithTaskID supplies the task identifier used for cancellation
// bookkeeping instead of a generated one.
func WithTaskID(id TaskID) CallOption {
	return func(o *callOptions) {
		o.taskID = id
	}
}
