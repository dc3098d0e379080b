package lightnet

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// WithTransport sets a custom transport. The default wraps *http.Client.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient routes requests through a custom *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = NewHTTPTransport(client)
	}
}

// WithCodec sets the serializer used for request and response bodies.
func WithCodec(codec Codec) Option {
	return func(c *Client) {
		c.codec = codec
	}
}

// WithInterceptor sets the interceptor consulted for request adaptation
// and retry decisions.
func WithInterceptor(i Interceptor) Option {
	return func(c *Client) {
		c.interceptor = i
	}
}

// WithPlugins registers lifecycle observers, notified in the given order.
func WithPlugins(plugins ...Plugin) Option {
	return func(c *Client) {
		c.plugins = append(c.plugins, plugins...)
	}
}

// WithMaxRetries bounds how many retries the interceptor may grant per
// logical request.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithTimeout sets the default per-attempt timeout used when an Endpoint
// does not carry its own.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit throttles dispatch to rps requests per second with the
// given burst, waiting cooperatively before each attempt.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTaskIDGenerator sets a custom generator for auto-assigned task IDs.
func WithTaskIDGenerator(gen func() TaskID) Option {
	return func(c *Client) {
		c.newTaskID = gen
	}
}

// ValidateConfiguration checks the configured client for inconsistencies.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	if c.maxRetries < 0 {
		problems = append(problems, "maxRetries must be non-negative")
	}
	if c.timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.codec == nil {
		problems = append(problems, "codec must not be nil")
	}
	if c.newTaskID == nil {
		problems = append(problems, "task ID generator must not be nil")
	}
	if c.limiter != nil && (c.limiter.Limit() <= 0 || c.limiter.Burst() <= 0) {
		problems = append(problems, "rate limit and burst must be positive")
	}

	if len(problems) > 0 {
		return &Error{
			Type:    ErrorTypeUnderlying,
			Message: fmt.Sprintf("invalid configuration: %s", strings.Join(problems, "; ")),
		}
	}
	return nil
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}
