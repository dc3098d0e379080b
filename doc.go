// Package lightnet is a typed HTTP request facade: endpoint descriptors go
// in, decoded response values come out, and the pipeline in between takes
// care of the cross-cutting concerns:
//
//   - Request building from declarative Endpoint values (URL, query, body)
//   - Interceptors that rewrite outgoing requests and decide retry policy
//   - Single-flight token refresh for 401 responses (AuthInterceptor)
//   - Exponential-backoff retries for transient failures (BackoffInterceptor)
//   - Passive lifecycle plugins: zerolog logging, Prometheus metrics,
//     OpenTelemetry client spans
//   - Cancellation of individual in-flight requests by task ID
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - A closed error taxonomy (*Error) so callers can branch on failure kind
//   - Safe concurrent use of a single *Client instance
//   - Extensibility via user supplied Interceptor / Plugin / Codec / Transport
//
// Typical usage:
//
//	client := lightnet.New(
//	    lightnet.WithMaxRetries(3),
//	    lightnet.WithInterceptor(lightnet.NewAuthInterceptor(provider, 3)),
//	    lightnet.WithPlugins(lightnet.NewConsoleLoggerPlugin()),
//	)
//	user, err := lightnet.Do[User](ctx, client, lightnet.Endpoint{
//	    BaseURL: "https://api.example.com",
//	    Path:    "/users/me",
//	})
//
// The wire format is JSON with snake_case keys translated to and from Go's
// exported camel-case field names; supply your own Codec to opt out.
package lightnet
