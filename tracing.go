package lightnet

import (
	"context"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingPlugin records one OpenTelemetry client span per request attempt,
// carrying the HTTP method, full URL and, on completion, the status code
// or error.
type TracingPlugin struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[*http.Request]trace.Span
}

// NewTracingPlugin builds a tracing plugin from a TracerProvider.
func NewTracingPlugin(provider trace.TracerProvider) *TracingPlugin {
	return &TracingPlugin{
		tracer: provider.Tracer("github.com/aaguseynov/lightnet"),
		spans:  make(map[*http.Request]trace.Span),
	}
}

// WillSend implements Plugin.
func (p *TracingPlugin) WillSend(req *http.Request) {
	if req == nil {
		return
	}
	ctx := req.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, span := p.tracer.Start(ctx, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
		),
	)

	p.mu.Lock()
	p.spans[req] = span
	p.mu.Unlock()
}

// DidReceive implements Plugin.
func (p *TracingPlugin) DidReceive(resp *Response, err error, req *http.Request) {
	if req == nil {
		return
	}
	p.mu.Lock()
	span, ok := p.spans[req]
	delete(p.spans, req)
	p.mu.Unlock()
	if !ok {
		return
	}

	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
