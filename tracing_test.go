package lightnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"
)

func TestTracingPluginLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	plugin := NewTracingPlugin(noop.NewTracerProvider())
	client := New(WithPlugins(plugin))

	if err := client.Execute(context.Background(), Endpoint{BaseURL: server.URL, Path: "/traced"}, nil); err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}

	plugin.mu.Lock()
	pending := len(plugin.spans)
	plugin.mu.Unlock()
	if pending != 0 {
		t.Errorf("expected no dangling spans, got %d", pending)
	}
}

func TestTracingPluginHandlesFailuresAndNilRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	plugin := NewTracingPlugin(noop.NewTracerProvider())
	client := New(WithPlugins(plugin))

	if err := client.Execute(context.Background(), Endpoint{BaseURL: server.URL, Path: "/bad"}, nil); err == nil {
		t.Fatal("expected an error")
	}

	// Build failures notify plugins with a nil request; the plugin must
	// tolerate that.
	if err := client.Execute(context.Background(), Endpoint{BaseURL: "", Path: "/x"}, nil); err == nil {
		t.Fatal("expected an InvalidURL error")
	}

	plugin.mu.Lock()
	pending := len(plugin.spans)
	plugin.mu.Unlock()
	if pending != 0 {
		t.Errorf("expected no dangling spans, got %d", pending)
	}
}
