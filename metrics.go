package lightnet

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPlugin exports Prometheus metrics for the request lifecycle:
// totals and durations by method/status/endpoint, an in-flight gauge and
// an error counter by failure kind. It observes only; the pipeline never
// depends on it.
type MetricsPlugin struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec

	mu      sync.Mutex
	started map[*http.Request]time.Time
}

// NewMetricsPlugin registers the collectors on the default registerer.
func NewMetricsPlugin() *MetricsPlugin {
	return NewMetricsPluginWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsPluginWithRegistry registers the collectors on the supplied
// registerer, which tests and multi-client setups can isolate.
func NewMetricsPluginWithRegistry(registry prometheus.Registerer) *MetricsPlugin {
	return &MetricsPlugin{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "lightnet_requests_total",
				Help: "Total number of HTTP requests completed",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lightnet_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lightnet_requests_in_flight",
				Help: "Number of HTTP request attempts currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "lightnet_errors_total",
				Help: "Total number of failed HTTP requests by error kind",
			},
			[]string{"type", "method", "endpoint"},
		),
		started: make(map[*http.Request]time.Time),
	}
}

// WillSend implements Plugin.
func (m *MetricsPlugin) WillSend(req *http.Request) {
	if req == nil {
		return
	}
	m.mu.Lock()
	m.started[req] = time.Now()
	m.mu.Unlock()

	m.requestsInFlight.WithLabelValues(req.Method, endpointLabel(req)).Inc()
}

// DidReceive implements Plugin.
func (m *MetricsPlugin) DidReceive(resp *Response, err error, req *http.Request) {
	method := "unknown"
	endpoint := "unknown"
	if req != nil {
		method = req.Method
		endpoint = endpointLabel(req)

		m.mu.Lock()
		start, ok := m.started[req]
		delete(m.started, req)
		m.mu.Unlock()

		// Requests that failed before dispatch never passed WillSend, so
		// the gauge and the send counters must not move for them.
		if ok {
			m.requestsInFlight.WithLabelValues(method, endpoint).Dec()

			status := statusLabel(resp, err)
			m.requestsTotal.WithLabelValues(method, status, endpoint).Inc()
			m.requestDuration.WithLabelValues(method, status, endpoint).Observe(time.Since(start).Seconds())
		}
	}

	if err != nil {
		kind := ErrorTypeUnderlying
		var cerr *Error
		if errors.As(err, &cerr) {
			kind = cerr.Type
		}
		m.errorsTotal.WithLabelValues(kind, method, endpoint).Inc()
	}
}

func statusLabel(resp *Response, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	if code, ok := StatusCode(err); ok {
		return strconv.Itoa(code)
	}
	return "0"
}
