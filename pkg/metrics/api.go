package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pharmacy"

// APIMetrics records calls made to the pharmacy REST API.
type APIMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAPIMetrics registers the API client metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Requests sent to the pharmacy API.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Round-trip latency of pharmacy API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &APIMetrics{requests: requests, duration: duration}
}

// Observe records one completed request. A zero status means the transport
// failed before a response arrived.
func (a *APIMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if a == nil || a.requests == nil {
		return
	}
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	a.requests.WithLabelValues(method, normalizeLabel(route), statusLabel).Inc()
	a.duration.WithLabelValues(method, normalizeLabel(route)).Observe(elapsed.Seconds())
}

// InstrumentTransport wraps next so every round trip is observed.
func (a *APIMetrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if a == nil || a.requests == nil {
		return next
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		a.Observe(req.Method, RouteLabel(req.URL.Path), status, time.Since(start))
		return resp, err
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// RouteLabel collapses numeric path segments so ids do not explode label
// cardinality: /order/42 becomes /order/{id}.
func RouteLabel(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
