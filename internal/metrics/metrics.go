// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	// UpstreamRequests counts outbound Spotify requests by endpoint and status code.
	UpstreamRequests *prometheus.CounterVec
	// UpstreamDuration observes outbound request latency by endpoint.
	UpstreamDuration *prometheus.HistogramVec
	// TokenRefreshes counts refresh attempts by result ("success" or "failure").
	TokenRefreshes *prometheus.CounterVec
	// SkippedArtistBatches counts artist batches dropped from genre resolution.
	SkippedArtistBatches prometheus.Counter
	// Requests counts inbound API requests by route and status code.
	Requests *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "upstream_requests_total",
			Help:      "Outbound Spotify requests by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "insights",
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound Spotify request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		TokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
		SkippedArtistBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "skipped_artist_batches_total",
			Help:      "Artist batches skipped after a failed lookup.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.TokenRefreshes,
		m.SkippedArtistBatches,
		m.Requests,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Transport wraps base and records UpstreamRequests and UpstreamDuration for every round trip.
// The endpoint label is the request path.
func (m *Metrics) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := base.RoundTrip(req)

		endpoint := req.URL.Path
		m.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

		code := "error"
		if resp != nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		m.UpstreamRequests.WithLabelValues(endpoint, code).Inc()

		return resp, err
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
