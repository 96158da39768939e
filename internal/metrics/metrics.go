package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutelo_http_requests_total",
		Help: "Number of HTTP requests handled by the facade.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutelo_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tutelo_http_requests_in_flight",
		Help: "Requests currently being handled by the facade.",
	})

	HydrationFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutelo_hydration_fetches_total",
		Help: "Per-hotel detail fetches issued by the photo hydration pass.",
	}, []string{"result"})
)
