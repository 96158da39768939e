package middleware

import (
	"strconv"
	"time"

	"tutelo/internal/metrics"

	"github.com/labstack/echo/v4"
)

// PrometheusMetrics observes every facade request: a count by method, route
// and status, latency by method and route, and an in-flight gauge. Labels use
// the echo route template, not the raw URL, so cardinality stays bounded.
// Scrapes of /metrics itself are not counted.
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Path()
		if route == "/metrics" {
			return next(c)
		}

		metrics.HTTPRequestsInFlight.Inc()
		start := time.Now()

		err := next(c)

		metrics.HTTPRequestsInFlight.Dec()

		method := c.Request().Method
		metrics.HTTPRequestDuration.WithLabelValues(method, route).
			Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(
			method,
			route,
			strconv.Itoa(c.Response().Status),
		).Inc()

		return err
	}
}
