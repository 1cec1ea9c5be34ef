package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsMiddleware records RED metrics per route.
func MetricsMiddleware(reg prometheus.Registerer) fiber.Handler {
	factory := promauto.With(reg)
	httpDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})
	httpRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"path", "method", "status"})

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// route pattern keeps label cardinality bounded
		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		code := strconv.Itoa(status)
		httpDuration.WithLabelValues(path, c.Method(), code).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(path, c.Method(), code).Inc()
		return err
	}
}
