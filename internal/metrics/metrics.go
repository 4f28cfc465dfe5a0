// Package metrics registers the portal's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_http_requests_total",
		Help: "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes request latency by method and route
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// UploadedRows counts rows accepted by bulk upload batches
	UploadedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_uploaded_rows_total",
		Help: "Total number of rows written by bulk uploads.",
	})

	// DeletedRows counts rows removed by bulk delete batches
	DeletedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_deleted_rows_total",
		Help: "Total number of rows removed by bulk deletes.",
	})
)

// Middleware records request counts and latency for every route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
