package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_operations_total",
			Help: "Order endpoint calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	orderEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_events_total",
			Help: "Order events seen by the audit consumer",
		},
		[]string{"type"},
	)
)

// PrometheusMiddleware records request counts and latencies per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}

// Order operation outcomes, derived from the response status class.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Outcome buckets an HTTP status: 4xx is a rejected request, 5xx a failure.
func Outcome(httpStatus int) string {
	switch {
	case httpStatus >= 500:
		return OutcomeFailed
	case httpStatus >= 400:
		return OutcomeRejected
	default:
		return OutcomeSuccess
	}
}

// RecordOrderOperation counts one order endpoint call, e.g. ("create", 201).
func RecordOrderOperation(operation string, httpStatus int) {
	orderOperations.WithLabelValues(operation, Outcome(httpStatus)).Inc()
}

func RecordOrderEvent(eventType string) {
	orderEvents.WithLabelValues(eventType).Inc()
}
