package api

import (
	"strconv"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request-level and domain-level Prometheus instrumentation, grounded on
// the promauto registration style used throughout the retrieved
// tomtom215-cartographus example's internal/metrics package — the
// teacher itself has no metrics layer to generalise from.
var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizkernel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	answersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizkernel_answers_submitted_total",
			Help: "Total number of answers submitted, by correctness",
		},
		[]string{"correct"},
	)

	sessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizkernel_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	sessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizkernel_sessions_completed_total",
			Help: "Total number of sessions that reached completion",
		},
	)
)

// metricsMiddleware records request duration and status per route.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
