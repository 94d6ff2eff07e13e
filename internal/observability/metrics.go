package observability

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	enrollmentsTotal   *prometheus.CounterVec
	attemptsStarted    *prometheus.CounterVec
	attemptsSubmitted  *prometheus.CounterVec
	attemptPercentage  prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors for the API and the quiz lifecycle.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizhub_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizhub_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizhub_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		enrollmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizhub_enrollments_total",
			Help: "Enrollment attempts by outcome.",
		}, []string{"result"})

		attemptsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizhub_attempts_started_total",
			Help: "Attempt start requests by outcome.",
		}, []string{"result"})

		attemptsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizhub_attempts_submitted_total",
			Help: "Attempt submissions by outcome.",
		}, []string{"result"})

		attemptPercentage = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizhub_attempt_percentage",
			Help:    "Distribution of scored attempt percentages.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			enrollmentsTotal,
			attemptsStarted,
			attemptsSubmitted,
			attemptPercentage,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Enrollments counts enrollment outcomes.
func Enrollments() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentsTotal
}

// AttemptsStarted counts attempt start outcomes.
func AttemptsStarted() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsStarted
}

// AttemptsSubmitted counts submission outcomes.
func AttemptsSubmitted() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsSubmitted
}

// AttemptPercentage records the percentage of each scored attempt.
func AttemptPercentage() prometheus.Histogram {
	RegisterMetrics()
	return attemptPercentage
}

// MetricsHandler serves the quizhub collectors for scraping. A family that
// fails to gather is skipped instead of failing the whole scrape.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: 4,
		Timeout:             10 * time.Second,
	}))
}
