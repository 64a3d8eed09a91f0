// Package metrics registers the service's Prometheus collectors on the
// default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lipidcare_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lipidcare_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lipidcare_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	assessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lipidcare_assessments_total",
			Help: "Risk assessments produced, by level and scoring source",
		},
		[]string{"level", "source"},
	)

	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lipidcare_extractions_total",
			Help: "Lab report extractions, by outcome",
		},
		[]string{"outcome"},
	)

	activitiesLogged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lipidcare_activities_logged_total",
			Help: "Daily activity records logged",
		},
	)

	escalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lipidcare_adherence_escalations_total",
			Help: "Adherence escalations raised, by flag",
		},
		[]string{"flag"},
	)

	collaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lipidcare_collaborator_duration_seconds",
			Help:    "Latency of calls to the OCR engine and classifier",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collaborator", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordAssessment(level, source string) {
	assessmentsTotal.WithLabelValues(level, source).Inc()
}

// RecordExtraction takes an outcome of ok, partial, no_text, insufficient_data or error.
func RecordExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

func RecordActivityLogged() {
	activitiesLogged.Inc()
}

func RecordEscalation(flag string) {
	escalationsTotal.WithLabelValues(flag).Inc()
}

func RecordCollaboratorCall(collaborator string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	collaboratorDuration.WithLabelValues(collaborator, status).Observe(d.Seconds())
}
