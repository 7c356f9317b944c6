package metrics

import (
	"net/http"
	"strconv"
	"time"

	"meeting-notifier/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meeting_notifier"

var (
	// pipelineOutcomes counts terminal states of /process-meeting.
	// Labels:
	// - outcome: "empty_history", "no_recipients", "sent" or "failed"
	pipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "outcomes_total",
			Help:      "Number of processed meetings by terminal outcome.",
		},
		[]string{"outcome"},
	)

	// summaryDocuments counts summary documents by where their content came from.
	// Labels:
	// - source: "generated" or one of the placeholder kinds
	summaryDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summary",
			Name:      "documents_total",
			Help:      "Number of summary documents produced, by source.",
		},
		[]string{"source"},
	)

	mailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "send_duration_seconds",
			Help:      "Duration of mail dispatch including channel resolution.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func ObserveOutcome(o models.Outcome) {
	pipelineOutcomes.WithLabelValues(string(o)).Inc()
}

func ObserveSummary(source string) {
	summaryDocuments.WithLabelValues(source).Inc()
}

// ObserveSend records how long a dispatch took and whether it failed.
func ObserveSend(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	mailSendDuration.WithLabelValues(status).Observe(d.Seconds())
}

// HTTPMiddleware instruments each request with Prometheus metrics.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			status := strconv.Itoa(c.Response().Status)
			labels := []string{c.Request().Method, route, status}
			httpRequestsTotal.WithLabelValues(labels...).Inc()
			httpRequestDurationSeconds.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
