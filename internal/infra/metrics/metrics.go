package metrics

import (
	"context"
	"strconv"
	"time"

	"subscription_tracker/internal/domain/reminder"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reminder runs by trigger (scheduled, manual) and outcome (success, error)
	ReminderRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_runs_total",
			Help: "Total number of reminder check runs",
		},
		[]string{"trigger", "outcome"},
	)

	// Per-subscription results: sent, failed, skipped
	ReminderNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_notifications_total",
			Help: "Reminder notifications by result",
		},
		[]string{"result"},
	)

	ReminderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_run_duration_seconds",
			Help:    "Reminder check run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
	)

	ReminderLastCandidates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_last_run_candidates",
			Help: "Candidates checked by the most recent successful reminder run",
		},
	)

	ReminderLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_last_success_timestamp_seconds",
			Help: "Unix time of the most recent successful reminder run",
		},
	)

	// HTTP request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RunReporter records reminder run outcomes as Prometheus metrics.
type RunReporter struct{}

func NewRunReporter() *RunReporter {
	return &RunReporter{}
}

func (RunReporter) ReportRun(_ context.Context, trigger string, summary *reminder.Summary, duration time.Duration, err error) {
	ReminderRunDuration.Observe(duration.Seconds())
	if err != nil {
		ReminderRuns.WithLabelValues(trigger, "error").Inc()
		return
	}
	ReminderRuns.WithLabelValues(trigger, "success").Inc()
	ReminderNotifications.WithLabelValues("sent").Add(float64(summary.Sent))
	ReminderNotifications.WithLabelValues("failed").Add(float64(summary.Failed))
	ReminderNotifications.WithLabelValues("skipped").Add(float64(summary.Skipped))
	ReminderLastCandidates.Set(float64(summary.Checked))
	ReminderLastSuccess.SetToCurrentTime()
}

// GinMiddleware records request latency labelled by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
