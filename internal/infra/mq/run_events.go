package mq

import (
	"context"
	"time"

	"subscription_tracker/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

const RoutingKeyReminderRunCompleted = "reminder.run.completed"

// ReminderRunCompletedPayload describes one finished reminder run.
type ReminderRunCompletedPayload struct {
	Trigger    string    `json:"trigger"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Checked    int       `json:"checked"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// RunEventReporter publishes a reminder.run.completed event after every run.
// Publish failures are logged and otherwise ignored.
type RunEventReporter struct {
	publisher eventPublisher
	logger    *logrus.Entry
	now       func() time.Time
}

func NewRunEventReporter(publisher eventPublisher, logger *logrus.Entry) *RunEventReporter {
	return &RunEventReporter{publisher: publisher, logger: logger, now: time.Now}
}

func (r *RunEventReporter) ReportRun(ctx context.Context, trigger string, summary *reminder.Summary, duration time.Duration, err error) {
	payload := ReminderRunCompletedPayload{
		Trigger:    trigger,
		Success:    err == nil,
		Errors:     []string{},
		DurationMs: duration.Milliseconds(),
		FinishedAt: r.now().UTC(),
	}
	if err != nil {
		payload.Error = err.Error()
	}
	if summary != nil {
		payload.Checked = summary.Checked
		payload.Sent = summary.Sent
		payload.Failed = summary.Failed
		payload.Skipped = summary.Skipped
		payload.Errors = summary.Errors
	}

	// The run context may be at its deadline already.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if pubErr := r.publisher.Publish(pubCtx, RoutingKeyReminderRunCompleted, payload); pubErr != nil {
		r.logger.WithError(pubErr).Warn("Failed to publish reminder run event")
	}
}
