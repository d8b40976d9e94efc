// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscription_tracker/internal/domain/identity"
	"subscription_tracker/internal/domain/mail"
	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/domain/subscription"

	"github.com/sirupsen/logrus"
)

var ErrInvalidWindow = errors.New("window days must not be negative")

// ReminderService defines the renewal reminder workflow.
type ReminderService interface {
	// RunReminderCheck scans upcoming renewals and emails every owner whose
	// subscription is due today. Per-item failures are reported in the summary;
	// only a failed candidate query is returned as an error.
	RunReminderCheck(ctx context.Context) (*reminder.Summary, error)
	// GetUpcomingReminders lists the owner's subscriptions that would be reminded
	// within the next windowDays days. Read only.
	GetUpcomingReminders(ctx context.Context, ownerID string, windowDays int) ([]*subscription.Subscription, error)
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	subRepo    subscription.Repository
	resolver   identity.Resolver
	dispatcher mail.Dispatcher
	logger     *logrus.Entry
	now        func() time.Time
	location   *time.Location
	policy     reminder.Policy
	markers    reminder.MarkerStore
}

type ReminderOption func(*ReminderServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ReminderOption {
	return func(s *ReminderServiceImpl) { s.now = now }
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) ReminderOption {
	return func(s *ReminderServiceImpl) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithPolicy selects the eligibility policy. Policies that use markers fall back
// to an in-memory store when markers is nil.
func WithPolicy(policy reminder.Policy, markers reminder.MarkerStore) ReminderOption {
	return func(s *ReminderServiceImpl) {
		s.policy = policy
		s.markers = markers
	}
}

func NewReminderServiceImpl(
	sr subscription.Repository,
	resolver identity.Resolver,
	dispatcher mail.Dispatcher,
	logger *logrus.Entry,
	opts ...ReminderOption,
) *ReminderServiceImpl {
	s := &ReminderServiceImpl{
		subRepo:    sr,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		location:   time.Local,
		policy:     reminder.PolicyExact,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.UsesMarkers() && s.markers == nil {
		s.markers = reminder.NewMemoryMarkerStore()
	}
	return s
}

type ownerLookup struct {
	identity *identity.Identity
	err      error
}

func (s *ReminderServiceImpl) today() time.Time {
	return reminder.Today(s.now(), s.location)
}

func (s *ReminderServiceImpl) RunReminderCheck(ctx context.Context) (*reminder.Summary, error) {
	today := s.today()
	log := s.logger.WithFields(logrus.Fields{
		"today":  today.Format(reminder.DateLayout),
		"policy": s.policy,
	})
	log.Info("Starting reminder check")

	// 1. Candidates
	candidates, err := s.subRepo.List(ctx, subscription.Filter{
		ActiveOnly:          true,
		ReminderEnabledOnly: true,
		RenewalFrom:         today,
		RenewalTo:           reminder.AddDays(today, reminder.ScanWindowDays),
	})
	if err != nil {
		log.WithError(err).Error("Failed to query reminder candidates")
		return nil, fmt.Errorf("failed to query reminder candidates: %w", err)
	}

	summary := reminder.NewSummary()
	summary.Checked = len(candidates)
	if len(candidates) == 0 {
		log.Info("No subscriptions renew within the scan window")
		return summary, nil
	}

	// 2. Owners, each resolved once
	owners := s.resolveOwners(ctx, candidates)

	// 3-4. Eligibility and dispatch
	for _, sub := range candidates {
		s.processCandidate(ctx, sub, today, owners, summary)
	}

	log.WithFields(logrus.Fields{
		"checked": summary.Checked,
		"sent":    summary.Sent,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	}).Info("Reminder check finished")
	return summary, nil
}

func (s *ReminderServiceImpl) resolveOwners(ctx context.Context, candidates []*subscription.Subscription) map[string]ownerLookup {
	owners := make(map[string]ownerLookup)
	for _, sub := range candidates {
		if _, seen := owners[sub.OwnerID]; seen {
			continue
		}
		ident, err := s.resolver.Resolve(ctx, sub.OwnerID)
		if err == nil && (ident == nil || ident.Email == "") {
			err = fmt.Errorf("no email address on record: %w", identity.ErrNotFound)
		}
		if err != nil {
			s.logger.WithError(err).WithField("owner_id", sub.OwnerID).Warn("Could not resolve subscription owner")
		}
		owners[sub.OwnerID] = ownerLookup{identity: ident, err: err}
	}
	return owners
}

func (s *ReminderServiceImpl) processCandidate(
	ctx context.Context,
	sub *subscription.Subscription,
	today time.Time,
	owners map[string]ownerLookup,
	summary *reminder.Summary,
) {
	log := s.logger.WithField("subscription_id", sub.ID)

	renewal, err := reminder.ParseRenewalDate(sub.NextRenewalDate)
	if err != nil {
		log.WithError(err).Warn("Skipping subscription with unusable renewal date")
		summary.RecordSkipped()
		return
	}

	daysUntil := reminder.DaysUntil(renewal, today)
	if !s.policy.IsDue(daysUntil, sub.LeadDays()) {
		return
	}

	if s.policy.UsesMarkers() {
		notified, err := s.markers.IsNotified(ctx, sub.ID, renewal)
		if err != nil {
			summary.RecordFailure("failed to check reminder marker for subscription %s: %v", sub.ID, err)
			return
		}
		if notified {
			log.Debug("Reminder already sent for this renewal")
			return
		}
	}

	owner := owners[sub.OwnerID]
	if owner.err != nil {
		summary.RecordFailure("identity unavailable for subscription %s: %v", sub.ID, owner.err)
		return
	}

	msg, err := RenderReminder(sub, owner.identity.DisplayName, renewal, daysUntil)
	if err != nil {
		summary.RecordFailure("failed to render reminder for subscription %s: %v", sub.ID, err)
		return
	}

	if !s.dispatcher.Send(ctx, owner.identity.Email, msg.Subject, msg.PlainBody, msg.RichBody) {
		summary.RecordFailure("failed to send reminder for subscription %s to %s", sub.ID, owner.identity.Email)
		return
	}
	summary.RecordSent()
	log.WithField("days_until", daysUntil).Info("Reminder sent")

	if s.policy.UsesMarkers() {
		if err := s.markers.MarkNotified(ctx, sub.ID, renewal); err != nil {
			log.WithError(err).Warn("Reminder sent but marker could not be stored")
		}
	}
}

func (s *ReminderServiceImpl) GetUpcomingReminders(ctx context.Context, ownerID string, windowDays int) ([]*subscription.Subscription, error) {
	if windowDays < 0 {
		return nil, ErrInvalidWindow
	}
	today := s.today()

	subs, err := s.subRepo.List(ctx, subscription.Filter{
		OwnerID:             ownerID,
		ActiveOnly:          true,
		ReminderEnabledOnly: true,
		RenewalFrom:         today,
		RenewalTo:           reminder.AddDays(today, windowDays),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming subscriptions: %w", err)
	}

	upcoming := make([]*subscription.Subscription, 0, len(subs))
	for _, sub := range subs {
		renewal, err := reminder.ParseRenewalDate(sub.NextRenewalDate)
		if err != nil {
			continue
		}
		if s.policy.IsDue(reminder.DaysUntil(renewal, today), sub.LeadDays()) {
			upcoming = append(upcoming, sub)
		}
	}
	return upcoming, nil
}
