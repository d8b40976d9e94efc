package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"subscription_tracker/internal/domain/plan"
	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/domain/subscription"
	idb "subscription_tracker/internal/infra/database"

	"github.com/google/uuid"
)

// Custom application-level errors for subscription service
var ErrSubscriptionLimitReached = errors.New("subscription limit reached for your current plan")
var ErrRenewalDateRequired = errors.New("nextRenewalDate is required and cannot be empty")
var ErrInvalidRenewalDate = errors.New("nextRenewalDate is not a valid date")
var ErrInvalidLeadDays = fmt.Errorf("reminderDaysBefore must be between 1 and %d", reminder.MaxLeadDays)

// CreateSubscriptionInput is the payload of a new subscription.
type CreateSubscriptionInput struct {
	Name               string  `json:"name" binding:"required,max=200"`
	Amount             float64 `json:"amount" binding:"gt=0"`
	Currency           string  `json:"currency" binding:"omitempty,len=3"`
	BillingCycle       string  `json:"billingCycle" binding:"required,billing_cycle"`
	NextRenewalDate    string  `json:"nextRenewalDate"`
	Category           string  `json:"category" binding:"required"`
	Description        string  `json:"description"`
	Website            string  `json:"website" binding:"omitempty,url"`
	IsActive           *bool   `json:"isActive"`
	ReminderEnabled    *bool   `json:"reminderEnabled"`
	ReminderDaysBefore *int    `json:"reminderDaysBefore"`
	PaymentMethod      string  `json:"paymentMethod" binding:"omitempty,payment_method"`
	LastFourDigits     string  `json:"lastFourDigits" binding:"omitempty,len=4,numeric"`
	CardBrand          string  `json:"cardBrand"`
	IsTrial            bool    `json:"isTrial"`
	TrialEndDate       string  `json:"trialEndDate"`
}

// UpdateSubscriptionInput is a partial update; nil fields are left untouched.
type UpdateSubscriptionInput struct {
	Name               *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Amount             *float64 `json:"amount" binding:"omitempty,gt=0"`
	Currency           *string  `json:"currency" binding:"omitempty,len=3"`
	BillingCycle       *string  `json:"billingCycle" binding:"omitempty,billing_cycle"`
	NextRenewalDate    *string  `json:"nextRenewalDate"`
	Category           *string  `json:"category"`
	Description        *string  `json:"description"`
	Website            *string  `json:"website"`
	IsActive           *bool    `json:"isActive"`
	ReminderEnabled    *bool    `json:"reminderEnabled"`
	ReminderDaysBefore *int     `json:"reminderDaysBefore"`
	PaymentMethod      *string  `json:"paymentMethod" binding:"omitempty,payment_method"`
	LastFourDigits     *string  `json:"lastFourDigits"`
	CardBrand          *string  `json:"cardBrand"`
	IsTrial            *bool    `json:"isTrial"`
	TrialEndDate       *string  `json:"trialEndDate"`
}

type SubscriptionService struct {
	subRepo subscription.Repository
	now     func() time.Time
	loc     *time.Location
}

func NewSubscriptionService(sr subscription.Repository, loc *time.Location) *SubscriptionService {
	if loc == nil {
		loc = time.Local
	}
	return &SubscriptionService{subRepo: sr, now: time.Now, loc: loc}
}

// normalizeDate validates a stored date field and returns it as YYYY-MM-DD.
func normalizeDate(raw string) (string, error) {
	d, err := reminder.ParseRenewalDate(raw)
	if err != nil {
		if errors.Is(err, reminder.ErrMissingDate) {
			return "", ErrRenewalDateRequired
		}
		return "", ErrInvalidRenewalDate
	}
	return d.Format(reminder.DateLayout), nil
}

// normalizeOptionalDate is normalizeDate for fields where blank means "unset".
func normalizeOptionalDate(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return normalizeDate(raw)
}

func validLeadDays(n int) bool {
	return n >= 1 && n <= reminder.MaxLeadDays
}

// CreateSubscription handles the business logic for adding a subscription, enforcing the plan quota.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, ownerID string, tier plan.Tier, in CreateSubscriptionInput) (*subscription.Subscription, error) {
	if maxSubs, limited := plan.MaxSubscriptions(tier); limited {
		count, err := s.subRepo.CountByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to count subscriptions: %w", err)
		}
		if count >= maxSubs {
			return nil, ErrSubscriptionLimitReached
		}
	}

	renewal, err := normalizeDate(in.NextRenewalDate)
	if err != nil {
		return nil, err
	}
	trialEnd, err := normalizeOptionalDate(in.TrialEndDate)
	if err != nil {
		return nil, fmt.Errorf("trialEndDate: %w", err)
	}

	leadDays := subscription.DefaultReminderDaysBefore
	if in.ReminderDaysBefore != nil {
		leadDays = *in.ReminderDaysBefore
	}
	if !validLeadDays(leadDays) {
		return nil, ErrInvalidLeadDays
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = subscription.DefaultCurrency
	}

	newSub := &subscription.Subscription{
		ID:                 uuid.NewString(),
		OwnerID:            ownerID,
		Name:               strings.TrimSpace(in.Name),
		Amount:             in.Amount,
		Currency:           currency,
		BillingCycle:       subscription.BillingCycle(in.BillingCycle),
		NextRenewalDate:    renewal,
		IsActive:           boolOr(in.IsActive, true),
		ReminderEnabled:    boolOr(in.ReminderEnabled, true),
		ReminderDaysBefore: leadDays,
		Category:           in.Category,
		Description:        in.Description,
		Website:            in.Website,
		PaymentMethod:      subscription.PaymentMethod(in.PaymentMethod),
		LastFourDigits:     in.LastFourDigits,
		CardBrand:          in.CardBrand,
		IsTrial:            in.IsTrial,
		TrialEndDate:       trialEnd,
	}

	if err := s.subRepo.Create(ctx, newSub); err != nil {
		return nil, fmt.Errorf("failed to create subscription in repository: %w", err)
	}
	return newSub, nil
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, ownerID string) ([]*subscription.Subscription, error) {
	subs, err := s.subRepo.List(ctx, subscription.Filter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// UpcomingRenewals lists active, reminder-enabled subscriptions renewing within days.
func (s *SubscriptionService) UpcomingRenewals(ctx context.Context, ownerID string, days int) ([]*subscription.Subscription, error) {
	if days < 0 {
		return nil, ErrInvalidWindow
	}
	today := reminder.Today(s.now(), s.loc)
	subs, err := s.subRepo.List(ctx, subscription.Filter{
		OwnerID:             ownerID,
		ActiveOnly:          true,
		ReminderEnabledOnly: true,
		RenewalFrom:         today,
		RenewalTo:           reminder.AddDays(today, days),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming renewals: %w", err)
	}
	return subs, nil
}

func (s *SubscriptionService) GetSubscription(ctx context.Context, ownerID, id string) (*subscription.Subscription, error) {
	sub, err := s.subRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, idb.ErrSubscriptionNotFound) {
			return nil, idb.ErrSubscriptionNotFound // Propagate specific error
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// UpdateSubscription applies a partial update to an owned subscription.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, ownerID, id string, in UpdateSubscriptionInput) (*subscription.Subscription, error) {
	sub, err := s.GetSubscription(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.NextRenewalDate != nil {
		renewal, err := normalizeDate(*in.NextRenewalDate)
		if err != nil {
			return nil, err
		}
		sub.NextRenewalDate = renewal
	}
	if in.TrialEndDate != nil {
		trialEnd, err := normalizeOptionalDate(*in.TrialEndDate)
		if err != nil {
			return nil, fmt.Errorf("trialEndDate: %w", err)
		}
		sub.TrialEndDate = trialEnd
	}
	if in.ReminderDaysBefore != nil {
		if !validLeadDays(*in.ReminderDaysBefore) {
			return nil, ErrInvalidLeadDays
		}
		sub.ReminderDaysBefore = *in.ReminderDaysBefore
	}

	if in.Name != nil {
		sub.Name = strings.TrimSpace(*in.Name)
	}
	if in.Amount != nil {
		sub.Amount = *in.Amount
	}
	if in.Currency != nil {
		sub.Currency = strings.ToUpper(*in.Currency)
	}
	if in.BillingCycle != nil {
		sub.BillingCycle = subscription.BillingCycle(*in.BillingCycle)
	}
	if in.Category != nil {
		sub.Category = *in.Category
	}
	if in.Description != nil {
		sub.Description = *in.Description
	}
	if in.Website != nil {
		sub.Website = *in.Website
	}
	if in.IsActive != nil {
		sub.IsActive = *in.IsActive
	}
	if in.ReminderEnabled != nil {
		sub.ReminderEnabled = *in.ReminderEnabled
	}
	if in.PaymentMethod != nil {
		sub.PaymentMethod = subscription.PaymentMethod(*in.PaymentMethod)
	}
	if in.LastFourDigits != nil {
		sub.LastFourDigits = *in.LastFourDigits
	}
	if in.CardBrand != nil {
		sub.CardBrand = *in.CardBrand
	}
	if in.IsTrial != nil {
		sub.IsTrial = *in.IsTrial
	}

	if err := s.subRepo.Update(ctx, sub); err != nil {
		if errors.Is(err, idb.ErrSubscriptionNotFound) {
			return nil, idb.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to update subscription in repository: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionService) DeleteSubscription(ctx context.Context, ownerID, id string) error {
	if err := s.subRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, idb.ErrSubscriptionNotFound) {
			return idb.ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
