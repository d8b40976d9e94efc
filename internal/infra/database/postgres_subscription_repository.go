package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/domain/subscription"
)

// Custom errors
var ErrSubscriptionNotFound = errors.New("subscription not found")
var ErrDuplicateSubscription = errors.New("subscription with this ID already exists")

const subscriptionColumns = `id, user_id, name, amount, currency, billing_cycle, next_renewal_date::text,
       is_active, reminder_enabled, reminder_days_before, category, description, website,
       payment_method, last_four_digits, card_brand, is_trial, trial_end_date::text, created_at, updated_at`

type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*subscription.Subscription, error) {
	var (
		s                                                      subscription.Subscription
		renewal, category, description, website, paymentMethod sql.NullString
		lastFour, cardBrand, trialEnd                          sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Amount, &s.Currency, &s.BillingCycle, &renewal,
		&s.IsActive, &s.ReminderEnabled, &s.ReminderDaysBefore, &category, &description, &website,
		&paymentMethod, &lastFour, &cardBrand, &s.IsTrial, &trialEnd, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.NextRenewalDate = renewal.String
	s.Category = category.String
	s.Description = description.String
	s.Website = website.String
	s.PaymentMethod = subscription.PaymentMethod(paymentMethod.String)
	s.LastFourDigits = lastFour.String
	s.CardBrand = cardBrand.String
	s.TrialEndDate = trialEnd.String
	return &s, nil
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `INSERT INTO subscriptions (id, user_id, name, amount, currency, billing_cycle, next_renewal_date,
                  is_active, reminder_enabled, reminder_days_before, category, description, website,
                  payment_method, last_four_digits, card_brand, is_trial, trial_end_date)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.OwnerID, s.Name, s.Amount, s.Currency, s.BillingCycle, nullString(s.NextRenewalDate),
		s.IsActive, s.ReminderEnabled, s.ReminderDaysBefore, nullString(s.Category), nullString(s.Description),
		nullString(s.Website), nullString(string(s.PaymentMethod)), nullString(s.LastFourDigits),
		nullString(s.CardBrand), s.IsTrial, nullString(s.TrialEndDate),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if hasPQCode(err, pgUniqueViolation) {
			return ErrDuplicateSubscription
		}
		return fmt.Errorf("error creating subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) GetByID(ctx context.Context, ownerID, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND user_id = $2`
	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows || hasPQCode(err, pgInvalidTextFormat) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error getting subscription by ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	query := `UPDATE subscriptions
               SET name = $1, amount = $2, currency = $3, billing_cycle = $4, next_renewal_date = $5,
                   is_active = $6, reminder_enabled = $7, reminder_days_before = $8, category = $9,
                   description = $10, website = $11, payment_method = $12, last_four_digits = $13,
                   card_brand = $14, is_trial = $15, trial_end_date = $16, updated_at = NOW()
               WHERE id = $17 AND user_id = $18
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.Name, s.Amount, s.Currency, s.BillingCycle, nullString(s.NextRenewalDate),
		s.IsActive, s.ReminderEnabled, s.ReminderDaysBefore, nullString(s.Category),
		nullString(s.Description), nullString(s.Website), nullString(string(s.PaymentMethod)),
		nullString(s.LastFourDigits), nullString(s.CardBrand), s.IsTrial, nullString(s.TrialEndDate),
		s.ID, s.OwnerID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("error updating subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		if hasPQCode(err, pgInvalidTextFormat) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("error deleting subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading deleted rows: %w", err)
	}
	if n == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// buildListQuery turns a filter into a WHERE clause with positional arguments.
func buildListQuery(f subscription.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID != "" {
		add("user_id = $%d", f.OwnerID)
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if f.ReminderEnabledOnly {
		conds = append(conds, "reminder_enabled = TRUE")
	}
	if !f.RenewalFrom.IsZero() {
		add("next_renewal_date >= $%d", f.RenewalFrom.Format(reminder.DateLayout))
	}
	if !f.RenewalTo.IsZero() {
		add("next_renewal_date <= $%d", f.RenewalTo.Format(reminder.DateLayout))
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY next_renewal_date ASC NULLS LAST, id ASC`
	return query, args
}

func (r *PostgresSubscriptionRepository) List(ctx context.Context, filter subscription.Filter) ([]*subscription.Subscription, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscription.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscription row: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}
	return subs, nil
}

func (r *PostgresSubscriptionRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting subscriptions: %w", err)
	}
	return count, nil
}
