package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"subscription_tracker/internal/domain/settings"
)

var ErrSettingsNotFound = errors.New("user settings not found")
var ErrSettingsAlreadyExist = errors.New("user settings already exist")

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) GetByOwner(ctx context.Context, ownerID string) (*settings.UserSettings, error) {
	query := `SELECT user_id, monthly_budget, budget_alerts_enabled, budget_alert_threshold, created_at, updated_at
              FROM user_settings WHERE user_id = $1`
	s := &settings.UserSettings{}
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&s.OwnerID, &s.MonthlyBudget, &s.BudgetAlertsEnabled, &s.BudgetAlertThreshold, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows || hasPQCode(err, pgInvalidTextFormat) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting user settings: %w", err)
	}
	return s, nil
}

func (r *PostgresSettingsRepository) Create(ctx context.Context, s *settings.UserSettings) error {
	query := `INSERT INTO user_settings (user_id, monthly_budget, budget_alerts_enabled, budget_alert_threshold)
              VALUES ($1, $2, $3, $4)
              RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.OwnerID, s.MonthlyBudget, s.BudgetAlertsEnabled, s.BudgetAlertThreshold).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if hasPQCode(err, pgUniqueViolation) {
			return ErrSettingsAlreadyExist
		}
		return fmt.Errorf("error creating user settings: %w", err)
	}
	return nil
}

func (r *PostgresSettingsRepository) Update(ctx context.Context, s *settings.UserSettings) error {
	query := `UPDATE user_settings
              SET monthly_budget = $1, budget_alerts_enabled = $2, budget_alert_threshold = $3, updated_at = NOW()
              WHERE user_id = $4
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, s.MonthlyBudget, s.BudgetAlertsEnabled, s.BudgetAlertThreshold, s.OwnerID).
		Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSettingsNotFound
		}
		return fmt.Errorf("error updating user settings: %w", err)
	}
	return nil
}
