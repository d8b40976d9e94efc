package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"subscription_tracker/internal/domain/settings"
	idb "subscription_tracker/internal/infra/database"
)

var ErrInvalidBudget = errors.New("monthlyBudget must not be negative")
var ErrInvalidThreshold = errors.New("budgetAlertThreshold must be between 1 and 100")

// UpdateSettingsInput is a partial update of user settings.
type UpdateSettingsInput struct {
	MonthlyBudget        *float64 `json:"monthlyBudget" binding:"omitempty,gte=0"`
	BudgetAlertsEnabled  *bool    `json:"budgetAlertsEnabled"`
	BudgetAlertThreshold *int     `json:"budgetAlertThreshold" binding:"omitempty,min=1,max=100"`
}

type SettingsService struct {
	settingsRepo settings.Repository
}

func NewSettingsService(sr settings.Repository) *SettingsService {
	return &SettingsService{settingsRepo: sr}
}

// GetSettings returns the owner's settings, creating the defaults on first access.
func (s *SettingsService) GetSettings(ctx context.Context, ownerID string) (*settings.UserSettings, error) {
	existing, err := s.settingsRepo.GetByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, idb.ErrSettingsNotFound) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	defaults := settings.Defaults(ownerID)
	if err := s.settingsRepo.Create(ctx, defaults); err != nil {
		if errors.Is(err, idb.ErrSettingsAlreadyExist) { // Created concurrently by another request
			return s.settingsRepo.GetByOwner(ctx, ownerID)
		}
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return defaults, nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, ownerID string, in UpdateSettingsInput) (*settings.UserSettings, error) {
	current, err := s.GetSettings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if in.MonthlyBudget == nil && in.BudgetAlertsEnabled == nil && in.BudgetAlertThreshold == nil {
		return current, nil
	}

	if in.MonthlyBudget != nil {
		if *in.MonthlyBudget < 0 {
			return nil, ErrInvalidBudget
		}
		current.MonthlyBudget = sql.NullFloat64{Float64: *in.MonthlyBudget, Valid: true}
	}
	if in.BudgetAlertsEnabled != nil {
		current.BudgetAlertsEnabled = *in.BudgetAlertsEnabled
	}
	if in.BudgetAlertThreshold != nil {
		if *in.BudgetAlertThreshold < 1 || *in.BudgetAlertThreshold > 100 {
			return nil, ErrInvalidThreshold
		}
		current.BudgetAlertThreshold = *in.BudgetAlertThreshold
	}

	if err := s.settingsRepo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return current, nil
}

// BudgetStatus evaluates currentSpending against the owner's monthly budget.
// Owners without settings or without a budget are always within budget.
func (s *SettingsService) BudgetStatus(ctx context.Context, ownerID string, currentSpending float64) (*settings.BudgetStatus, error) {
	status := &settings.BudgetStatus{WithinBudget: true, SpendingAmount: currentSpending}

	current, err := s.settingsRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, idb.ErrSettingsNotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if !current.MonthlyBudget.Valid {
		return status, nil
	}

	budget := current.MonthlyBudget.Float64
	status.BudgetAmount = &budget
	status.WithinBudget = currentSpending <= budget

	if budget == 0 {
		// No meaningful percentage; any spending is over budget.
		status.AlertTriggered = current.BudgetAlertsEnabled && currentSpending > 0
		return status, nil
	}

	used := currentSpending / budget * 100
	rounded := math.Round(used*10) / 10
	status.PercentageUsed = &rounded
	status.AlertTriggered = current.BudgetAlertsEnabled && used >= float64(current.BudgetAlertThreshold)
	return status, nil
}
