package settings

import (
	"database/sql"
	"time"
)

const (
	DefaultBudgetAlertThreshold = 90
)

// UserSettings holds per-owner budget preferences.
type UserSettings struct {
	OwnerID              string
	MonthlyBudget        sql.NullFloat64 // Unset means no budget tracking
	BudgetAlertsEnabled  bool
	BudgetAlertThreshold int // Percentage of the budget, 1..100
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Defaults returns the settings created for an owner on first access.
func Defaults(ownerID string) *UserSettings {
	return &UserSettings{
		OwnerID:              ownerID,
		BudgetAlertsEnabled:  true,
		BudgetAlertThreshold: DefaultBudgetAlertThreshold,
	}
}

// BudgetStatus is the evaluation of current spending against the monthly budget.
type BudgetStatus struct {
	WithinBudget   bool     `json:"withinBudget"`
	BudgetAmount   *float64 `json:"budgetAmount"`
	SpendingAmount float64  `json:"spendingAmount"`
	PercentageUsed *float64 `json:"percentageUsed"`
	AlertTriggered bool     `json:"alertTriggered"`
}
