package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"subscription_tracker/internal/app"
	"subscription_tracker/internal/domain/plan"
	"subscription_tracker/internal/domain/settings"

	"github.com/gin-gonic/gin"
)

type settingsResponse struct {
	UserID               string    `json:"userId"`
	MonthlyBudget        *float64  `json:"monthlyBudget"`
	BudgetAlertsEnabled  bool      `json:"budgetAlertsEnabled"`
	BudgetAlertThreshold int       `json:"budgetAlertThreshold"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func newSettingsResponse(s *settings.UserSettings) settingsResponse {
	resp := settingsResponse{
		UserID:               s.OwnerID,
		BudgetAlertsEnabled:  s.BudgetAlertsEnabled,
		BudgetAlertThreshold: s.BudgetAlertThreshold,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	if s.MonthlyBudget.Valid {
		budget := s.MonthlyBudget.Float64
		resp.MonthlyBudget = &budget
	}
	return resp
}

func (h *handlers) getSettings(c *gin.Context) {
	s, err := h.Settings.GetSettings(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, newSettingsResponse(s))
}

func (h *handlers) updateSettings(c *gin.Context) {
	var in app.UpdateSettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	s, err := h.Settings.UpdateSettings(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, newSettingsResponse(s))
}

// GET /settings/budget-status?currentSpending=X
func (h *handlers) budgetStatus(c *gin.Context) {
	spending, err := strconv.ParseFloat(c.Query("currentSpending"), 64)
	if err != nil || spending < 0 {
		badRequest(c, fmt.Errorf("currentSpending must be a non-negative number"))
		return
	}

	status, err := h.Settings.BudgetStatus(c.Request.Context(), currentUser(c).ID, spending)
	if err != nil {
		respondError(c, err, "Failed to evaluate budget")
		return
	}
	c.JSON(http.StatusOK, status)
}

// GET /business/plan
func (h *handlers) currentPlan(c *gin.Context) {
	accountType := currentUser(c).AccountType
	c.JSON(http.StatusOK, gin.H{
		"accountType": accountType,
		"limits":      plan.LimitsFor(plan.ParseTier(accountType)),
	})
}
