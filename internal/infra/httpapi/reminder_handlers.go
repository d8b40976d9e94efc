package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultWindowDays = 7

// POST /reminders/check
func (h *handlers) triggerReminderCheck(c *gin.Context) {
	// A client disconnect must not abort a run half way through the candidates.
	ctx := context.WithoutCancel(c.Request.Context())

	summary, err := h.Runner.TriggerManualCheck(ctx)
	if err != nil {
		respondError(c, err, "Error checking reminders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reminder check completed",
		"stats":   summary,
	})
}

// GET /reminders/upcoming?days=7
func (h *handlers) upcomingReminders(c *gin.Context) {
	days, err := windowDays(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	reminders, err := h.Reminders.GetUpcomingReminders(c.Request.Context(), currentUser(c).ID, days)
	if err != nil {
		respondError(c, err, "Error fetching upcoming reminders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reminders": reminders,
		"count":     len(reminders),
	})
}

func windowDays(c *gin.Context) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return defaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer")
	}
	return days, nil
}
