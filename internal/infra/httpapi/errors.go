package httpapi

import (
	"errors"
	"net/http"

	"subscription_tracker/internal/app"
	idb "subscription_tracker/internal/infra/database"
	"subscription_tracker/internal/infra/scheduler"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, idb.ErrSubscriptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrSubscriptionLimitReached):
		return http.StatusForbidden
	case errors.Is(err, scheduler.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, app.ErrRenewalDateRequired),
		errors.Is(err, app.ErrInvalidRenewalDate),
		errors.Is(err, app.ErrInvalidLeadDays),
		errors.Is(err, app.ErrInvalidWindow),
		errors.Is(err, app.ErrInvalidBudget),
		errors.Is(err, app.ErrInvalidThreshold):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": message}. Internal errors are reported with the
// fixed fallback message; the cause is attached to the gin context for the access log.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
