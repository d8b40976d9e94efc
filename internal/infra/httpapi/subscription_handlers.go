package httpapi

import (
	"net/http"

	"subscription_tracker/internal/app"
	"subscription_tracker/internal/domain/plan"

	"github.com/gin-gonic/gin"
)

func (h *handlers) createSubscription(c *gin.Context) {
	var in app.CreateSubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	user := currentUser(c)
	sub, err := h.Subscriptions.CreateSubscription(c.Request.Context(), user.ID, plan.ParseTier(user.AccountType), in)
	if err != nil {
		respondError(c, err, "Failed to create subscription")
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *handlers) listSubscriptions(c *gin.Context) {
	subs, err := h.Subscriptions.ListSubscriptions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err, "Failed to list subscriptions")
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *handlers) upcomingRenewals(c *gin.Context) {
	days, err := windowDays(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	subs, err := h.Subscriptions.UpcomingRenewals(c.Request.Context(), currentUser(c).ID, days)
	if err != nil {
		respondError(c, err, "Failed to list upcoming renewals")
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *handlers) getSubscription(c *gin.Context) {
	sub, err := h.Subscriptions.GetSubscription(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get subscription")
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *handlers) updateSubscription(c *gin.Context) {
	var in app.UpdateSubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.Subscriptions.UpdateSubscription(c.Request.Context(), currentUser(c).ID, c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update subscription")
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *handlers) deleteSubscription(c *gin.Context) {
	if err := h.Subscriptions.DeleteSubscription(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted successfully"})
}
