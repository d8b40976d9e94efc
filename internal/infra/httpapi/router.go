package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"subscription_tracker/internal/app"
	"subscription_tracker/internal/domain/plan"
	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/domain/settings"
	"subscription_tracker/internal/domain/subscription"
	"subscription_tracker/internal/infra/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ReminderRunner runs a reminder check on demand.
type ReminderRunner interface {
	TriggerManualCheck(ctx context.Context) (*reminder.Summary, error)
}

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, ownerID string, tier plan.Tier, in app.CreateSubscriptionInput) (*subscription.Subscription, error)
	ListSubscriptions(ctx context.Context, ownerID string) ([]*subscription.Subscription, error)
	UpcomingRenewals(ctx context.Context, ownerID string, days int) ([]*subscription.Subscription, error)
	GetSubscription(ctx context.Context, ownerID, id string) (*subscription.Subscription, error)
	UpdateSubscription(ctx context.Context, ownerID, id string, in app.UpdateSubscriptionInput) (*subscription.Subscription, error)
	DeleteSubscription(ctx context.Context, ownerID, id string) error
}

type SettingsService interface {
	GetSettings(ctx context.Context, ownerID string) (*settings.UserSettings, error)
	UpdateSettings(ctx context.Context, ownerID string, in app.UpdateSettingsInput) (*settings.UserSettings, error)
	BudgetStatus(ctx context.Context, ownerID string, currentSpending float64) (*settings.BudgetStatus, error)
}

// Dependencies are the services behind the HTTP API.
type Dependencies struct {
	Runner         ReminderRunner
	Reminders      app.ReminderService
	Subscriptions  SubscriptionService
	Settings       SettingsService
	JWTSecret      string
	AllowedOrigins []string
	Logger         *logrus.Entry
}

type handlers struct {
	Dependencies
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	h := &handlers{Dependencies: deps}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(accessLog(deps.Logger))
	router.Use(metrics.GinMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/")
	auth.Use(requireAuth(deps.JWTSecret))
	{
		auth.POST("/reminders/check", h.triggerReminderCheck)
		auth.GET("/reminders/upcoming", h.upcomingReminders)

		auth.POST("/subscriptions", h.createSubscription)
		auth.GET("/subscriptions", h.listSubscriptions)
		auth.GET("/subscriptions/upcoming", h.upcomingRenewals)
		auth.GET("/subscriptions/:id", h.getSubscription)
		auth.PATCH("/subscriptions/:id", h.updateSubscription)
		auth.DELETE("/subscriptions/:id", h.deleteSubscription)

		auth.GET("/settings", h.getSettings)
		auth.PATCH("/settings", h.updateSettings)
		auth.GET("/settings/budget-status", h.budgetStatus)

		auth.GET("/business/plan", h.currentPlan)
	}

	return router, nil
}

// NewServer wraps handler in an http.Server listening on port.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func accessLog(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request rejected")
		default:
			entry.Info("HTTP request")
		}
	}
}
