package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription_tracker/internal/app"
	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/infra/config"
	idb "subscription_tracker/internal/infra/database"
	"subscription_tracker/internal/infra/email"
	"subscription_tracker/internal/infra/httpapi"
	"subscription_tracker/internal/infra/logger"
	"subscription_tracker/internal/infra/metrics"
	"subscription_tracker/internal/infra/mq"
	"subscription_tracker/internal/infra/redisstore"
	"subscription_tracker/internal/infra/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("main")

	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"port":        cfg.Port,
		"timezone":    cfg.Reminder.Location.String(),
	}).Info("Configuration loaded")

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	if cfg.AutoMigrate {
		if err := idb.RunMigrations(cfg.DatabaseURL, logger.Component("migrations")); err != nil {
			log.WithError(err).Fatal("Could not apply database migrations")
		}
	}

	// Initialize Repositories
	subRepo := idb.NewPostgresSubscriptionRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	resolver := idb.NewPostgresIdentityResolver(db)

	dispatcher := email.NewSMTPDispatcher(cfg.SMTP, logger.Component("email"))
	if !dispatcher.Enabled() {
		log.Warn("SMTP credentials not configured, reminder emails will not be sent")
	}

	policy, err := reminder.ParsePolicy(cfg.Reminder.Policy)
	if err != nil {
		log.WithError(err).Fatal("Invalid reminder policy")
	}

	reporters := []scheduler.RunReporter{metrics.NewRunReporter()}
	runTimeout := scheduler.DefaultRunTimeout
	schedulerOpts := []scheduler.Option{scheduler.WithRunTimeout(runTimeout)}
	var markers reminder.MarkerStore

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.NewClient(cfg.Redis)
		if err != nil {
			// Single-instance behaviour is still correct without Redis.
			log.WithError(err).Warn("Redis unavailable, using in-process run guard and markers")
		} else {
			defer rdb.Close()
			markers = redisstore.NewMarkerStore(rdb, redisstore.DefaultMarkerTTL)
			schedulerOpts = append(schedulerOpts, scheduler.WithRunLock(
				redisstore.NewRunLock(rdb, scheduler.LockTTL(runTimeout), logger.Component("run_lock")),
			))
			log.WithField("addr", cfg.Redis.Addr).Info("Redis connected")
		}
	}

	if cfg.AMQPURL != "" {
		publisher, err := mq.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, reminder run events disabled")
		} else {
			defer publisher.Close()
			reporters = append(reporters, mq.NewRunEventReporter(publisher, logger.Component("run_events")))
			log.Info("RabbitMQ publisher initialized")
		}
	}
	schedulerOpts = append(schedulerOpts, scheduler.WithReporters(reporters...))

	// Initialize Services
	reminderService := app.NewReminderServiceImpl(
		subRepo,
		resolver,
		dispatcher,
		logger.Component("reminder_service"),
		app.WithLocation(cfg.Reminder.Location),
		app.WithPolicy(policy, markers),
	)
	subscriptionService := app.NewSubscriptionService(subRepo, cfg.Reminder.Location)
	settingsService := app.NewSettingsService(settingsRepo)

	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		logger.Component("scheduler"),
		cfg.Reminder.CronSpec,
		cfg.Reminder.Location,
		schedulerOpts...,
	)
	if err := reminderScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start reminder scheduler")
	}
	log.WithField("next_run", reminderScheduler.NextRun()).Info("Reminder scheduler started")

	router, err := httpapi.NewRouter(httpapi.Dependencies{
		Runner:         reminderScheduler,
		Reminders:      reminderService,
		Subscriptions:  subscriptionService,
		Settings:       settingsService,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger.Component("http"),
	})
	if err != nil {
		log.WithError(err).Fatal("Could not build HTTP router")
	}
	srv := httpapi.NewServer(cfg.Port, router)

	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	reminderScheduler.Stop()
	log.Info("Application shut down gracefully")
}
