package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// SMTPConfig is the outbound mail transport. Username and Password may both be empty,
// in which case reminder emails are disabled.
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	Secure        bool // Implicit TLS; STARTTLS is required otherwise
	Timeout       time.Duration
	RatePerSecond float64
}

// HasCredentials reports whether the transport can authenticate.
func (c SMTPConfig) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

type RedisConfig struct {
	Addr     string // Empty disables Redis
	Password string
	DB       int
}

type ReminderConfig struct {
	CronSpec string // Daily reminder check
	Location *time.Location
	Policy   string // "exact" or "catch_up"
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	Port           string
	DatabaseURL    string
	AutoMigrate    bool // Apply embedded schema migrations on startup
	JWTSecret      string
	AllowedOrigins []string
	LogLevel       string
	Environment    string
	AMQPURL        string // Empty disables run events
	SMTP           SMTPConfig
	Redis          RedisConfig
	Reminder       ReminderConfig
}

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:19006",
	"http://127.0.0.1:19006",
	"http://localhost:8081", // Expo dev server
	"http://127.0.0.1:8081",
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.AutoMigrate, err = strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	cfg.Port = getEnv("PORT", "8000")

	cfg.AllowedOrigins = splitList(os.Getenv("FRONTEND_URL"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaultAllowedOrigins
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.AMQPURL = os.Getenv("AMQP_URL")

	if cfg.SMTP, err = loadSMTP(); err != nil {
		return nil, err
	}

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.Reminder.CronSpec = getEnv("CRON_SPEC_REMINDER_CHECK", "0 9 * * *") // Default: 9 AM daily
	cfg.Reminder.Policy = strings.ToLower(getEnv("REMINDER_POLICY", "exact"))

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		cfg.Reminder.Location = time.Local
	} else {
		cfg.Reminder.Location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}

	return cfg, nil
}

func loadSMTP() (SMTPConfig, error) {
	var err error
	smtp := SMTPConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
	}
	smtp.From = getEnv("EMAIL_FROM", smtp.Username)

	if smtp.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return smtp, err
	}

	smtp.Secure, err = strconv.ParseBool(getEnv("SMTP_SECURE", "false"))
	if err != nil {
		return smtp, fmt.Errorf("invalid SMTP_SECURE: %w", err)
	}

	smtp.Timeout, err = time.ParseDuration(getEnv("SMTP_TIMEOUT", "15s"))
	if err != nil {
		return smtp, fmt.Errorf("invalid SMTP_TIMEOUT: %w", err)
	}

	smtp.RatePerSecond, err = strconv.ParseFloat(getEnv("SMTP_RATE_PER_SECOND", "5"), 64)
	if err != nil || smtp.RatePerSecond <= 0 {
		return smtp, fmt.Errorf("invalid SMTP_RATE_PER_SECOND %q", os.Getenv("SMTP_RATE_PER_SECOND"))
	}
	return smtp, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
