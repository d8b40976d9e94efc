package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/subs?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0 9 * * *", cfg.Reminder.CronSpec)
	assert.Equal(t, "exact", cfg.Reminder.Policy)
	assert.Equal(t, time.Local, cfg.Reminder.Location)
	assert.Equal(t, defaultAllowedOrigins, cfg.AllowedOrigins)

	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Secure)
	assert.Equal(t, 15*time.Second, cfg.SMTP.Timeout)
	assert.False(t, cfg.SMTP.HasCredentials())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.AMQPURL)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/subs")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_SMTP(t *testing.T) {
	setRequired(t)
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "reminders@example.com")
	t.Setenv("SMTP_PASS", "hunter2")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("SMTP_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Secure)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)
	assert.True(t, cfg.SMTP.HasCredentials())
	// EMAIL_FROM falls back to the SMTP user.
	assert.Equal(t, "reminders@example.com", cfg.SMTP.From)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SMTP_PORT", "abc"},
		{"SMTP_SECURE", "maybe"},
		{"SMTP_TIMEOUT", "soon"},
		{"SMTP_RATE_PER_SECOND", "0"},
		{"REDIS_DB", "one"},
		{"TIMEZONE", "Mars/Olympus_Mons"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_OriginsAndTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("FRONTEND_URL", "https://app.example.com, https://www.example.com,")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://www.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, time.UTC, cfg.Reminder.Location)
}
