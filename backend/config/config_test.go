package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("EMAIL_USER", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("TOKEN_SWEEP_INTERVAL", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Duration(0), cfg.TokenSweepInterval)
	assert.False(t, cfg.CookieSecure)
	assert.False(t, cfg.MailEnabled())
	assert.Contains(t, cfg.DSN(), "dbname=advocatr")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("EMAIL_USER", "mailer@advocatr.com")
	t.Setenv("APP_BASE_URL", "https://advocatr.com/")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("APP_ENV", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:test.db", cfg.DSN())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, "https://advocatr.com", cfg.AppBaseURL)
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{Env: "production", DBDriver: "postgres", SessionSecret: "secret", PasswordMinLen: 6}
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "a-long-random-value"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", SessionSecret: "x", PasswordMinLen: 6}
	assert.Error(t, cfg.Validate())
}
