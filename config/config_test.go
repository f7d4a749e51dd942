package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("PORTAL_WEB_APP_URL", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 24*time.Hour, cfg.VerifyTokenTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "api", cfg.MailDriver)
	assert.False(t, cfg.MailSendEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RESET_TOKEN_TTL", "30m")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("PORTAL_WEB_APP_URL", "https://portal.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins())
	assert.Equal(t, "https://portal.example.com/verify/abc", cfg.VerifyURL("abc"))
	assert.Equal(t, "https://portal.example.com/reset-password/abc", cfg.ResetPasswordURL("abc"))
}

func TestValidate(t *testing.T) {
	t.Run("production with dev secrets", func(t *testing.T) {
		cfg := Load()
		cfg.Env = "production"
		cfg.CookieSecure = true
		assert.ErrorContains(t, cfg.Validate(), "JWT secrets")
	})

	t.Run("api driver without credentials", func(t *testing.T) {
		cfg := Load()
		cfg.MailSendEnabled = true
		cfg.MailDriver = "api"
		cfg.MailAPIURL = ""
		assert.ErrorContains(t, cfg.Validate(), "MAIL_API_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := Load()
		cfg.MailSendEnabled = true
		cfg.MailDriver = "pigeon"
		assert.ErrorContains(t, cfg.Validate(), "MAIL_DRIVER")
	})

	t.Run("mailgun driver complete", func(t *testing.T) {
		cfg := Load()
		cfg.MailSendEnabled = true
		cfg.MailDriver = "mailgun"
		cfg.MailgunDomain = "mg.example.com"
		cfg.MailgunAPIKey = "key"
		cfg.MailgunSender = "Rockae <no-reply@example.com>"
		assert.NoError(t, cfg.Validate())
	})
}
