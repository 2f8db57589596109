package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/shift")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Database.TransactionTimeout)
	assert.Equal(t, "assignment_events", cfg.RabbitMQ.Queue)
	assert.Equal(t, 86400, cfg.Idempotency.Expiration)
	assert.Equal(t, 60, cfg.Idempotency.PendingExpiration)
	assert.Error(t, cfg.ValidateSMTP())
}

func TestLoadConfigRequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/shift")
	t.Setenv("DATABASE_QUERY_TIMEOUT", "3")
	t.Setenv("EMAIL_SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_SMTP_USERNAME", "noreply@example.com")
	t.Setenv("EMAIL_SMTP_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Database.QueryTimeout)
	assert.NoError(t, cfg.ValidateSMTP())
}
