package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/hms-console/internal/config"
)

func TestFromEnvReadsOverrides(t *testing.T) {
	t.Setenv("HMS_API_BASE_URL", "https://hms.example.org/api")
	t.Setenv("HMS_API_TIMEOUT", "3s")
	t.Setenv("HMS_SESSION_STORE", "redis")
	t.Setenv("HMS_PROFILE", "ward-7")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg := config.FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://hms.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "hms:ward-7", cfg.Scope())
	assert.Equal(t, "localhost:6380", cfg.RedisAddr())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.FromEnv()
	cfg.API.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = config.FromEnv()
	cfg.Session.Store = "cookie"
	assert.Error(t, cfg.Validate())

	cfg = config.FromEnv()
	cfg.Session.Store = "file"
	cfg.Session.FilePath = ""
	assert.Error(t, cfg.Validate())
}
