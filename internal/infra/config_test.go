package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/qrserve")
	t.Setenv("JWT_SECRET", "sekrit")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPReadTimeout)
	assert.Equal(t, 60, cfg.RateLimitPerMin)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
}

func TestLoadConfigRequiredValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "sekrit")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/qrserve")
	t.Setenv("JWT_SECRET", "")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/qrserve")
	t.Setenv("JWT_SECRET", "sekrit")
	t.Setenv("PORT", "9100")
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "3")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPReadTimeout)
	// Unparseable ints fall back.
	assert.Equal(t, 60, cfg.RateLimitPerMin)
}
