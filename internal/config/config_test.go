package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 2*time.Hour, cfg.StagingTTL)
	assert.Equal(t, "accepted", cfg.ApproveStatus)
	assert.False(t, cfg.Production())
}

func TestOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("API_BASE_URL", "https://api.elyukal.ph")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("APPLICATION_APPROVE_STATUS", "approved")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, "https://api.elyukal.ph", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "approved", cfg.ApproveStatus)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
}

func TestRejectsBadValues(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestBodyLimitMustFitUploads(t *testing.T) {
	t.Setenv("STAGING_MAX_BYTES", "2048")
	t.Setenv("BODY_LIMIT", "1024")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "BODY_LIMIT")
}
