package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8090", cfg.HTTPAddr)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 30, cfg.FetchTimeoutSeconds)
	assert.Equal(t, 900, cfg.CacheTTLSeconds)
	assert.Equal(t, 3, cfg.TaskMaxRetries)
	assert.Equal(t, 5, cfg.BatchWorkers)
	assert.Equal(t, 25, cfg.BatchLinkLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "60")

	cfg := Load()
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 60, cfg.FetchTimeoutSeconds)
}

func TestGetenvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 30, cfg.FetchTimeoutSeconds)
}
