package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LISTING_PARTIAL_RESULTS", "")
	t.Setenv("DEPARTMENTS_PATH", "")
	t.Setenv("REDIS_DB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "config/departments.yaml", cfg.Departments.Path)
	assert.False(t, cfg.Listing.PartialResults)
	assert.Equal(t, 10, cfg.Listing.DefaultLength)
	assert.Equal(t, 500, cfg.Listing.MaxLength)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("LISTING_PARTIAL_RESULTS", "true")
	t.Setenv("LISTING_STORE_TIMEOUT_MS", "250")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr())
	assert.True(t, cfg.Listing.PartialResults)
	assert.Equal(t, 250*time.Millisecond, cfg.Listing.StoreTimeout())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestDurationFallbacks(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, time.Second, ListingConfig{}.StoreTimeout())
	assert.Equal(t, time.Hour, AuthConfig{}.AccessTokenTTL())
}
