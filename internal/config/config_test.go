package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Storefront", cfg.App.Name)
	assert.Equal(t, "redis", cfg.Remote.Backend)
	assert.Equal(t, "localhost:6379", cfg.GetRemoteAddr())
	assert.Equal(t, 2*time.Second, cfg.Remote.RetryBackoff)
	assert.Equal(t, 5, cfg.Remote.MaxRetries)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, "support@dsmart.upi", cfg.Payment.UPIID)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("REMOTE_BACKEND", "memory")
	t.Setenv("REMOTE_RETRY_BACKOFF", "500ms")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Remote.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Remote.RetryBackoff)
	assert.True(t, cfg.IsProduction())
}

func TestValidateShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()

	assert.Error(t, err)
}

func TestValidateUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("REMOTE_BACKEND", "carrier-pigeon")

	_, err := Load()

	assert.Error(t, err)
}

func TestValidateRedisRequiresHost(t *testing.T) {
	cfg := &Config{
		JWT:     JWTConfig{Secret: testSecret},
		Remote:  RemoteConfig{Backend: "redis"},
		Storage: StorageConfig{Path: "./data"},
	}

	assert.Error(t, cfg.Validate())
}

func TestValidateMemoryBackendNeedsNoHost(t *testing.T) {
	cfg := &Config{
		JWT:     JWTConfig{Secret: testSecret},
		Remote:  RemoteConfig{Backend: "memory"},
		Storage: StorageConfig{Path: "./data"},
	}

	assert.NoError(t, cfg.Validate())
}
