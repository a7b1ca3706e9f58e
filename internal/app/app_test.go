package app

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront/internal/config"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{Name: "Storefront", Environment: "development"},
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Remote: config.RemoteConfig{
			Backend:    "memory",
			MaxRetries: 1,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
		Storage:  config.StorageConfig{Path: t.TempDir()},
		Payment:  config.PaymentConfig{UPIID: "support@dsmart.upi", Currency: "INR"},
	}
}

func TestNewWithMemoryBackend(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	a, err := New(memoryConfig(t), logger)
	require.NoError(t, err)
	defer a.Stop()

	assert.NotNil(t, a.Users)
	assert.NotNil(t, a.Products)
	assert.NotNil(t, a.Cart)
	assert.NotNil(t, a.Wishlist)
	assert.NotNil(t, a.Orders)
	assert.NotNil(t, a.Reviews)
	assert.NotNil(t, a.Checkout)
	assert.NotNil(t, a.Receipts)

	require.NoError(t, a.Start(context.Background()))
}
