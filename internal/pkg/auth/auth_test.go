package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager(testConfig())

	token, err := m.GenerateToken("user-1", "test@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestGenerateTokenRequiresUserID(t *testing.T) {
	m := NewJWTManager(testConfig())

	_, err := m.GenerateToken("", "test@example.com", false)

	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := NewJWTManager(testConfig())

	_, err := m.ValidateToken("not-a-token")

	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager(testConfig())
	token, err := m.GenerateToken("user-1", "test@example.com", false)
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	_, err = NewJWTManager(other).ValidateToken(token)

	assert.Error(t, err)
}

func TestHashAndVerifyPassword(t *testing.T) {
	p := NewPasswordManager(testConfig())

	hash, err := p.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.NoError(t, p.VerifyPassword("hunter2hunter2", hash))
	assert.Error(t, p.VerifyPassword("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	p := NewPasswordManager(testConfig())

	assert.NoError(t, p.ValidatePassword("longenough"))
	assert.Error(t, p.ValidatePassword("short"))
}
