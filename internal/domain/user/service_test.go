package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/remote"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	return NewService(remote.NewMemoryService(), cfg)
}

func TestRegister(t *testing.T) {
	s := newTestService(t)

	resp, err := s.Register(context.Background(), &RegisterRequest{
		Email:    "  Test@Example.com ",
		Password: "hunter2hunter2",
		Name:     "Test User",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "test@example.com", resp.User.Email)
	assert.Empty(t, resp.User.PasswordHash)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.Session.Authenticated())
	assert.EqualValues(t, 3600, resp.ExpiresIn)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, &RegisterRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = s.Register(ctx, &RegisterRequest{Email: "TEST@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterFailureLeavesNoAccount(t *testing.T) {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	svc := remote.NewMemoryService()
	s := NewService(svc, cfg)
	ctx := context.Background()

	remote.FailWrites(svc.Collection(Collection), true)
	_, err := s.Register(ctx, &RegisterRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	require.Error(t, err)

	// Nothing was persisted, so the same email registers cleanly.
	remote.FailWrites(svc.Collection(Collection), false)
	_, err = s.Register(ctx, &RegisterRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	assert.NoError(t, err)
}

func TestRegisterRequiresEmail(t *testing.T) {
	s := newTestService(t)

	_, err := s.Register(context.Background(), &RegisterRequest{Password: "hunter2hunter2"})

	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, &RegisterRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	resp, err := s.Login(ctx, &LoginRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", resp.Session.Email)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, &RegisterRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = s.Login(ctx, &LoginRequest{Email: "test@example.com", Password: "wrong"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	s := newTestService(t)

	_, err := s.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "x"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionFromToken(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Register(context.Background(), &RegisterRequest{Email: "test@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	sess, err := s.SessionFromToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sess.UserID)
	assert.Equal(t, "test@example.com", sess.Email)

	_, err = s.SessionFromToken("garbage")
	assert.Error(t, err)
}
