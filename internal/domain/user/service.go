// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/remote"
)

// Collection is the remote collection holding account documents.
const Collection = "users"

var (
	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service handles account registration, login and session tokens
type Service struct {
	users           remote.Collection
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(svc remote.Service, cfg *config.Config) *Service {
	return &Service{
		users:           svc.Collection(Collection),
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      *User    `json:"user"`
	Session   *Session `json:"session"`
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
}

// Register creates a new account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := User{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		LastLoginAt:  &now,
		CreatedAt:    now,
	}

	// One write: lookups take the id from the document key, so a failure
	// here means no account exists and a retry cannot duplicate.
	id, err := s.users.Add(ctx, &u)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	u.ID = id

	return s.respond(&u)
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.users.Set(ctx, u.ID, u, true); err != nil {
		// Login still succeeds when the timestamp write fails.
		u.LastLoginAt = nil
	}

	return s.respond(u)
}

// SessionFromToken validates a session token and rebuilds its session
func (s *Service) SessionFromToken(token string) (*Session, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}

func (s *Service) respond(u *User) (*AuthResponse, error) {
	token, err := s.jwtManager.GenerateToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	// Never hand the hash back to callers.
	public := *u
	public.PasswordHash = ""

	return &AuthResponse{
		User:      &public,
		Session:   &Session{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin},
		Token:     token,
		ExpiresIn: int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*User, error) {
	docs, err := s.users.List(ctx, remote.SubscribeOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	for _, doc := range docs {
		var u User
		if err := doc.Decode(&u); err != nil {
			continue
		}
		if strings.EqualFold(u.Email, email) {
			u.ID = doc.ID
			return &u, nil
		}
	}
	return nil, nil
}
