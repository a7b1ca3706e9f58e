// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"
)

// User represents an account in the remote `users` collection.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	IsAdmin      bool       `json:"is_admin"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// GetDisplayName returns the user's name, falling back to the email.
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}

// Session identifies an authenticated user. It is passed explicitly into
// store operations that need an owner; there is no ambient current-session
// global.
type Session struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
