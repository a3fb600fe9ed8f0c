package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for account operations.
var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login. It carries no
	// detail about which part of the credentials was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidResetToken is returned when a password reset token is
	// unknown or past its expiry.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// User is the persisted account document.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	ResetToken   *string
	ResetExpires *time.Time
	CreatedAt    time.Time
}

// Repository defines persistence operations for accounts.
type Repository interface {
	// Create persists a new account; returns ErrEmailTaken on a
	// duplicate email.
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// SetResetToken stores a reset token and its expiry on the account.
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	FindByResetToken(ctx context.Context, token string) (*User, error)
	// UpdatePassword replaces the password hash and clears any pending
	// reset token in the same update.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
