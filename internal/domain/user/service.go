package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltstore/storefront/internal/domain/auth"
)

// resetTokenTTL is how long a password reset token stays valid.
const resetTokenTTL = time.Hour

// Service encapsulates account registration, login and password reset.
type Service struct {
	users  Repository
	tokens auth.Tokens
	now    func() time.Time
}

// NewService creates a user Service with the required dependencies.
func NewService(users Repository, tokens auth.Tokens) *Service {
	return &Service{users: users, tokens: tokens, now: time.Now}
}

// Register creates an account and returns it with a signed session token.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, string, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", errors.Wrap(err, "create user")
	}

	token, err := s.tokens.Sign(auth.Identity{AccountID: u.ID, Email: u.Email})
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}

	return u, token, nil
}

// Login verifies the credentials and returns the account with a signed
// session token. Unknown email and wrong password are reported with the
// same error.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, "find user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(auth.Identity{AccountID: u.ID, Email: u.Email})
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}

	return u, token, nil
}

// RequestPasswordReset issues a reset token for the account behind the
// given email. An unknown email returns an empty token and no error, so
// the caller's response is indistinguishable from the success case and
// account existence cannot be probed.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", errors.Wrap(err, "find user")
	}

	token := uuid.New().String()
	if err := s.users.SetResetToken(ctx, u.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return "", errors.Wrap(err, "store reset token")
	}

	return token, nil
}

// ResetPassword consumes a reset token and sets the new password. The
// token is cleared in the same update that replaces the hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	u, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidResetToken
		}
		return errors.Wrap(err, "find user by reset token")
	}

	if u.ResetExpires == nil || s.now().After(*u.ResetExpires) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return errors.Wrap(err, "update password")
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
