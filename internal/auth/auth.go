// Package auth covers teacher accounts, server-side sessions and bearer
// tokens.
package auth

import (
	"context"
	"time"

	"mathmate/internal/apperr"
)

var (
	ErrEmailTaken         = apperr.New(apperr.ErrConflict, "User already exists")
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "Invalid credentials")
	ErrUserNotFound       = apperr.New(apperr.ErrNotFound, "User not found")
	ErrNotAuthenticated   = apperr.New(apperr.ErrUnauthorized, "Not authenticated")
	ErrSessionNotFound    = apperr.New(apperr.ErrUnauthorized, "session not found")
	ErrTokenRequired      = apperr.New(apperr.ErrForbidden, "Token is required")
	ErrInvalidToken       = apperr.New(apperr.ErrForbidden, "Invalid or expired token")
)

// User is a teacher account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
}

// Identity is the minimal claim set carried by sessions and tokens.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	ID        string
	Identity  Identity
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// SessionStore persists sessions. GetSession returns ErrSessionNotFound for
// unknown and expired ids alike.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionPurger is implemented by stores that do not expire rows on their own.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
