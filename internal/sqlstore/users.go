package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mathmate/internal/apperr"
	"mathmate/internal/auth"
)

func (s *Store) CreateUser(ctx context.Context, user auth.User) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.insert(ctx, s.db,
		`INSERT INTO users (name, email, password) VALUES (?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, auth.ErrEmailTaken
		}
		return 0, apperr.Store("insert user", err)
	}
	return id, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user auth.User
	err := s.db.GetContext(ctx, &user, s.rebind(`SELECT id, name, email, password FROM users WHERE email = ?`), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, apperr.Store("select user", err)
	}
	return user, nil
}

type sessionRow struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (s *Store) CreateSession(ctx context.Context, session auth.Session) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO sessions (id, user_id, email, expires_at) VALUES (?, ?, ?, ?)`),
		session.ID, session.Identity.ID, session.Identity.Email, session.ExpiresAt.UTC(),
	)
	return apperr.Store("insert session", err)
}

// GetSession deletes the row and reports ErrSessionNotFound when it has
// already expired.
func (s *Store) GetSession(ctx context.Context, id string) (auth.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row sessionRow
	err := s.db.GetContext(ctx, &row, s.rebind(`SELECT id, user_id, email, expires_at FROM sessions WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, apperr.Store("select session", err)
	}

	session := auth.Session{
		ID:        row.ID,
		Identity:  auth.Identity{ID: row.UserID, Email: row.Email},
		ExpiresAt: row.ExpiresAt.UTC(),
	}
	if session.Expired(s.timestamp()) {
		if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
			return auth.Session{}, apperr.Store("delete expired session", err)
		}
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE id = ?`), id)
	return apperr.Store("delete session", err)
}

func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, apperr.Store("purge sessions", err)
	}
	purged, err := result.RowsAffected()
	return purged, apperr.Store("purge sessions", err)
}
