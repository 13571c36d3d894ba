// Package redisstore keeps login sessions in Redis so that several server
// processes can share them. Redis expires keys itself, so no sweeper runs.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mathmate/internal/apperr"
	"mathmate/internal/auth"
)

const defaultPrefix = "mathmate:session:"

type SessionStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

type sessionValue struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Connect builds a client and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}

func (s *SessionStore) CreateSession(ctx context.Context, session auth.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(sessionValue{
		UserID:    session.Identity.ID,
		Email:     session.Identity.Email,
		ExpiresAt: session.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return apperr.Store("set session", s.client.Set(ctx, s.key(session.ID), payload, ttl).Err())
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (auth.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, apperr.Store("get session", err)
	}

	var value sessionValue
	if err := json.Unmarshal(raw, &value); err != nil {
		return auth.Session{}, apperr.Store("decode session", err)
	}

	session := auth.Session{
		ID:        id,
		Identity:  auth.Identity{ID: value.UserID, Email: value.Email},
		ExpiresAt: value.ExpiresAt,
	}
	// Key TTLs have millisecond slack; the stored deadline is authoritative.
	if session.Expired(s.now()) {
		_ = s.client.Del(ctx, s.key(id)).Err()
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, id string) error {
	return apperr.Store("delete session", s.client.Del(ctx, s.key(id)).Err())
}
