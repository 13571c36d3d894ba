package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"mathmate/internal/apperr"
)

const DefaultSessionTTL = 24 * time.Hour

type Service struct {
	users      UserRepository
	sessions   SessionStore
	tokens     *TokenIssuer
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users UserRepository, sessions SessionStore, tokens *TokenIssuer, sessionTTL time.Duration, opts ...Option) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *Service) Register(ctx context.Context, name, email, password string) (int64, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return 0, apperr.Validation("name, email and password are required")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return 0, ErrEmailTaken
	case !errors.Is(err, ErrUserNotFound):
		return 0, err
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return 0, err
	}

	return s.users.CreateUser(ctx, User{Name: name, Email: email, PasswordHash: hash})
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords produce the same error after the same amount of hashing work.
func (s *Service) Login(ctx context.Context, email, password string) (User, Session, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return User{}, Session{}, err
		}
		passwordMatches(s.dummyPasswordHash(), password)
		return User{}, Session{}, ErrInvalidCredentials
	}
	if !passwordMatches(user.PasswordHash, password) {
		return User{}, Session{}, ErrInvalidCredentials
	}

	session := Session{
		ID:        uuid.NewString(),
		Identity:  Identity{ID: user.ID, Email: user.Email},
		ExpiresAt: s.now().UTC().Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return User{}, Session{}, err
	}

	user.PasswordHash = ""
	return user, session, nil
}

// Logout is idempotent.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

func (s *Service) CurrentUser(ctx context.Context, sessionID string) (Identity, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Identity{}, ErrNotAuthenticated
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, ErrNotAuthenticated
		}
		return Identity{}, err
	}
	if session.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
			return Identity{}, err
		}
		return Identity{}, ErrNotAuthenticated
	}
	return session.Identity, nil
}

func (s *Service) IssueToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(Identity{ID: user.ID, Email: user.Email})
}

func (s *Service) VerifyToken(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

// PurgeExpiredSessions removes expired sessions from stores that keep them
// until asked. It is a no-op for stores with native expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purger, ok := s.sessions.(SessionPurger)
	if !ok {
		return 0, nil
	}
	return purger.PurgeExpiredSessions(ctx, s.now().UTC())
}

// RunSessionSweeper purges expired sessions every interval until ctx ends.
func (s *Service) RunSessionSweeper(ctx context.Context, interval time.Duration, log *logrus.Entry) {
	if _, ok := s.sessions.(SessionPurger); !ok {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeExpiredSessions(ctx)
			if err != nil {
				log.WithError(err).Warn("session sweep failed")
				continue
			}
			if purged > 0 {
				log.WithField("purged", purged).Info("expired sessions removed")
			}
		}
	}
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := hashPassword("mathmate-no-such-user", s.hashCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
