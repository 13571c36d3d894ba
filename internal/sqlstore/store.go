// Package sqlstore implements every resource repository on top of a single
// sqlx handle. SQLite is the default driver; PostgreSQL is supported through
// lib/pq.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"mathmate/internal/apperr"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	DefaultQueryTimeout = 5 * time.Second
)

type Store struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// Open connects, applies the schema and returns a ready store. For SQLite
// the parent directory of dsn is created when missing.
func Open(ctx context.Context, driver, dsn string, timeout time.Duration) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if strings.TrimSpace(dsn) == "" {
			dsn = "mathmate.db"
		}
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	store := New(db, timeout)
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// New wraps an existing handle without touching the schema.
func New(db *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Store{
		db:      db,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return apperr.Store("ping", s.db.PingContext(ctx))
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// inTx runs fn inside one transaction under the store deadline. fn must only
// use tx; the SQLite pool holds a single connection.
func (s *Store) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Store(op, err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return apperr.Store(op, err)
	}
	return apperr.Store(op, tx.Commit())
}

func (s *Store) insert(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowxContext(ctx, s.rebind(query+` RETURNING id`), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execAffecting fails with notFound when the statement changed no row.
func (s *Store) execAffecting(ctx context.Context, e sqlx.ExecerContext, notFound error, query string, args ...any) error {
	result, err := e.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
