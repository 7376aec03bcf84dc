// Package storedb maintains store-side fixtures directly in the OpenCart
// MySQL database. The storefront throttles repeated failed logins per
// email; suites that intentionally submit bad credentials clear their
// tracks here so later valid logins are not rejected for rate limiting.
package storedb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/logger"
)

// Store is a handle to the OpenCart database.
type Store struct {
	db *sql.DB
}

// Open connects using a go-sql-driver DSN such as
// "root:@tcp(localhost:3306)/opencart_db".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("bad database DSN").WithCause(err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.ErrInvalidConfig.WithMessage("store database unreachable").WithCause(err)
	}
	return &Store{db: db}, nil
}

// ResetLoginAttempts clears the failed-login counter for an email.
func (s *Store) ResetLoginAttempts(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM oc_customer_login WHERE email = ?", email)
	if err != nil {
		return core.NewExecutionError(core.ErrCategoryDriver, "DB_EXEC",
			"clearing login attempts").WithCause(err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logger.Debug("cleared %d login attempt record(s) for %s", n, email)
	}
	return nil
}

// CustomerExists reports whether an account with the email is registered.
// Used to verify a registration actually persisted.
func (s *Store) CustomerExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM oc_customer WHERE email = ?", email).Scan(&n)
	if err != nil {
		return false, core.NewExecutionError(core.ErrCategoryDriver, "DB_QUERY",
			"checking customer").WithCause(err)
	}
	return n > 0, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
