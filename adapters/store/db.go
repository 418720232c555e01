// Package store persists the local session, signup prefill and issuance
// history. PostgreSQL URLs use lib/pq; anything else is a SQLite path.
package store

import (
	"context"
	stderrors "errors"
	"strings"

	"verisure/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Driver names the database/sql driver chosen for a URL.
func Driver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// Open connects to the database behind url.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	driver := Driver(url)
	dsn := url
	if driver == "sqlite3" {
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to "+driver+" database", err)
	}

	if driver == "sqlite3" {
		// one connection: SQLite serialises writers, and an in-memory
		// database only lives as long as its connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}
	return db, nil
}

// isUniqueViolation recognises primary key and unique constraint errors
// from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	var liteErr sqlite3.Error
	if stderrors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
