package migration

import (
	"context"

	"verisure/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The DDL sticks to
// types both SQLite and PostgreSQL accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSessionsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create sessions table", err)
	}

	if err := r.createLoginPrefillsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create login_prefills table", err)
	}

	if err := r.createIssuanceHistoryTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create issuance_history table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			profile TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createLoginPrefillsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS login_prefills (
			profile TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			role TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIssuanceHistoryTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS issuance_history (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			outcome TEXT NOT NULL,
			issuer_email TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0,
			issued INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			credential_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_issuance_history_created_at ON issuance_history(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_issuance_history_issuer ON issuance_history(issuer_email)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
