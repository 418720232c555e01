package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"verisure/domain/session"
	"verisure/internal/errors"
	"verisure/models"
	"verisure/ports"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// PrefillTTL bounds how long a signup prefill waits for the login form.
const PrefillTTL = 10 * time.Minute

// SessionRepositoryImpl implements SessionRepository on SQL
type SessionRepositoryImpl struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB, logger *zap.Logger) ports.SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepositoryImpl{db: db, logger: logger, now: time.Now}
}

// Get returns the stored session. Rows that no longer decode are treated as
// logged out rather than failing every page.
func (r *SessionRepositoryImpl) Get(ctx context.Context, profile string) (*session.Session, error) {
	var row models.StoredSession
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT profile, data, updated_at
		FROM sessions
		WHERE profile = ?
	`), profile)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load session", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(row.Data), &s); err != nil {
		r.logger.Warn("discarding unreadable session", zap.String("profile", profile), zap.Error(err))
		return nil, nil
	}
	if s.Role == "" {
		return nil, nil
	}
	return &s, nil
}

// Set replaces the stored session
func (r *SessionRepositoryImpl) Set(ctx context.Context, profile string, s *session.Session) error {
	if s == nil {
		return r.Clear(ctx, profile)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}

	row := models.StoredSession{
		Profile:   profile,
		Data:      string(data),
		UpdatedAt: r.now().UTC(),
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO sessions (profile, data, updated_at)
		VALUES (:profile, :data, :updated_at)
		ON CONFLICT (profile) DO UPDATE
		SET data = excluded.data, updated_at = excluded.updated_at
	`, row)
	if err != nil {
		return errors.DatabaseError("failed to save session", err)
	}
	return nil
}

// Clear removes the stored session
func (r *SessionRepositoryImpl) Clear(ctx context.Context, profile string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE profile = ?`), profile)
	if err != nil {
		return errors.DatabaseError("failed to clear session", err)
	}
	return nil
}

// SavePrefill replaces any pending prefill for the profile
func (r *SessionRepositoryImpl) SavePrefill(ctx context.Context, profile string, p session.Prefill) error {
	row := models.LoginPrefill{
		Profile:   profile,
		Email:     p.Email,
		Role:      string(p.Role),
		ExpiresAt: r.now().Add(PrefillTTL).UTC(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO login_prefills (profile, email, role, expires_at)
		VALUES (:profile, :email, :role, :expires_at)
		ON CONFLICT (profile) DO UPDATE
		SET email = excluded.email, role = excluded.role, expires_at = excluded.expires_at
	`, row)
	if err != nil {
		return errors.DatabaseError("failed to save login prefill", err)
	}
	return nil
}

// TakePrefill reads and deletes the pending prefill in one transaction
func (r *SessionRepositoryImpl) TakePrefill(ctx context.Context, profile string) (*session.Prefill, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.DatabaseError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row models.LoginPrefill
	err = tx.GetContext(ctx, &row, tx.Rebind(`
		SELECT profile, email, role, expires_at
		FROM login_prefills
		WHERE profile = ?
	`), profile)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load login prefill", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM login_prefills WHERE profile = ?`), profile); err != nil {
		return nil, errors.DatabaseError("failed to consume login prefill", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.DatabaseError("failed to commit transaction", err)
	}

	if !r.now().Before(row.ExpiresAt) {
		return nil, nil
	}
	return &session.Prefill{Email: row.Email, Role: session.ParseRole(row.Role)}, nil
}
