package store

import (
	"context"
	"time"

	"verisure/domain/core"
	"verisure/internal/errors"
	"verisure/models"
	"verisure/ports"

	"github.com/jmoiron/sqlx"
)

// DefaultHistoryLimit is used when List is asked for a non-positive limit.
const DefaultHistoryLimit = 20

// HistoryRepositoryImpl implements HistoryRepository on SQL
type HistoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new issuance history repository
func NewHistoryRepository(db *sqlx.DB) ports.HistoryRepository {
	return &HistoryRepositoryImpl{db: db}
}

// Record stores one attempt, filling in the ID and timestamp when unset
func (r *HistoryRepositoryImpl) Record(ctx context.Context, attempt *models.IssuanceAttempt) error {
	if attempt == nil {
		return errors.InvalidInput("attempt is required")
	}
	if attempt.ID == "" {
		attempt.ID = core.NewAttemptID().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO issuance_history (
			id, mode, outcome, issuer_email, file_name, row_count,
			issued, failed, credential_id, error_message, created_at
		) VALUES (
			:id, :mode, :outcome, :issuer_email, :file_name, :row_count,
			:issued, :failed, :credential_id, :error_message, :created_at
		)
	`, attempt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.InvalidInput("issuance attempt " + attempt.ID + " already recorded")
		}
		return errors.DatabaseError("failed to record issuance attempt", err)
	}
	return nil
}

// List returns the newest attempts first
func (r *HistoryRepositoryImpl) List(ctx context.Context, limit int) ([]*models.IssuanceAttempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var attempts []*models.IssuanceAttempt
	err := r.db.SelectContext(ctx, &attempts, r.db.Rebind(`
		SELECT id, mode, outcome, issuer_email, file_name, row_count,
		       issued, failed, credential_id, error_message, created_at
		FROM issuance_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list issuance history", err)
	}
	return attempts, nil
}
