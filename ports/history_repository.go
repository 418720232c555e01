package ports

import (
	"context"

	"verisure/models"
)

// HistoryRepository records issuance attempts
type HistoryRepository interface {
	// Record stores one attempt
	Record(ctx context.Context, attempt *models.IssuanceAttempt) error

	// List returns the most recent attempts first, at most limit of them
	List(ctx context.Context, limit int) ([]*models.IssuanceAttempt, error)
}
