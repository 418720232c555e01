package ports

import (
	"context"

	"verisure/domain/session"
)

// SessionRepository defines the interface for the locally stored login session
type SessionRepository interface {
	// Get returns the session stored for a profile, or nil when there is none
	// or the stored data cannot be read
	Get(ctx context.Context, profile string) (*session.Session, error)

	// Set replaces the session stored for a profile
	Set(ctx context.Context, profile string, s *session.Session) error

	// Clear removes the session stored for a profile
	Clear(ctx context.Context, profile string) error

	// SavePrefill leaves a one-shot login prefill for a profile
	SavePrefill(ctx context.Context, profile string, p session.Prefill) error

	// TakePrefill returns and removes the pending prefill, or nil when there
	// is none or it expired
	TakePrefill(ctx context.Context, profile string) (*session.Prefill, error)
}
