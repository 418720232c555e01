package app

import (
	"context"
	"sync"
	"time"

	"verisure/internal/errors"
	"verisure/ports"

	"go.uber.org/zap"
)

// Approval status lines
const (
	StatusStillPending = "Still pending…"
	MsgMissingEntityID = "Issuer session is missing entityId. Please login again."
)

// DefaultPollInterval is used when the watcher is given no interval
const DefaultPollInterval = 4 * time.Second

// ApprovalState is what the approval lock screen shows
type ApprovalState struct {
	Locked    bool      `json:"locked"`
	Status    string    `json:"status,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}

// ApprovalWatcher polls the approval status of a pending issuer and lifts
// the console lock once the issuer is approved
type ApprovalWatcher struct {
	api      ports.AccountAPI
	sessions ports.SessionRepository
	profile  string
	interval time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	state ApprovalState
	wake  chan struct{}
}

// NewApprovalWatcher creates a watcher polling every interval
func NewApprovalWatcher(api ports.AccountAPI, sessions ports.SessionRepository, profile string, interval time.Duration, logger *zap.Logger) *ApprovalWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalWatcher{
		api:      api,
		sessions: sessions,
		profile:  profile,
		interval: interval,
		logger:   logger.Named("approval"),
		wake:     make(chan struct{}, 1),
	}
}

// Wake asks Supervise to start polling again, e.g. after a pending issuer
// logged in. It never blocks; wakes sent while one is queued are merged.
func (w *ApprovalWatcher) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// State returns the result of the last check
func (w *ApprovalWatcher) State() ApprovalState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *ApprovalWatcher) setState(st ApprovalState) ApprovalState {
	st.CheckedAt = time.Now()
	w.mu.Lock()
	w.state = st
	w.mu.Unlock()
	return st
}

// Check polls once. Sessions that need no approval report unlocked without
// a network call. An issuer session without an entity ID is cleared.
func (w *ApprovalWatcher) Check(ctx context.Context) (ApprovalState, error) {
	sess, err := w.sessions.Get(ctx, w.profile)
	if err != nil {
		return w.State(), err
	}
	if !sess.NeedsApproval() {
		return w.setState(ApprovalState{}), nil
	}

	if sess.EntityID == "" {
		if err := w.sessions.Clear(ctx, w.profile); err != nil {
			w.logger.Warn("failed to clear session", zap.Error(err))
		}
		w.setState(ApprovalState{})
		return w.State(), errors.Unauthorized(MsgMissingEntityID)
	}

	st, err := w.api.CheckIssuerStatus(ctx, sess.EntityID)
	switch {
	case errors.Is(err, errors.CodeServerError):
		return w.setState(ApprovalState{Locked: true, Status: "Error: " + errors.UserMessage(err)}), nil
	case err != nil:
		w.logger.Debug("approval check failed", zap.Error(err))
		return w.setState(ApprovalState{Locked: true, Status: StatusStillPending}), nil
	case st.Status == "":
		return w.setState(ApprovalState{Locked: true, Status: StatusStillPending}), nil
	}

	status := "Current status: " + st.Status
	if !st.Approved() {
		return w.setState(ApprovalState{Locked: true, Status: status}), nil
	}

	approved := sess.Approve(st.IssuerName)
	if err := w.sessions.Set(ctx, w.profile, &approved); err != nil {
		return w.setState(ApprovalState{Locked: true, Status: status}), err
	}
	w.logger.Info("issuer approved", zap.String("entity", sess.EntityID), zap.String("name", approved.IssuerName))
	return w.setState(ApprovalState{Status: status}), nil
}

// Run checks immediately and then on every tick until the console is
// unlocked or ctx is done.
func (w *ApprovalWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		st, err := w.Check(ctx)
		if errors.Is(err, errors.CodeUnauthorized) {
			return err
		}
		if err != nil {
			w.logger.Warn("approval check failed", zap.Error(err))
		} else if !st.Locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Supervise runs the poll loop once at start and again after every Wake,
// until ctx is done. A broken session ends one loop, not the supervisor.
func (w *ApprovalWatcher) Supervise(ctx context.Context) error {
	for {
		if err := w.Run(ctx); err != nil {
			w.logger.Warn("approval watcher stopped", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-w.wake:
		}
	}
}
