// Package confirm implements the confirmation step that precedes every
// issuance request.
//
// The protocol has two phases. Request binds an intent to the single dialog
// and opens it; Confirm executes the bound intent. A failed execution leaves
// the dialog open with the failure shown inline so the user can retry or
// cancel. Requesting again while the dialog is open rebinds the same dialog.
package confirm

import (
	"context"
	"sync"

	"verisure/domain/core"
	"verisure/internal/errors"

	"go.uber.org/zap"
)

// Fixed dialog wording.
const (
	DefaultTitle       = "Confirm issuance"
	DefaultLabel       = "Issue now"
	WarningMessage     = "Once issued, credentials cannot be edited. You may only freeze or revoke them. Proceed?"
	GenericFailure     = "Action failed. Please try again."
	defaultCancelLabel = "Cancel"
)

var (
	ErrNothingPending = errors.New(errors.CodeNothingPending, "No issuance is awaiting confirmation.")
	ErrBusy           = errors.New(errors.CodeBusy, "Issuance already in progress.")
	ErrCancelled      = errors.New(errors.CodeCancelled, "Issuance cancelled.")
)

// Kind distinguishes the issuance paths sharing the gate.
type Kind string

const (
	KindSingle Kind = "single"
	KindBatch  Kind = "batch"
)

// Intent is a pending mutation awaiting confirmation. Payload is owned by
// the intent and must not be mutated after Request.
type Intent struct {
	ID           core.IntentID
	Kind         Kind
	Title        string
	ConfirmLabel string
	Payload      any
}

// Dialog is the observable state of the confirmation dialog.
type Dialog struct {
	IntentID        core.IntentID `json:"intent_id,omitempty"`
	Kind            Kind          `json:"kind,omitempty"`
	Open            bool          `json:"open"`
	Title           string        `json:"title"`
	Message         string        `json:"message"`
	ConfirmLabel    string        `json:"confirm_label"`
	CancelLabel     string        `json:"cancel_label"`
	Error           string        `json:"error,omitempty"`
	ConfirmDisabled bool          `json:"confirm_disabled"`
}

// Executor performs a confirmed intent.
type Executor interface {
	Execute(ctx context.Context, intent Intent) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, intent Intent) error

func (f ExecutorFunc) Execute(ctx context.Context, intent Intent) error {
	return f(ctx, intent)
}

// Gate owns the single confirmation dialog.
type Gate struct {
	mu      sync.Mutex
	dialog  Dialog
	pending *Intent
	running bool
	// generation changes whenever the dialog is rebound or closed so a
	// late completion cannot touch a newer binding.
	generation uint64
	logger     *zap.Logger
}

// NewGate creates a closed gate.
func NewGate(logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{logger: logger.Named("confirm")}
}

// Request binds intent to the dialog and opens it, replacing any previous
// binding. The returned intent carries its assigned ID.
func (g *Gate) Request(intent Intent) (Intent, Dialog) {
	if intent.ID.String() == "" {
		intent.ID = core.NewIntentID()
	}
	if intent.Title == "" {
		intent.Title = DefaultTitle
	}
	if intent.ConfirmLabel == "" {
		intent.ConfirmLabel = DefaultLabel
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil {
		g.logger.Debug("rebinding open dialog",
			zap.String("previous", g.pending.ID.String()),
			zap.String("intent", intent.ID.String()))
	}

	g.generation++
	g.pending = &intent
	g.running = false
	g.dialog = Dialog{
		IntentID:     intent.ID,
		Kind:         intent.Kind,
		Open:         true,
		Title:        intent.Title,
		Message:      WarningMessage,
		ConfirmLabel: intent.ConfirmLabel,
		CancelLabel:  defaultCancelLabel,
	}
	return intent, g.dialog
}

// Dialog returns a copy of the current dialog state.
func (g *Gate) Dialog() Dialog {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dialog
}

// Pending returns the bound intent, if any.
func (g *Gate) Pending() (Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Intent{}, false
	}
	return *g.pending, true
}

// Cancel closes the dialog without executing anything.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeLocked()
}

func (g *Gate) closeLocked() {
	g.generation++
	g.pending = nil
	g.running = false
	g.dialog = Dialog{}
}

// Confirm executes the bound intent.
func (g *Gate) Confirm(ctx context.Context, exec Executor) error {
	return g.ConfirmIntent(ctx, "", exec)
}

// ConfirmIntent executes the bound intent if its ID matches id; an empty id
// matches whatever is bound. While the executor runs the confirm control is
// disabled and further confirms fail with ErrBusy. On success the dialog
// closes; on failure it stays open showing the error.
func (g *Gate) ConfirmIntent(ctx context.Context, id core.IntentID, exec Executor) error {
	g.mu.Lock()
	if g.pending == nil || (id != "" && g.pending.ID != id) {
		g.mu.Unlock()
		return ErrNothingPending
	}
	if g.running {
		g.mu.Unlock()
		return ErrBusy
	}
	g.running = true
	g.dialog.ConfirmDisabled = true
	g.dialog.Error = ""
	generation := g.generation
	intent := *g.pending
	g.mu.Unlock()

	err := exec.Execute(ctx, intent)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.generation != generation {
		g.logger.Debug("intent completed after rebinding",
			zap.String("intent", intent.ID.String()),
			zap.Error(err))
		return err
	}

	g.running = false
	g.dialog.ConfirmDisabled = false
	if err == nil {
		g.closeLocked()
		return nil
	}

	msg := errors.UserMessage(err)
	if msg == "" {
		msg = GenericFailure
	}
	g.dialog.Error = msg
	g.logger.Info("confirmed intent failed",
		zap.String("intent", intent.ID.String()),
		zap.String("kind", string(intent.Kind)),
		zap.Error(err))
	return err
}

// Prompter asks a user to accept or reject the dialog.
type Prompter interface {
	Prompt(ctx context.Context, dialog Dialog) (bool, error)
}

// Await opens the dialog for intent and reports the user's answer. A
// rejection closes the dialog.
func (g *Gate) Await(ctx context.Context, intent Intent, p Prompter) (Intent, bool, error) {
	bound, dialog := g.Request(intent)
	ok, err := p.Prompt(ctx, dialog)
	if err != nil || !ok {
		g.Cancel()
		return bound, false, err
	}
	return bound, true, nil
}

// Run drives the whole protocol with a prompter: ask, execute, and ask again
// after each failure until the intent succeeds or the user declines.
func (g *Gate) Run(ctx context.Context, intent Intent, p Prompter, exec Executor) error {
	bound, ok, err := g.Await(ctx, intent, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}

	for {
		if err := ctx.Err(); err != nil {
			g.Cancel()
			return err
		}
		err := g.ConfirmIntent(ctx, bound.ID, exec)
		if err == nil {
			return nil
		}
		if errors.Is(err, errors.CodeNothingPending) {
			return err
		}

		ok, perr := p.Prompt(ctx, g.Dialog())
		if perr != nil || !ok {
			g.Cancel()
			if perr != nil {
				return perr
			}
			return err
		}
	}
}
