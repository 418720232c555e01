package confirm

import (
	"context"
	"sync/atomic"
	"testing"

	"verisure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPrompter struct {
	answers []bool
	seen    []Dialog
}

func (p *scriptedPrompter) Prompt(_ context.Context, d Dialog) (bool, error) {
	p.seen = append(p.seen, d)
	if len(p.answers) == 0 {
		return false, nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func TestRequestOpensDialog(t *testing.T) {
	g := NewGate(nil)
	intent, d := g.Request(Intent{Kind: KindBatch})

	assert.NotEmpty(t, intent.ID)
	assert.True(t, d.Open)
	assert.Equal(t, "Confirm issuance", d.Title)
	assert.Equal(t, "Issue now", d.ConfirmLabel)
	assert.Equal(t, WarningMessage, d.Message)
	assert.False(t, d.ConfirmDisabled)
}

func TestCancelExecutesNothing(t *testing.T) {
	g := NewGate(nil)
	g.Request(Intent{Kind: KindSingle})
	g.Cancel()

	var calls int32
	err := g.Confirm(context.Background(), ExecutorFunc(func(context.Context, Intent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	assert.ErrorIs(t, err, ErrNothingPending)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.False(t, g.Dialog().Open)
}

func TestConfirmSuccessCloses(t *testing.T) {
	g := NewGate(nil)
	g.Request(Intent{Kind: KindSingle, Payload: "p"})

	var got Intent
	err := g.Confirm(context.Background(), ExecutorFunc(func(_ context.Context, i Intent) error {
		got = i
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "p", got.Payload)
	assert.False(t, g.Dialog().Open)
	_, pending := g.Pending()
	assert.False(t, pending)
}

func TestConfirmFailureStaysOpenForRetry(t *testing.T) {
	g := NewGate(nil)
	g.Request(Intent{Kind: KindBatch})

	attempts := 0
	exec := ExecutorFunc(func(context.Context, Intent) error {
		attempts++
		if attempts == 1 {
			return errors.ServerError("Sheet locked")
		}
		return nil
	})

	err := g.Confirm(context.Background(), exec)
	require.Error(t, err)
	d := g.Dialog()
	assert.True(t, d.Open)
	assert.Equal(t, "Sheet locked", d.Error)
	assert.False(t, d.ConfirmDisabled)

	require.NoError(t, g.Confirm(context.Background(), exec))
	assert.Equal(t, 2, attempts)
	assert.False(t, g.Dialog().Open)
}

func TestConfirmGenericMessage(t *testing.T) {
	g := NewGate(nil)
	g.Request(Intent{})
	_ = g.Confirm(context.Background(), ExecutorFunc(func(context.Context, Intent) error {
		return &errors.AppError{Code: errors.CodeInternalError}
	}))
	assert.Equal(t, GenericFailure, g.Dialog().Error)
}

func TestConfirmWhileRunningIsBusy(t *testing.T) {
	g := NewGate(nil)
	g.Request(Intent{Kind: KindBatch})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- g.Confirm(context.Background(), ExecutorFunc(func(context.Context, Intent) error {
			close(started)
			<-release
			return nil
		}))
	}()

	<-started
	assert.True(t, g.Dialog().ConfirmDisabled)
	err := g.Confirm(context.Background(), ExecutorFunc(func(context.Context, Intent) error { return nil }))
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestRebindDuringExecutionLeavesNewDialog(t *testing.T) {
	g := NewGate(nil)
	g.Request(Intent{Kind: KindBatch})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- g.Confirm(context.Background(), ExecutorFunc(func(context.Context, Intent) error {
			close(started)
			<-release
			return errors.ServerError("late failure")
		}))
	}()

	<-started
	next, _ := g.Request(Intent{Kind: KindSingle, ConfirmLabel: "Issue credential now"})
	close(release)
	require.Error(t, <-done)

	d := g.Dialog()
	assert.True(t, d.Open)
	assert.Equal(t, next.ID, d.IntentID)
	assert.Equal(t, "Issue credential now", d.ConfirmLabel)
	assert.Empty(t, d.Error)
	assert.False(t, d.ConfirmDisabled)
}

func TestConfirmIntentRejectsStaleID(t *testing.T) {
	g := NewGate(nil)
	first, _ := g.Request(Intent{Kind: KindBatch})
	g.Request(Intent{Kind: KindSingle})

	err := g.ConfirmIntent(context.Background(), first.ID, ExecutorFunc(func(context.Context, Intent) error { return nil }))
	assert.ErrorIs(t, err, ErrNothingPending)
	assert.True(t, g.Dialog().Open)
}

func TestRunRetriesUntilDeclined(t *testing.T) {
	g := NewGate(nil)
	p := &scriptedPrompter{answers: []bool{true, true, false}}

	attempts := 0
	err := g.Run(context.Background(), Intent{Kind: KindBatch}, p, ExecutorFunc(func(context.Context, Intent) error {
		attempts++
		return errors.ServerError("Batch issuance failed.")
	}))

	require.Error(t, err)
	assert.Equal(t, "Batch issuance failed.", errors.UserMessage(err))
	assert.Equal(t, 2, attempts)
	require.Len(t, p.seen, 3)
	assert.Empty(t, p.seen[0].Error)
	assert.Equal(t, "Batch issuance failed.", p.seen[1].Error)
	assert.False(t, g.Dialog().Open)
}

func TestRunDeclinedUpFront(t *testing.T) {
	g := NewGate(nil)
	err := g.Run(context.Background(), Intent{Kind: KindSingle}, &scriptedPrompter{answers: []bool{false}},
		ExecutorFunc(func(context.Context, Intent) error {
			t.Fatal("executor must not run")
			return nil
		}))
	assert.ErrorIs(t, err, ErrCancelled)
}
