package notify

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is reported when the user cancels or dismisses a confirm dialog.
var ErrCancelled = errors.New("user cancelled")

// CancelledError carries how a dialog was cancelled. It matches ErrCancelled
// with errors.Is.
type CancelledError struct {
	Dismissed bool // Closed without pressing the cancel button
}

func (e *CancelledError) Error() string {
	if e.Dismissed {
		return ErrCancelled.Error() + " (dismissed)"
	}
	return ErrCancelled.Error()
}

// Is reports whether target is ErrCancelled.
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// DialogID identifies a confirm dialog.
type DialogID uint64

// Dialog is a modal confirmation request handed to a DialogPresenter.
type Dialog struct {
	ID          DialogID
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	Type        Type // Empty means primary

	pending *Pending
}

// Confirm resolves the dialog. It returns false if the dialog was already settled.
func (d *Dialog) Confirm() bool {
	return d.pending.settle(nil)
}

// Cancel rejects the dialog with ErrCancelled. It returns false if the dialog
// was already settled.
func (d *Dialog) Cancel() bool {
	return d.pending.settle(&CancelledError{})
}

// Dismiss rejects the dialog as if closed from outside. It returns false if
// the dialog was already settled.
func (d *Dialog) Dismiss() bool {
	return d.pending.settle(&CancelledError{Dismissed: true})
}

// Pending is the single-use result of Confirm.
type Pending struct {
	id      DialogID
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	err     error

	onSettle func(err error)
}

func newPending(id DialogID, onSettle func(err error)) *Pending {
	return &Pending{
		id:       id,
		done:     make(chan struct{}),
		onSettle: onSettle,
	}
}

func (p *Pending) settle(err error) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}
	p.settled = true
	p.err = err
	close(p.done)
	onSettle := p.onSettle
	p.mu.Unlock()

	if onSettle != nil {
		onSettle(err)
	}
	return true
}

// ID returns the id of the dialog this result belongs to.
func (p *Pending) ID() DialogID {
	return p.id
}

// Done is closed once the dialog is settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the dialog has been answered.
func (p *Pending) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Err returns nil after confirmation and a *CancelledError after cancellation.
// It returns nil while the dialog is unsettled; check Settled or Done first.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks until the dialog is settled or ctx is done. Cancelling ctx
// stops waiting but leaves the dialog open.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
