package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/notify"
	"github.com/jmylchreest/toasty/internal/notify/notifytest"
)

func newConfirmManager() (*notify.Manager, *notifytest.Presenter) {
	presenter := notifytest.NewPresenter()
	m := notify.NewManager(notifytest.NewSurface(10), presenter, notify.DefaultSettings(), nil)
	return m, presenter
}

func TestConfirm_Defaults(t *testing.T) {
	m, presenter := newConfirmManager()

	p := m.Confirm("Delete item?", "", notify.ConfirmOptions{})
	d := presenter.Last()
	require.NotNil(t, d)

	assert.Equal(t, "Confirm", d.Title)
	assert.Equal(t, "Delete item?", d.Message)
	assert.Equal(t, "Confirm", d.ConfirmText)
	assert.Equal(t, "Cancel", d.CancelText)
	assert.False(t, p.Settled())
	assert.Equal(t, 1, presenter.Visible())
}

func TestConfirm_Resolve(t *testing.T) {
	m, presenter := newConfirmManager()

	var settled []error
	m.SetConfirmCallback(func(_ *notify.Dialog, err error) { settled = append(settled, err) })

	p := m.Confirm("Delete item?", "Delete", notify.ConfirmOptions{ConfirmButtonText: "Yes", Type: notify.TypeError})
	d := presenter.Last()

	assert.True(t, d.Confirm())
	assert.False(t, d.Cancel())
	assert.False(t, d.Confirm())

	require.NoError(t, p.Wait(context.Background()))
	assert.True(t, p.Settled())
	assert.Equal(t, []error{nil}, settled)
	assert.Equal(t, 0, presenter.Visible())
}

func TestConfirm_Cancel(t *testing.T) {
	m, presenter := newConfirmManager()

	p := m.Confirm("Delete item?", "", notify.ConfirmOptions{})
	d := presenter.Last()

	assert.True(t, d.Cancel())
	assert.False(t, d.Confirm())

	err := p.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, notify.ErrCancelled)

	var cancelled *notify.CancelledError
	require.True(t, errors.As(err, &cancelled))
	assert.False(t, cancelled.Dismissed)
}

func TestConfirm_Dismiss(t *testing.T) {
	m, presenter := newConfirmManager()

	p := m.Confirm("Delete item?", "", notify.ConfirmOptions{})
	assert.True(t, presenter.Last().Dismiss())

	<-p.Done()
	var cancelled *notify.CancelledError
	require.True(t, errors.As(p.Err(), &cancelled))
	assert.True(t, cancelled.Dismissed)
}

func TestConfirm_WaitContext(t *testing.T) {
	m, presenter := newConfirmManager()

	p := m.Confirm("Delete item?", "", notify.ConfirmOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)

	// Giving up waiting leaves the dialog answerable
	assert.False(t, p.Settled())
	assert.True(t, presenter.Last().Confirm())
	assert.NoError(t, p.Wait(context.Background()))
}

func TestConfirm_DoesNotAffectStack(t *testing.T) {
	m, _ := newConfirmManager()

	m.Confirm("Delete item?", "", notify.ConfirmOptions{})
	h := m.Show("after dialog")

	n, ok := m.Get(h.ID())
	require.True(t, ok)
	assert.Equal(t, 20, n.Offset)
}

func TestConfirm_NoPresenter(t *testing.T) {
	m := notify.NewManager(notifytest.NewSurface(10), nil, notify.DefaultSettings(), nil)

	p := m.Confirm("Delete item?", "", notify.ConfirmOptions{})
	assert.True(t, p.Settled())
	assert.ErrorIs(t, p.Err(), notify.ErrCancelled)
}

func TestConfirm_ConcurrentSettle(t *testing.T) {
	m, presenter := newConfirmManager()

	p := m.Confirm("Delete item?", "", notify.ConfirmOptions{})
	d := presenter.Last()

	results := make(chan bool, 20)
	for i := range 20 {
		go func() {
			if i%2 == 0 {
				results <- d.Confirm()
			} else {
				results <- d.Cancel()
			}
		}()
	}

	wins := 0
	for range 20 {
		if <-results {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	<-p.Done()
}

func TestConfirm_DismissAll(t *testing.T) {
	m, presenter := newConfirmManager()

	first := m.Confirm("one", "", notify.ConfirmOptions{})
	second := m.Confirm("two", "", notify.ConfirmOptions{})
	answered := m.Confirm("three", "", notify.ConfirmOptions{})
	require.Equal(t, 3, m.OpenDialogs())

	require.True(t, presenter.Last().Confirm())
	assert.Equal(t, 2, m.OpenDialogs())

	var order []notify.DialogID
	m.SetConfirmCallback(func(d *notify.Dialog, err error) {
		assert.ErrorIs(t, err, notify.ErrCancelled)
		order = append(order, d.ID)
	})

	assert.Equal(t, 2, m.DismissAll())
	assert.Equal(t, 0, m.OpenDialogs())
	assert.Equal(t, 0, presenter.Visible())
	assert.Equal(t, []notify.DialogID{first.ID(), second.ID()}, order)

	for _, p := range []*notify.Pending{first, second} {
		require.True(t, p.Settled())
		var cancelled *notify.CancelledError
		require.True(t, errors.As(p.Err(), &cancelled))
		assert.True(t, cancelled.Dismissed)
	}
	assert.NoError(t, answered.Err())
	assert.Equal(t, 0, m.DismissAll())
}
