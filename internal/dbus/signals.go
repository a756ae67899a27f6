package dbus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toasty/internal/notify"
)

// ErrNotConnected is returned when emitting before Start.
var ErrNotConnected = errors.New("not connected to D-Bus")

func (s *Server) connection() *dbus.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return nil
	}
	return s.conn
}

// EmitClosed emits the Closed signal for a notification.
func (s *Server) EmitClosed(id notify.ID, reason notify.CloseReason) error {
	conn := s.connection()
	if conn == nil {
		return ErrNotConnected
	}

	wire := WireCloseReason(reason)
	if err := conn.Emit(Path, Interface+".Closed", uint64(id), uint32(wire)); err != nil {
		return fmt.Errorf("failed to emit Closed signal: %w", err)
	}

	s.logger.Debug("emitted Closed signal", "id", id.String(), "reason", wire.String())
	return nil
}

// EmitConfirmSettled emits the ConfirmSettled signal. err is the settled
// result of the dialog: nil on confirmation.
func (s *Server) EmitConfirmSettled(id notify.DialogID, err error) error {
	conn := s.connection()
	if conn == nil {
		return ErrNotConnected
	}

	confirmed, dismissed := settledFlags(err)
	if err := conn.Emit(Path, Interface+".ConfirmSettled", uint64(id), confirmed, dismissed); err != nil {
		return fmt.Errorf("failed to emit ConfirmSettled signal: %w", err)
	}

	s.logger.Debug("emitted ConfirmSettled signal", "dialog_id", uint64(id), "confirmed", confirmed)
	return nil
}

func settledFlags(err error) (confirmed, dismissed bool) {
	if err == nil {
		return true, false
	}
	var cancelled *notify.CancelledError
	if errors.As(err, &cancelled) {
		return false, cancelled.Dismissed
	}
	return false, false
}

// settledError reverses settledFlags on the client side.
func settledError(confirmed, dismissed bool) error {
	if confirmed {
		return nil
	}
	return &notify.CancelledError{Dismissed: dismissed}
}
