package notify

// Result is the outcome of a typed shortcut: either Shown or Suppressed.
type Result interface {
	result()
}

// Shown is returned when the notification was displayed.
type Shown struct {
	Handle *Handle
}

// Suppressed is returned when the deduplicator rejected the notification.
type Suppressed struct {
	Reason   SuppressReason
	Category string
}

func (Shown) result()      {}
func (Suppressed) result() {}

// Handle controls a displayed notification.
type Handle struct {
	m  *Manager
	id ID
}

// ID returns the notification id.
func (h *Handle) ID() ID {
	return h.id
}

// Close closes the notification. Closing an already closed notification is a no-op.
func (h *Handle) Close() {
	if h == nil || h.m == nil {
		return
	}
	h.m.close(h.id, CloseReasonClosed)
}

// Live reports whether the notification is still displayed.
func (h *Handle) Live() bool {
	if h == nil || h.m == nil {
		return false
	}
	_, ok := h.m.Get(h.id)
	return ok
}

// HandleOf returns the handle of a Shown result, or nil for Suppressed.
func HandleOf(r Result) *Handle {
	if s, ok := r.(Shown); ok {
		return s.Handle
	}
	return nil
}
