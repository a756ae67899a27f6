package notify

import "fmt"

// ID identifies a notification. IDs increase monotonically and are never reused.
type ID uint64

// String returns the id in its display form.
func (id ID) String() string {
	return fmt.Sprintf("message_%d", uint64(id))
}

// Node is the visual state of a notification handed to a Surface.
// Surfaces receive copies; the manager owns the original.
type Node struct {
	ID        ID
	Type      Type
	Message   string
	ShowClose bool
	Center    bool
	Offset    int // Top position in pixels
	Height    int // Measured height in pixels, set after MeasureHeight
}

// Surface is the rendering sink for notifications.
// Its methods are called with the Manager lock held, so implementations must
// not call back into the Manager synchronously.
type Surface interface {
	// Attach adds a node to the display.
	Attach(n Node)
	// Detach removes a node from the display.
	Detach(n Node)
	// MeasureHeight returns the rendered height of n in pixels.
	MeasureHeight(n Node) int
	// Move repositions an attached node to n.Offset.
	Move(n Node)
}

// DialogPresenter shows modal confirmation dialogs.
// Implementations must not call back into the Manager synchronously.
type DialogPresenter interface {
	// Present shows the dialog. The user's answer is reported through
	// Dialog.Confirm, Dialog.Cancel or Dialog.Dismiss.
	Present(d *Dialog)
	// Close removes a settled dialog from the display.
	Close(d *Dialog)
}

// CloseReason records why a notification closed.
type CloseReason int

const (
	// CloseReasonExpired means the auto-close timer fired.
	CloseReasonExpired CloseReason = iota + 1
	// CloseReasonDismissed means the user closed the notification.
	CloseReasonDismissed
	// CloseReasonClosed means the notification was closed programmatically.
	CloseReasonClosed
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	default:
		return "unknown"
	}
}
