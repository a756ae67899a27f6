package dbus

import (
	"time"

	"github.com/jmylchreest/toasty/internal/notify"
)

const (
	// Interface is the toasty D-Bus interface name.
	Interface = "io.github.jmylchreest.Toasty"
	// Path is the toasty object path.
	Path = "/io/github/jmylchreest/Toasty"
	// BusName is the bus name the daemon claims.
	BusName = "io.github.jmylchreest.Toasty"

	// DefaultDuration asks the daemon to use its configured timeout.
	DefaultDuration int32 = -1
)

// CloseReason is the wire form of notify.CloseReason. The values follow the
// freedesktop.org NotificationClosed reasons.
type CloseReason uint32

const (
	CloseReasonExpired   CloseReason = 1
	CloseReasonDismissed CloseReason = 2
	CloseReasonClosed    CloseReason = 3
	CloseReasonUndefined CloseReason = 4
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
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// WireCloseReason converts a manager close reason for the Closed signal.
func WireCloseReason(r notify.CloseReason) CloseReason {
	switch r {
	case notify.CloseReasonExpired:
		return CloseReasonExpired
	case notify.CloseReasonDismissed:
		return CloseReasonDismissed
	case notify.CloseReasonClosed:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// ShowRequest carries the arguments of the Show and Notify methods.
type ShowRequest struct {
	Type       string
	Message    string
	DurationMs int32 // -1 uses the daemon default, 0 never expires
	ShowClose  bool
}

// Options converts the request into manager options.
func (r ShowRequest) Options() (notify.Options, error) {
	t, err := notify.ParseType(r.Type)
	if err != nil {
		return notify.Options{}, err
	}
	opts := notify.Options{
		Type:      t,
		Message:   r.Message,
		ShowClose: r.ShowClose,
	}
	if r.DurationMs >= 0 {
		opts.Duration = notify.Duration(time.Duration(r.DurationMs) * time.Millisecond)
	}
	return opts, nil
}

// ConfirmRequest carries the arguments of the Confirm method.
type ConfirmRequest struct {
	Message     string
	Title       string
	ConfirmText string
	CancelText  string
	Type        string // Empty styles the confirm button as primary
}

// Options converts the request into manager confirm options.
func (r ConfirmRequest) Options() (notify.ConfirmOptions, error) {
	opts := notify.ConfirmOptions{
		ConfirmButtonText: r.ConfirmText,
		CancelButtonText:  r.CancelText,
	}
	if r.Type != "" {
		t, err := notify.ParseType(r.Type)
		if err != nil {
			return opts, err
		}
		opts.Type = t
	}
	return opts, nil
}

// Capabilities lists the features advertised by toastyd.
var Capabilities = []string{
	"body",
	"close-button",
	"confirm",
	"dedup",
	"persistence",
	"sound",
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name    string
	Vendor  string
	Version string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:    "toastyd",
		Vendor:  "toasty",
		Version: "0.0.1",
	}
}
