package notify

import (
	"fmt"
	"time"
)

// Type is the visual kind of a notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
	TypeError   Type = "error"
)

// Types returns all valid notification types.
func Types() []Type {
	return []Type{TypeSuccess, TypeWarning, TypeInfo, TypeError}
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeWarning, TypeInfo, TypeError:
		return true
	default:
		return false
	}
}

// ParseType converts a string into a Type. An empty string yields TypeInfo.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeInfo, nil
	}
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid notification type %q, must be one of: %v", s, Types())
	}
	return t, nil
}

// Options configures a single notification.
type Options struct {
	Message string
	Type    Type // Empty means TypeInfo

	// Duration before auto-close. Nil uses the manager default, zero disables
	// auto-close.
	Duration *time.Duration

	ShowClose bool
	Center    bool
	Offset    int // Base offset in pixels, zero uses the manager default

	// OnClose runs once when the notification closes, before it is detached.
	OnClose func()
}

// Duration returns a pointer to d for use in Options.Duration.
func Duration(d time.Duration) *time.Duration {
	return &d
}

// OptionsFrom normalizes a raw message value or an Options value.
// Strings, numbers and fmt.Stringer values become the message; anything else
// (including nil) becomes an empty message.
func OptionsFrom(v any) Options {
	switch m := v.(type) {
	case Options:
		return m
	case *Options:
		if m == nil {
			return Options{}
		}
		return *m
	case string:
		return Options{Message: m}
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Options{Message: fmt.Sprint(m)}
	case fmt.Stringer:
		return Options{Message: m.String()}
	default:
		return Options{}
	}
}

// withDefaults fills unset fields from the manager settings.
func (o Options) withDefaults(s Settings) Options {
	if o.Type == "" {
		o.Type = TypeInfo
	}
	if o.Duration == nil {
		o.Duration = Duration(s.Duration)
	}
	if o.Offset == 0 {
		o.Offset = s.Offset
	}
	return o
}

// ConfirmOptions configures a confirmation dialog.
type ConfirmOptions struct {
	ConfirmButtonText string // Default "Confirm"
	CancelButtonText  string // Default "Cancel"
	Type              Type   // Styles the confirm button; empty means primary
}

// Settings holds manager-wide defaults.
type Settings struct {
	Offset       int           // Default base offset in pixels
	Gap          int           // Gap between stacked notifications in pixels
	Duration     time.Duration // Default auto-close duration
	PauseOnHover bool          // Hovering cancels the auto-close timer
}

// DefaultSettings returns the stock manager defaults.
func DefaultSettings() Settings {
	return Settings{
		Offset:       20,
		Gap:          16,
		Duration:     3 * time.Second,
		PauseOnHover: true,
	}
}
