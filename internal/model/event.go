// Package model defines the history records written by toastyd.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind is what happened to a notification or dialog.
type Kind string

const (
	KindShown      Kind = "shown"
	KindSuppressed Kind = "suppressed"
	KindClosed     Kind = "closed"
	KindConfirmed  Kind = "confirmed"
	KindCancelled  Kind = "cancelled"
)

// Kinds lists every event kind.
func Kinds() []Kind {
	return []Kind{KindShown, KindSuppressed, KindClosed, KindConfirmed, KindCancelled}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindShown, KindSuppressed, KindClosed, KindConfirmed, KindCancelled:
		return true
	}
	return false
}

// Event is a single history entry.
type Event struct {
	ID             string `json:"id"` // ULID, sortable by creation time
	Kind           Kind   `json:"kind"`
	NotificationID uint64 `json:"notification_id,omitempty"`
	DialogID       uint64 `json:"dialog_id,omitempty"`
	Type           string `json:"type,omitempty"`
	Message        string `json:"message,omitempty"`
	Title          string `json:"title,omitempty"`
	Category       string `json:"category,omitempty"` // Dedup category for suppressed events
	Reason         string `json:"reason,omitempty"`   // Close or suppression reason
	Timestamp      int64  `json:"timestamp"`          // Unix milliseconds
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrInvalidKind      = errors.New("kind must be shown, suppressed, closed, confirmed or cancelled")
	ErrInvalidTimestamp = errors.New("timestamp must be greater than 0")
)

// NewEvent creates a new Event with a generated ULID stamped at now.
func NewEvent(kind Kind, now time.Time) (*Event, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Event{
		ID:        id.String(),
		Kind:      kind,
		Timestamp: now.UnixMilli(),
	}, nil
}

// Validate checks that the event has all required fields.
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if e.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// Time returns the timestamp as a time.Time.
func (e *Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ULIDTime returns the time encoded in the event ID.
func (e *Event) ULIDTime() (time.Time, error) {
	id, err := ulid.Parse(e.ID)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}

// MessageTruncated returns the message truncated to maxLen runes.
// If the message is longer, it is truncated and "..." is appended.
func (e *Event) MessageTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	// Collapse whitespace and newlines to single spaces
	msg := []rune(strings.Join(strings.Fields(e.Message), " "))

	if len(msg) <= maxLen {
		return string(msg)
	}
	if maxLen <= 3 {
		return string(msg[:maxLen])
	}
	return string(msg[:maxLen-3]) + "..."
}
