package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	e, err := NewEvent(KindShown, now)
	require.NoError(t, err)

	assert.Len(t, e.ID, 26)
	assert.Equal(t, KindShown, e.Kind)
	assert.Equal(t, now.UnixMilli(), e.Timestamp)
	assert.True(t, e.Time().Equal(now))

	idTime, err := e.ULIDTime()
	require.NoError(t, err)
	assert.True(t, idTime.Equal(now))
	require.NoError(t, e.Validate())
}

func TestNewEvent_IDsSortByTime(t *testing.T) {
	now := time.Now()
	a, err := NewEvent(KindShown, now)
	require.NoError(t, err)
	b, err := NewEvent(KindClosed, now.Add(time.Millisecond))
	require.NoError(t, err)

	assert.Less(t, a.ID, b.ID)
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Event)
		wantErr error
	}{
		{
			name:    "valid event",
			modify:  func(e *Event) {},
			wantErr: nil,
		},
		{
			name:    "empty id",
			modify:  func(e *Event) { e.ID = "" },
			wantErr: ErrEmptyID,
		},
		{
			name:    "unknown kind",
			modify:  func(e *Event) { e.Kind = "exploded" },
			wantErr: ErrInvalidKind,
		},
		{
			name:    "zero timestamp",
			modify:  func(e *Event) { e.Timestamp = 0 },
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEvent(KindSuppressed, time.Now())
			require.NoError(t, err)
			tt.modify(e)
			assert.ErrorIs(t, e.Validate(), tt.wantErr)
		})
	}
}

func TestEvent_MessageTruncated(t *testing.T) {
	e := &Event{Message: "Clause\n  published   successfully"}

	assert.Equal(t, "Clause published successfully", e.MessageTruncated(100))
	assert.Equal(t, "Clause...", e.MessageTruncated(9))
	assert.Equal(t, "Cla", e.MessageTruncated(3))
	assert.Equal(t, "", e.MessageTruncated(0))

	e.Message = "héllo wörld"
	assert.Equal(t, "héllo w...", e.MessageTruncated(10))
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, Kind("").Valid())
}
