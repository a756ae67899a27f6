package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/notify"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestOptionsFrom_Stringer(t *testing.T) {
	assert.Equal(t, "label:x", notify.OptionsFrom(label("x")).Message)
}

func TestOptionsFrom_NilPointer(t *testing.T) {
	var o *notify.Options
	assert.Equal(t, notify.Options{}, notify.OptionsFrom(o))
}

func TestParseType(t *testing.T) {
	for _, tt := range []struct {
		in      string
		want    notify.Type
		wantErr bool
	}{
		{"", notify.TypeInfo, false},
		{"success", notify.TypeSuccess, false},
		{"warning", notify.TypeWarning, false},
		{"error", notify.TypeError, false},
		{"primary", "", true},
	} {
		got, err := notify.ParseType(tt.in)
		if tt.wantErr {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "expired", notify.CloseReasonExpired.String())
	assert.Equal(t, "dismissed", notify.CloseReasonDismissed.String())
	assert.Equal(t, "closed", notify.CloseReasonClosed.String())
	assert.Equal(t, "paused", notify.TimerPaused.String())
	assert.Equal(t, "duplicate", notify.SuppressDuplicate.String())
}
