package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/notify"
)

func TestClassify(t *testing.T) {
	d := notify.NewDeduplicator(0, nil)

	tests := []struct {
		content string
		want    string
	}{
		{"Clause published successfully", "publish"},
		{"PUBLISHING now", "publish"},
		{"The clause has been published", "publish"},
		{"Amendment rejected", "reject"},
		{"Added to resolution", "resolution"},
		{"Saved draft", "Saved draft"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Classify(tt.content))
		})
	}
}

func TestAccept_DuplicateWithinWindow(t *testing.T) {
	d := notify.NewDeduplicator(time.Second, nil)

	_, ok := d.Accept(notify.TypeSuccess, "Saved", epoch)
	require.True(t, ok)

	s, ok := d.Accept(notify.TypeSuccess, "Saved", epoch.Add(999*time.Millisecond))
	assert.False(t, ok)
	assert.Equal(t, notify.SuppressSameCategory, s.Reason)

	_, ok = d.Accept(notify.TypeSuccess, "Saved", epoch.Add(1000*time.Millisecond))
	assert.True(t, ok)
}

func TestAccept_SameCategoryDifferentText(t *testing.T) {
	d := notify.NewDeduplicator(time.Second, nil)

	_, ok := d.Accept(notify.TypeSuccess, "Clause published", epoch)
	require.True(t, ok)

	s, ok := d.Accept(notify.TypeInfo, "Publish complete", epoch.Add(500*time.Millisecond))
	assert.False(t, ok)
	assert.Equal(t, "publish", s.Category)
}

func TestAccept_WindowMeasuredFromLastAccepted(t *testing.T) {
	d := notify.NewDeduplicator(time.Second, nil)

	_, ok := d.Accept(notify.TypeError, "boom", epoch)
	require.True(t, ok)

	// Suppressed attempts do not extend the window
	_, ok = d.Accept(notify.TypeError, "boom", epoch.Add(900*time.Millisecond))
	require.False(t, ok)
	_, ok = d.Accept(notify.TypeError, "boom", epoch.Add(1100*time.Millisecond))
	assert.True(t, ok)
}

func TestAccept_UnrelatedMessagesPass(t *testing.T) {
	d := notify.NewDeduplicator(time.Second, nil)

	_, ok := d.Accept(notify.TypeInfo, "one", epoch)
	require.True(t, ok)
	_, ok = d.Accept(notify.TypeInfo, "two", epoch.Add(10*time.Millisecond))
	assert.True(t, ok)
}

func TestAccept_Disabled(t *testing.T) {
	d := notify.NewDeduplicator(time.Second, nil)
	d.Configure(false, time.Second, nil)

	_, ok := d.Accept(notify.TypeInfo, "same", epoch)
	require.True(t, ok)
	_, ok = d.Accept(notify.TypeInfo, "same", epoch)
	assert.True(t, ok)
}

func TestAccept_CustomRules(t *testing.T) {
	d := notify.NewDeduplicator(2*time.Second, []notify.CategoryRule{
		{Keyword: "Upload", Category: "upload"},
		{Keyword: ""},
	})
	assert.Equal(t, 2*time.Second, d.Window())
	assert.Equal(t, "upload", d.Classify("upload finished"))
	assert.Equal(t, "publish me", d.Classify("publish me"))
}

func TestTypedShortcuts_Dedup(t *testing.T) {
	m, _, clock := newTestManager(t, 10)

	first := m.Success("Saved")
	require.IsType(t, notify.Shown{}, first)

	second := m.Success("Saved")
	require.IsType(t, notify.Suppressed{}, second)
	assert.Nil(t, notify.HandleOf(second))
	assert.Equal(t, 1, m.Count())

	clock.Advance(time.Second)
	third := m.Success("Saved")
	require.IsType(t, notify.Shown{}, third)
	assert.Equal(t, 2, m.Count())
}

func TestTypedShortcuts_CategoryAcrossTypes(t *testing.T) {
	m, _, _ := newTestManager(t, 10)

	m.Success("Clause published")
	res := m.Warning("Publishing failed for one recipient")

	s, ok := res.(notify.Suppressed)
	require.True(t, ok)
	assert.Equal(t, notify.SuppressSameCategory, s.Reason)
	assert.Equal(t, 1, m.Count())
}

func TestTypedShortcuts_SetType(t *testing.T) {
	m, _, _ := newTestManager(t, 10)

	for _, tt := range []struct {
		fn   func(any) notify.Result
		want notify.Type
		msg  string
	}{
		{m.Success, notify.TypeSuccess, "a"},
		{m.Warning, notify.TypeWarning, "b"},
		{m.Info, notify.TypeInfo, "c"},
		{m.Error, notify.TypeError, "d"},
	} {
		h := notify.HandleOf(tt.fn(notify.Options{Message: tt.msg, Type: notify.TypeError}))
		require.NotNil(t, h)
		n, ok := m.Get(h.ID())
		require.True(t, ok)
		assert.Equal(t, tt.want, n.Type)
	}
}

func TestShow_BypassesDedup(t *testing.T) {
	m, _, _ := newTestManager(t, 10)

	m.Show("same")
	m.Show("same")
	assert.Equal(t, 2, m.Count())
}
