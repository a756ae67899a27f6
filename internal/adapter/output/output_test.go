package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/model"
)

func testEvents() []model.Event {
	now := time.Now()
	return []model.Event{
		{
			ID:             "01HAAAAAAAAAAAAAAAAAAAAAAA",
			Kind:           model.KindShown,
			NotificationID: 7,
			Type:           "success",
			Message:        "Clause has been published",
			Timestamp:      now.Add(-5 * time.Minute).UnixMilli(),
		},
		{
			ID:        "01HBBBBBBBBBBBBBBBBBBBBBBB",
			Kind:      model.KindCancelled,
			DialogID:  3,
			Title:     "Confirm",
			Message:   "Reject the motion?",
			Reason:    "dismissed",
			Timestamp: now.Add(-2 * time.Hour).UnixMilli(),
		},
	}
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewDmenuFormatter(DefaultFormatterOptions())
	require.NoError(t, formatter.Format(&buf, testEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "1 | 5m | + shown | Clause has been published", lines[0])
	assert.Equal(t, "2 | 2h | n cancelled | Confirm: Reject the motion?", lines[1])
}

func TestDmenuFormatter_NoIndex(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.ShowTime = false
	opts.Separator = "\t"
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "+ shown\tClause has been published", lines[0])
}

func TestDmenuFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}: {{kindIcon .Event.Kind}} {{truncate .Event.Message 10}}"
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1: + Clause ...", lines[0])
	assert.Equal(t, "2: n Reject ...", lines[1])
}

func TestDmenuFormatter_InvalidTemplateFallsBack(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index"
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testEvents()[:1]))

	assert.Contains(t, buf.String(), "Clause has been published")
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	events := testEvents()
	require.NoError(t, NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, events))

	var decoded []model.Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, events, decoded)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONLinesFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, JSONLinesFormatter{}.Format(&buf, testEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var e model.Event
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		assert.NoError(t, e.Validate())
	}
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewIDsFormatter().Format(&buf, testEvents()))
	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAAAA\n01HBBBBBBBBBBBBBBBBBBBBBBB\n", buf.String())
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewPlainFormatter(DefaultFormatterOptions()).Format(&buf, testEvents()))

	output := buf.String()
	assert.Contains(t, output, "[1] shown      success message_7 (5 minutes ago)")
	assert.Contains(t, output, "    Clause has been published\n")
	assert.Contains(t, output, "[2] cancelled  dialog_3 (2 hours ago)")
	assert.Contains(t, output, "    Confirm\n")
	assert.Contains(t, output, "    reason=dismissed\n")
}

func TestPlainFormatter_Truncates(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.ShowTime = false
	opts.MessageMaxLen = 8
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEvents()[:1]))

	assert.Equal(t, "shown      success message_7\n    Claus...\n", buf.String())
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Event.ID}} {{.Event.Kind}}"
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEvents()))

	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAAAA shown\n01HBBBBBBBBBBBBBBBBBBBBBBB cancelled\n", buf.String())
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &DmenuFormatter{}, NewFormatter(FormatDmenu, opts))
	assert.IsType(t, &IDsFormatter{}, NewFormatter(FormatIDs, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("unknown", opts))
}

func TestFormatField(t *testing.T) {
	e := testEvents()[1]

	assert.Equal(t, e.ID, FormatField(&e, "id"))
	assert.Equal(t, "cancelled", FormatField(&e, "KIND"))
	assert.Equal(t, "Confirm", FormatField(&e, "title"))
	assert.Equal(t, "dismissed", FormatField(&e, "reason"))
	assert.Equal(t, "Reject the motion?", FormatField(&e, "message"))
	assert.Equal(t, "Reject the motion?", FormatField(&e, "anything"))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "now"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{2 * 24 * time.Hour, "2d"},
		{15 * 24 * time.Hour, "2w"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeTime(now.Add(-tt.ago), now))
		})
	}

	assert.Equal(t, "unknown", relativeTime(time.Time{}, now))
}
