package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toasty/internal/model"
)

// PlainFormatter formats events as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a plain text formatter. An invalid template is
// ignored in favour of the default layout.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}
	if opts.Template != "" {
		if tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template); err == nil {
			f.template = tmpl
		}
	}
	return f
}

// Format writes one entry per event.
func (f *PlainFormatter) Format(w io.Writer, events []model.Event) error {
	for i := range events {
		if err := f.formatEvent(w, i+1, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEvent(w io.Writer, index int, e *model.Event) error {
	if f.template != nil {
		if err := f.template.Execute(w, newTemplateData(index, e)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	fmt.Fprintf(&sb, "%-10s", e.Kind)
	if e.Type != "" {
		fmt.Fprintf(&sb, " %-7s", e.Type)
	}
	if id := subject(e); id != "" {
		sb.WriteString(" " + id)
	}
	if f.opts.ShowTime {
		sb.WriteString(" (" + humanize.Time(e.Time()) + ")")
	}
	sb.WriteString("\n")

	if e.Title != "" {
		sb.WriteString("    " + e.Title + "\n")
	}
	if msg := messageText(e, f.opts.MessageMaxLen); msg != "" {
		sb.WriteString("    " + msg + "\n")
	}
	if detail := detailText(e); detail != "" {
		sb.WriteString("    " + detail + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// subject names what the event is about: a notification or a dialog.
func subject(e *model.Event) string {
	switch {
	case e.NotificationID != 0:
		return fmt.Sprintf("message_%d", e.NotificationID)
	case e.DialogID != 0:
		return fmt.Sprintf("dialog_%d", e.DialogID)
	default:
		return ""
	}
}

func detailText(e *model.Event) string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, "reason="+e.Reason)
	}
	if e.Category != "" {
		parts = append(parts, "category="+e.Category)
	}
	return strings.Join(parts, " ")
}

func messageText(e *model.Event, maxLen int) string {
	if maxLen > 0 {
		return e.MessageTruncated(maxLen)
	}
	return strings.Join(strings.Fields(e.Message), " ")
}

// FormatField returns a single field of an event.
func FormatField(e *model.Event, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return e.ID
	case "kind":
		return string(e.Kind)
	case "type":
		return e.Type
	case "title":
		return e.Title
	case "category":
		return e.Category
	case "reason":
		return e.Reason
	case "time":
		return e.Time().Format("2006-01-02 15:04:05")
	default:
		return e.Message
	}
}
