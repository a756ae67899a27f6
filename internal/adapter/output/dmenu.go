package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/toasty/internal/model"
)

// DmenuFormatter formats events one per line for dmenu, rofi or fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}
	if opts.Template != "" {
		if tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template); err == nil {
			f.template = tmpl
		}
	}
	return f
}

// Format writes one line per event.
func (f *DmenuFormatter) Format(w io.Writer, events []model.Event) error {
	for i := range events {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, &events[i])); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, e *model.Event) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, e)); err == nil {
			return buf.String()
		}
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(index))
	}
	if f.opts.ShowTime {
		parts = append(parts, relativeTime(e.Time(), time.Now()))
	}
	parts = append(parts, kindIcon(e.Kind)+" "+string(e.Kind))

	content := messageText(e, f.opts.MessageMaxLen)
	if e.Title != "" {
		content = e.Title + ": " + content
	}
	parts = append(parts, content)

	return strings.Join(parts, sep)
}

// templateData is the value passed to custom templates.
type templateData struct {
	Index        int
	Event        *model.Event
	RelativeTime string
}

func newTemplateData(index int, e *model.Event) templateData {
	return templateData{
		Index:        index,
		Event:        e,
		RelativeTime: relativeTime(e.Time(), time.Now()),
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			r := []rune(s)
			if maxLen <= 0 || len(r) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return string(r[:maxLen])
			}
			return string(r[:maxLen-3]) + "..."
		},
		"reltime": func(ms int64) string {
			return relativeTime(time.UnixMilli(ms), time.Now())
		},
		"kindIcon": kindIcon,
	}
}

func kindIcon(k model.Kind) string {
	switch k {
	case model.KindShown:
		return "+"
	case model.KindSuppressed:
		return "~"
	case model.KindClosed:
		return "-"
	case model.KindConfirmed:
		return "y"
	case model.KindCancelled:
		return "n"
	default:
		return "?"
	}
}

// relativeTime returns a compact age such as "now", "5m" or "3d".
func relativeTime(t, now time.Time) string {
	if t.IsZero() || t.UnixMilli() <= 0 {
		return "unknown"
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}
