// Package output formats history events for the toasty CLI.
package output

import (
	"io"

	"github.com/jmylchreest/toasty/internal/model"
)

// Formatter formats events for output.
type Formatter interface {
	// Format writes formatted events to the writer.
	Format(w io.Writer, events []model.Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatIDs   FormatType = "ids"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
)

// NewFormatter creates a formatter for the specified format type. Unknown
// formats fall back to plain.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template      string // Custom text/template for dmenu and plain
	ShowIndex     bool   // Show 1-based index prefix
	ShowTime      bool   // Show relative time
	MessageMaxLen int    // Maximum message length in runes (0 = unlimited)
	Separator     string // Field separator for dmenu format
}

// DefaultFormatterOptions returns the defaults used by toasty history.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:     true,
		ShowTime:      true,
		MessageMaxLen: 80,
		Separator:     " | ",
	}
}
