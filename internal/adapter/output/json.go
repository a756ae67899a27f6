package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toasty/internal/model"
)

// JSONFormatter formats events as an indented JSON array.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes events as a JSON array. No events yields [].
func (f *JSONFormatter) Format(w io.Writer, events []model.Event) error {
	if events == nil {
		events = []model.Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

// JSONLinesFormatter writes one compact JSON object per line, the shape
// toasty history --follow streams.
type JSONLinesFormatter struct{}

// Format writes each event on its own line.
func (JSONLinesFormatter) Format(w io.Writer, events []model.Event) error {
	encoder := json.NewEncoder(w)
	for _, e := range events {
		if err := encoder.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
