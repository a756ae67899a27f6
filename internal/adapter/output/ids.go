package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toasty/internal/model"
)

// IDsFormatter outputs just the event IDs, one per line.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes event IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, events []model.Event) error {
	for _, e := range events {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
