package display

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the model on the terminal until the user quits or ctx is done.
// The surface is bound to the program before it starts, so anything the
// manager shows early is drawn on the first frame.
func Run(ctx context.Context, model Model, surface *Surface, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	}, opts...)

	p := tea.NewProgram(model, opts...)
	surface.Bind(p)
	defer surface.Stop()

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return &TerminalError{Toasts: len(model.toasts), Err: err}
	}
	return nil
}

// TerminalError reports that the bubbletea program driving the surface
// failed, for example because stdin is not a terminal.
type TerminalError struct {
	Toasts int // Toasts on screen when the program was started
	Err    error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("terminal surface failed: %v", e.Err)
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}
