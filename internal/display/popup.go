package display

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/toasty/internal/notify"
	"github.com/jmylchreest/toasty/internal/theme"
)

const (
	// maxBodyLines caps the wrapped message; the last line is truncated.
	maxBodyLines = 6

	closeMark = "×"
	ellipsis  = "…"
)

// Renderer turns nodes and dialogs into styled terminal blocks.
// It is shared between the surface (for measuring) and the model (for drawing).
type Renderer struct {
	mu      sync.RWMutex
	palette theme.Palette
	width   int
}

// NewRenderer creates a renderer for toasts of the given total width.
func NewRenderer(palette theme.Palette, width int) *Renderer {
	return &Renderer{palette: palette, width: width}
}

// SetPalette swaps the active palette.
func (r *Renderer) SetPalette(p theme.Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palette = p
}

// SetWidth changes the toast width in columns.
func (r *Renderer) SetWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width = width
}

// Width returns the toast width in columns.
func (r *Renderer) Width() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.width
}

// Lines returns how many terminal rows the toast occupies.
func (r *Renderer) Lines(n notify.Node) int {
	return lipgloss.Height(r.Toast(n, false))
}

// Toast renders a notification box.
func (r *Renderer) Toast(n notify.Node, hovered bool) string {
	r.mu.RLock()
	palette, width := r.palette, r.width
	r.mu.RUnlock()

	style := palette.ForType(string(n.Type))

	border := borderFor(palette.Border)
	if hovered {
		border = lipgloss.ThickBorder()
	}

	box := lipgloss.NewStyle().
		Border(border).
		Padding(0, 1).
		Width(width - 2)
	if c, ok := theme.Color(style.Border); ok {
		box = box.BorderForeground(lipgloss.Color(c))
	}
	if c, ok := theme.Color(style.Foreground); ok {
		box = box.Foreground(lipgloss.Color(c))
	}
	if c, ok := theme.Color(style.Background); ok {
		box = box.Background(lipgloss.Color(c))
	}

	textWidth := width - 4
	if n.ShowClose {
		textWidth -= 2
	}
	textWidth = max(textWidth, 1)

	text := n.Message
	if style.Icon != "" {
		text = style.Icon + " " + text
	}

	align := lipgloss.Left
	if n.Center {
		align = lipgloss.Center
	}
	body := lipgloss.NewStyle().
		Width(textWidth).
		Align(align).
		Render(wrapBody(text, textWidth))

	if n.ShowClose {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " "+closeMark)
	}

	return box.Render(body)
}

// wrapBody word-wraps text to width, hard-wraps long words and caps the
// result at maxBodyLines.
func wrapBody(text string, width int) string {
	wrapped := ansi.Hardwrap(ansi.Wordwrap(text, width, ""), width, true)
	lines := strings.Split(wrapped, "\n")
	if len(lines) > maxBodyLines {
		lines = lines[:maxBodyLines]
		last := lines[maxBodyLines-1]
		if ansi.StringWidth(last)+1 > width {
			last = ansi.Truncate(last, width, ellipsis)
		} else {
			last += ellipsis
		}
		lines[maxBodyLines-1] = last
	}
	return strings.Join(lines, "\n")
}

// Dialog renders the confirm dialog with the focused button highlighted.
func (r *Renderer) Dialog(d *notify.Dialog, focus button) string {
	r.mu.RLock()
	palette, width := r.palette, r.width
	r.mu.RUnlock()

	ds := palette.Dialog
	accent := palette.ForType(string(d.Type))

	titleStyle := lipgloss.NewStyle().Bold(true)
	if c, ok := theme.Color(ds.Title); ok {
		titleStyle = titleStyle.Foreground(lipgloss.Color(c))
	}
	messageStyle := lipgloss.NewStyle().Width(width)
	if c, ok := theme.Color(ds.Message); ok {
		messageStyle = messageStyle.Foreground(lipgloss.Color(c))
	}

	buttonStyle := lipgloss.NewStyle().Padding(0, 1)
	if c, ok := theme.Color(ds.Button); ok {
		buttonStyle = buttonStyle.Foreground(lipgloss.Color(c))
	}
	activeStyle := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	if c, ok := theme.Color(ds.ButtonActive); ok {
		activeStyle = activeStyle.Foreground(lipgloss.Color(c))
	}
	if c, ok := theme.Color(ds.ButtonActiveBackground); ok {
		activeStyle = activeStyle.Background(lipgloss.Color(c))
	}

	confirmStyle, cancelStyle := buttonStyle, activeStyle
	if focus == buttonConfirm {
		confirmStyle, cancelStyle = activeStyle, buttonStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		confirmStyle.Render(d.ConfirmText),
		"  ",
		cancelStyle.Render(d.CancelText),
	)

	title := d.Title
	if accent.Icon != "" {
		title = accent.Icon + " " + title
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		messageStyle.Render(wrapBody(d.Message, width)),
		"",
		buttons,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2)
	if c, ok := theme.Color(ds.Border); ok {
		box = box.BorderForeground(lipgloss.Color(c))
	}
	return box.Render(content)
}

func borderFor(name string) lipgloss.Border {
	switch name {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}
