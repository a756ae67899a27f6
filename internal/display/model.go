package display

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toasty/internal/notify"
)

// Controller is the part of the notification manager the model drives.
type Controller interface {
	Hover(id notify.ID, hovering bool)
	Dismiss(id notify.ID) bool
	CloseAll()
}

type button int

const (
	buttonConfirm button = iota
	buttonCancel
)

type dialogState struct {
	dialog *notify.Dialog
	focus  button
}

// Model is the bubbletea model for the notification surface.
type Model struct {
	ctrl     Controller
	renderer *Renderer

	cellHeight int
	maxVisible int

	// Live toasts in offset order
	toasts  []notify.Node
	hovered notify.ID

	// Open dialogs; the last one has focus
	dialogs []dialogState

	keys     KeyMap
	help     help.Model
	showHelp bool

	width  int
	height int
}

// NewModel creates the surface model.
func NewModel(ctrl Controller, renderer *Renderer, cellHeight, maxVisible int) Model {
	return Model{
		ctrl:       ctrl,
		renderer:   renderer,
		cellHeight: max(cellHeight, 1),
		maxVisible: maxVisible,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case attachMsg:
		m.toasts = append(m.toasts, msg.node)
		m.sortToasts()
		return m, nil

	case moveMsg:
		if i := m.toastIndex(msg.node.ID); i >= 0 {
			m.toasts[i] = msg.node
			m.sortToasts()
		}
		return m, nil

	case detachMsg:
		if i := m.toastIndex(msg.id); i >= 0 {
			m.toasts = slices.Delete(m.toasts, i, i+1)
		}
		if m.hovered == msg.id {
			m.hovered = 0
		}
		return m, nil

	case dialogMsg:
		m.dialogs = append(m.dialogs, dialogState{dialog: msg.dialog, focus: buttonConfirm})
		return m, nil

	case dialogClosedMsg:
		m.dialogs = slices.DeleteFunc(m.dialogs, func(s dialogState) bool {
			return s.dialog.ID == msg.id
		})
		return m, nil

	case layoutMsg:
		m.cellHeight = max(msg.cellHeight, 1)
		m.maxVisible = msg.maxVisible
		return m, nil

	case refreshMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	if len(m.dialogs) > 0 {
		top := &m.dialogs[len(m.dialogs)-1]
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.settle(top.dialog.Confirm)
		case key.Matches(msg, m.keys.Cancel):
			m.settle(top.dialog.Cancel)
		case key.Matches(msg, m.keys.Accept):
			if top.focus == buttonConfirm {
				m.settle(top.dialog.Confirm)
			} else {
				m.settle(top.dialog.Cancel)
			}
		case key.Matches(msg, m.keys.Switch):
			top.focus = 1 - top.focus
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CloseNewest):
		if newest, ok := m.newest(); ok {
			m.ctrl.Dismiss(newest)
		}
	case key.Matches(msg, m.keys.CloseAll):
		m.ctrl.CloseAll()
	}
	return m, nil
}

// settle answers the focused dialog and drops it locally; the presenter's
// close message for it is then a no-op.
func (m *Model) settle(answer func() bool) {
	answer()
	m.dialogs = m.dialogs[:len(m.dialogs)-1]
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	placements := m.layout()

	switch msg.Action {
	case tea.MouseActionMotion:
		var over notify.ID
		if p, ok := hitToast(placements, msg.X, msg.Y); ok {
			over = p.ID
		}
		if over != m.hovered {
			if m.hovered != 0 {
				m.ctrl.Hover(m.hovered, false)
			}
			if over != 0 {
				m.ctrl.Hover(over, true)
			}
			m.hovered = over
		}

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if len(m.dialogs) > 0 {
			if !m.dialogRect().Contains(msg.X, msg.Y) {
				m.settle(m.dialogs[len(m.dialogs)-1].dialog.Dismiss)
			}
			return m, nil
		}
		if p, ok := hitToast(placements, msg.X, msg.Y); ok && onCloseMark(p, msg.X, msg.Y) {
			m.ctrl.Dismiss(p.ID)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	placements := m.layout()

	height := m.height
	if height == 0 {
		for _, p := range placements {
			height = max(height, p.Row+p.Height)
		}
		height++
	}

	lines := make([]string, height)
	for i, p := range placements {
		block := strings.Split(m.renderer.Toast(m.toasts[i], p.ID == m.hovered), "\n")
		pad := strings.Repeat(" ", p.Col)
		for j, line := range block {
			if row := p.Row + j; row >= 0 && row < height {
				lines[row] = pad + line
			}
		}
	}

	if len(m.dialogs) > 0 {
		top := m.dialogs[len(m.dialogs)-1]
		block := strings.Split(m.renderer.Dialog(top.dialog, top.focus), "\n")
		r := m.dialogRect()
		pad := strings.Repeat(" ", r.Col)
		for j, line := range block {
			if row := r.Row + j; row >= 0 && row < height {
				lines[row] = pad + line
			}
		}
	}

	lines[height-1] = m.help.View(m.keys)

	return strings.Join(lines, "\n")
}

func (m Model) layout() []Placement {
	width := m.width
	if width == 0 {
		width = m.renderer.Width()
	}
	return layoutToasts(m.toasts, m.renderer.Lines, m.renderer.Width(), width, m.cellHeight, m.maxVisible)
}

func (m Model) dialogRect() Rect {
	if len(m.dialogs) == 0 {
		return Rect{}
	}
	top := m.dialogs[len(m.dialogs)-1]
	rendered := m.renderer.Dialog(top.dialog, top.focus)
	return centredRect(m.width, m.height, lipgloss.Width(rendered), lipgloss.Height(rendered))
}

func (m *Model) sortToasts() {
	slices.SortStableFunc(m.toasts, func(a, b notify.Node) int {
		return a.Offset - b.Offset
	})
}

func (m Model) toastIndex(id notify.ID) int {
	return slices.IndexFunc(m.toasts, func(n notify.Node) bool { return n.ID == id })
}

// newest returns the most recently shown toast.
func (m Model) newest() (notify.ID, bool) {
	var newest notify.ID
	for _, n := range m.toasts {
		newest = max(newest, n.ID)
	}
	return newest, newest != 0
}

// Toasts returns the nodes currently drawn, in offset order.
func (m Model) Toasts() []notify.Node {
	return slices.Clone(m.toasts)
}

// Dialogs returns the number of open dialogs.
func (m Model) Dialogs() int {
	return len(m.dialogs)
}
