package display

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/notify"
	"github.com/jmylchreest/toasty/internal/notify/notifytest"
	"github.com/jmylchreest/toasty/internal/theme"
)

const testWidth = 40

type fakeController struct {
	mu        sync.Mutex
	hovers    []string
	dismissed []notify.ID
	closedAll int
}

func (c *fakeController) Hover(id notify.ID, hovering bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := "leave"
	if hovering {
		state = "enter"
	}
	c.hovers = append(c.hovers, state+" "+id.String())
}

func (c *fakeController) Dismiss(id notify.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissed = append(c.dismissed, id)
	return true
}

func (c *fakeController) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closedAll++
}

func newRenderer() *Renderer {
	return NewRenderer(theme.NewDefaultTheme().Palette, testWidth)
}

func newTestModel() (Model, *fakeController) {
	ctrl := &fakeController{}
	return NewModel(ctrl, newRenderer(), 16, 0), ctrl
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func node(id notify.ID, offset int, msg string) notify.Node {
	return notify.Node{ID: id, Type: notify.TypeInfo, Message: msg, Offset: offset}
}

func TestLayoutToasts(t *testing.T) {
	nodes := []notify.Node{
		node(1, 20, "a"),
		{ID: 2, Type: notify.TypeError, Message: "b", Offset: 84, ShowClose: true},
		node(3, 148, "c"),
	}
	lines := func(n notify.Node) int { return 3 + int(n.ID) }

	got := layoutToasts(nodes, lines, 40, 100, 16, 2)
	want := []Placement{
		{ID: 1, Row: 1, Col: 30, Width: 40, Height: 4},
		{ID: 2, Row: 5, Col: 30, Width: 40, Height: 5, Close: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layoutToasts() mismatch (-want +got):\n%s", diff)
	}

	// Narrow screens pin toasts to the left edge
	got = layoutToasts(nodes[:1], lines, 40, 20, 16, 0)
	if diff := cmp.Diff([]Placement{{ID: 1, Row: 1, Col: 0, Width: 40, Height: 4}}, got); diff != "" {
		t.Errorf("layoutToasts() narrow mismatch (-want +got):\n%s", diff)
	}
}

func TestHitToast(t *testing.T) {
	placements := []Placement{
		{ID: 1, Row: 1, Col: 10, Width: 20, Height: 3},
		{ID: 2, Row: 5, Col: 10, Width: 20, Height: 3, Close: true},
	}

	p, ok := hitToast(placements, 10, 1)
	require.True(t, ok)
	assert.Equal(t, notify.ID(1), p.ID)

	_, ok = hitToast(placements, 30, 1)
	assert.False(t, ok)
	_, ok = hitToast(placements, 15, 4)
	assert.False(t, ok)

	p, ok = hitToast(placements, 27, 6)
	require.True(t, ok)
	assert.True(t, onCloseMark(p, 27, 6))
	assert.False(t, onCloseMark(p, 15, 6))
	assert.False(t, onCloseMark(placements[0], 27, 2))
}

func TestRenderer_Toast(t *testing.T) {
	r := newRenderer()

	short := r.Toast(node(1, 20, "Saved"), false)
	assert.Equal(t, 3, lipgloss.Height(short))
	assert.Equal(t, testWidth, lipgloss.Width(short))
	assert.Contains(t, short, "Saved")

	long := r.Toast(node(2, 20, strings.Repeat("lorem ipsum ", 60)), false)
	assert.Equal(t, maxBodyLines+2, lipgloss.Height(long))
	assert.Contains(t, long, ellipsis)

	closable := r.Toast(notify.Node{ID: 3, Type: notify.TypeWarning, Message: "x", ShowClose: true}, false)
	assert.Contains(t, closable, closeMark)
	assert.Equal(t, testWidth, lipgloss.Width(closable))
}

func TestRenderer_Dialog(t *testing.T) {
	r := newRenderer()
	d := &notify.Dialog{Title: "Delete", Message: "Really?", ConfirmText: "Yes", CancelText: "No"}

	out := r.Dialog(d, buttonConfirm)
	assert.Contains(t, out, "Delete")
	assert.Contains(t, out, "Really?")
	assert.Contains(t, out, "Yes")
	assert.Contains(t, out, "No")
}

func TestSurface_MeasureHeight(t *testing.T) {
	s := NewSurface(newRenderer(), 16)
	assert.Equal(t, 3*16, s.MeasureHeight(node(1, 0, "short")))

	s.SetLayout(10, 0)
	assert.Equal(t, 30, s.MeasureHeight(node(1, 0, "short")))
}

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestSurface_DeliversInOrder(t *testing.T) {
	s := NewSurface(newRenderer(), 16)
	defer s.Stop()

	// Posted before Bind
	for i := 1; i <= 50; i++ {
		s.Attach(node(notify.ID(i), 0, "x"))
	}

	out := make(chanSender, 200)
	s.Bind(out)

	for i := 51; i <= 100; i++ {
		s.Detach(node(notify.ID(i), 0, "x"))
	}

	for i := 1; i <= 100; i++ {
		select {
		case msg := <-out:
			switch m := msg.(type) {
			case attachMsg:
				assert.Equal(t, notify.ID(i), m.node.ID)
			case detachMsg:
				assert.Equal(t, notify.ID(i), m.id)
			default:
				t.Fatalf("unexpected %T", msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestSurface_DrivesModel(t *testing.T) {
	renderer := newRenderer()
	surface := NewSurface(renderer, 16)
	defer surface.Stop()

	out := make(chanSender, 16)
	surface.Bind(out)

	mgr := notify.NewManager(surface, surface, notify.DefaultSettings(), nil)
	model := NewModel(mgr, renderer, 16, 0)

	a := mgr.Show(notify.Options{Message: "first", Duration: notify.Duration(0)})
	mgr.Show(notify.Options{Message: "second", Duration: notify.Duration(0)})

	for range 2 {
		model = update(t, model, <-out)
	}
	require.Len(t, model.Toasts(), 2)
	assert.Equal(t, 20, model.Toasts()[0].Offset)
	assert.Equal(t, 20+48+16, model.Toasts()[1].Offset)

	// Closing the first moves the second up
	a.Close()
	for range 2 {
		model = update(t, model, <-out)
	}
	require.Len(t, model.Toasts(), 1)
	assert.Equal(t, 20, model.Toasts()[0].Offset)

	view := model.View()
	assert.Contains(t, view, "second")
	assert.NotContains(t, view, "first")
}

func TestModel_AttachMoveDetach(t *testing.T) {
	m, _ := newTestModel()

	m = update(t, m,
		attachMsg{node: node(2, 84, "b")},
		attachMsg{node: node(1, 20, "a")},
	)
	assert.Equal(t, []notify.ID{1, 2}, ids(m.Toasts()))

	m = update(t, m, moveMsg{node: node(2, 4, "b")})
	assert.Equal(t, []notify.ID{2, 1}, ids(m.Toasts()))

	m = update(t, m, detachMsg{id: 2}, detachMsg{id: 99})
	assert.Equal(t, []notify.ID{1}, ids(m.Toasts()))
}

func ids(nodes []notify.Node) []notify.ID {
	out := make([]notify.ID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestModel_HoverFollowsMouse(t *testing.T) {
	m, ctrl := newTestModel()
	m = update(t, m,
		attachMsg{node: node(1, 20, "a")},
		attachMsg{node: node(2, 84, "b")},
	)

	motion := func(x, y int) tea.MouseMsg {
		return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}
	}

	m = update(t, m,
		motion(5, 2),  // over 1
		motion(6, 2),  // still over 1
		motion(5, 6),  // over 2
		motion(5, 20), // nowhere
	)

	assert.Equal(t, []string{
		"enter message_1",
		"leave message_1",
		"enter message_2",
		"leave message_2",
	}, ctrl.hovers)
}

func TestModel_ClickCloseMark(t *testing.T) {
	m, ctrl := newTestModel()
	m = update(t, m,
		attachMsg{node: notify.Node{ID: 1, Type: notify.TypeInfo, Message: "a", Offset: 20, ShowClose: true}},
		attachMsg{node: node(2, 84, "b")},
	)

	click := func(x, y int) tea.MouseMsg {
		return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	}

	m = update(t, m,
		click(5, 2),           // body of 1
		click(testWidth-3, 2), // close mark of 1
		click(testWidth-3, 6), // toast 2 has no close mark
	)
	_ = m

	assert.Equal(t, []notify.ID{1}, ctrl.dismissed)
}

func TestModel_CloseKeys(t *testing.T) {
	m, ctrl := newTestModel()

	m = update(t, m, runes("x"))
	assert.Empty(t, ctrl.dismissed)

	m = update(t, m,
		attachMsg{node: node(1, 20, "a")},
		attachMsg{node: node(3, 148, "c")},
		attachMsg{node: node(2, 84, "b")},
		runes("x"),
		runes("X"),
	)
	_ = m

	assert.Equal(t, []notify.ID{3}, ctrl.dismissed)
	assert.Equal(t, 1, ctrl.closedAll)
}

func newDialog(t *testing.T) (*notify.Dialog, *notify.Pending) {
	t.Helper()
	presenter := notifytest.NewPresenter()
	mgr := notify.NewManager(notifytest.NewSurface(10), presenter, notify.DefaultSettings(), nil)
	p := mgr.Confirm("Proceed?", "", notify.ConfirmOptions{})
	d := presenter.Last()
	require.NotNil(t, d)
	return d, p
}

func TestModel_DialogConfirmKey(t *testing.T) {
	m, ctrl := newTestModel()
	d, p := newDialog(t)

	m = update(t, m, attachMsg{node: node(1, 20, "a")}, dialogMsg{dialog: d})
	assert.Contains(t, m.View(), "Proceed?")

	// Toast keys are routed to the dialog while it is open
	m = update(t, m, runes("x"), runes("y"))
	assert.Empty(t, ctrl.dismissed)
	assert.Equal(t, 0, m.Dialogs())

	require.True(t, p.Settled())
	assert.NoError(t, p.Err())
}

func TestModel_DialogCancelKeys(t *testing.T) {
	for _, tt := range []struct {
		name string
		keys []tea.Msg
	}{
		{"n", []tea.Msg{runes("n")}},
		{"esc", []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}}},
		{"tab enter", []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter}}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel()
			d, p := newDialog(t)

			m = update(t, m, dialogMsg{dialog: d})
			m = update(t, m, tt.keys...)
			assert.Equal(t, 0, m.Dialogs())

			require.True(t, p.Settled())
			var cancelled *notify.CancelledError
			require.True(t, errors.As(p.Err(), &cancelled))
			assert.False(t, cancelled.Dismissed)
		})
	}
}

func TestModel_DialogEnterConfirmsByDefault(t *testing.T) {
	m, _ := newTestModel()
	d, p := newDialog(t)

	update(t, m, dialogMsg{dialog: d}, tea.KeyMsg{Type: tea.KeyEnter})
	require.NoError(t, p.Wait(context.Background()))
}

func TestModel_ClickOutsideDialogDismisses(t *testing.T) {
	m, _ := newTestModel()
	d, p := newDialog(t)

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40}, dialogMsg{dialog: d})

	r := m.dialogRect()
	inside := tea.MouseMsg{X: r.Col + 1, Y: r.Row + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, inside)
	assert.False(t, p.Settled())

	outside := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, outside)
	assert.Equal(t, 0, m.Dialogs())

	var cancelled *notify.CancelledError
	require.True(t, errors.As(p.Err(), &cancelled))
	assert.True(t, cancelled.Dismissed)
}

func TestModel_DialogClosedMsg(t *testing.T) {
	m, _ := newTestModel()
	d, _ := newDialog(t)

	m = update(t, m, dialogMsg{dialog: d}, dialogClosedMsg{id: d.ID})
	assert.Equal(t, 0, m.Dialogs())
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel()
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewPlacesToastsOnRows(t *testing.T) {
	m, _ := newTestModel()
	m = update(t, m,
		tea.WindowSizeMsg{Width: 80, Height: 12},
		attachMsg{node: node(1, 20, "alpha")},
		attachMsg{node: node(2, 84, "beta")},
	)

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 12)
	assert.Contains(t, lines[2], "alpha")
	assert.Contains(t, lines[6], "beta")
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat(" ", 20)))
}

func TestTerminalError(t *testing.T) {
	cause := errors.New("no tty")
	err := error(&TerminalError{Err: cause})
	assert.Equal(t, "terminal surface failed: no tty", err.Error())
	assert.ErrorIs(t, err, cause)

	var te *TerminalError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Toasts)
}
