package display

import (
	"github.com/jmylchreest/toasty/internal/notify"
)

// Placement is where a toast is drawn on screen, in terminal cells.
type Placement struct {
	ID     notify.ID
	Row    int
	Col    int
	Width  int
	Height int
	Close  bool // Toast shows a close mark
}

// Rect is a screen rectangle in terminal cells.
type Rect struct {
	Row, Col, Width, Height int
}

// Contains reports whether the cell (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Col && x < r.Col+r.Width && y >= r.Row && y < r.Row+r.Height
}

// layoutToasts maps stacking offsets to rows and centres each toast horizontally.
// Nodes are expected in offset order; maxVisible > 0 caps how many are placed.
func layoutToasts(nodes []notify.Node, lines func(notify.Node) int, toastWidth, screenWidth, cellHeight, maxVisible int) []Placement {
	if cellHeight <= 0 {
		cellHeight = 1
	}

	count := len(nodes)
	if maxVisible > 0 && count > maxVisible {
		count = maxVisible
	}

	placements := make([]Placement, 0, count)
	for _, n := range nodes[:count] {
		placements = append(placements, Placement{
			ID:     n.ID,
			Row:    n.Offset / cellHeight,
			Col:    centre(screenWidth, toastWidth),
			Width:  toastWidth,
			Height: lines(n),
			Close:  n.ShowClose,
		})
	}
	return placements
}

// centredRect returns a width x height rectangle centred on the screen.
func centredRect(screenWidth, screenHeight, width, height int) Rect {
	return Rect{
		Row:    centre(screenHeight, height),
		Col:    centre(screenWidth, width),
		Width:  width,
		Height: height,
	}
}

func centre(outer, inner int) int {
	return max(0, (outer-inner)/2)
}

// hitToast returns the topmost toast under (x, y).
func hitToast(placements []Placement, x, y int) (Placement, bool) {
	for i := len(placements) - 1; i >= 0; i-- {
		p := placements[i]
		if (Rect{Row: p.Row, Col: p.Col, Width: p.Width, Height: p.Height}).Contains(x, y) {
			return p, true
		}
	}
	return Placement{}, false
}

// onCloseMark reports whether (x, y) hits the close mark of p. The mark sits on
// the first content row, just inside the right border and padding.
func onCloseMark(p Placement, x, y int) bool {
	if !p.Close {
		return false
	}
	markCol := p.Col + p.Width - 3
	return y == p.Row+1 && x >= markCol-1 && x <= markCol+1
}
