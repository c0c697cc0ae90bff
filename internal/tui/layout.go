package tui

// Screen geometry shared by View and mouse hit-testing. Rows from the top:
//
//	0      header
//	1..3   title, description, people fields
//	4      add button
//	5      blank
//	6..    the two list boxes (listH rows), then the preview and footer
//
// Inside a list box: border, heading, blank, then cards of cardHeight rows
// separated by one blank row.
const (
	headerY    = 0
	fieldY     = 1
	buttonY    = 4
	listsTop   = 6
	previewH   = 5
	footerH    = 2
	cardHeight = 3
	cardStride = cardHeight + 1
	minListH   = 9

	defaultWidth  = 100
	defaultHeight = 32
)

type layout struct {
	width  int
	height int

	colX [2]int
	colW [2]int

	listH        int
	cardsTop     int
	visibleCards int
	previewY     int
}

func computeLayout(width, height int) layout {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	l := layout{width: width, height: height}
	l.colW[0] = width / 2
	l.colW[1] = width - l.colW[0]
	l.colX[1] = l.colW[0]

	l.listH = height - listsTop - previewH - footerH
	if l.listH < minListH {
		l.listH = minListH
	}
	l.cardsTop = listsTop + 1 + 2
	l.visibleCards = (l.listH - 2 - 2 + 1) / cardStride
	if l.visibleCards < 1 {
		l.visibleCards = 1
	}
	l.previewY = listsTop + l.listH
	return l
}

// innerWidth is the text width inside a list box (border and padding off).
func (l layout) innerWidth(col int) int {
	w := l.colW[col] - 4
	if w < 1 {
		w = 1
	}
	return w
}

// fieldAt maps a row to a form field.
func (l layout) fieldAt(y int) (focusArea, bool) {
	if y >= fieldY && y < fieldY+3 {
		return focusArea(y - fieldY), true
	}
	return 0, false
}

func (l layout) buttonAt(y int) bool { return y == buttonY }

// columnAt reports which list box contains the cell, if any.
func (l layout) columnAt(x, y int) (int, bool) {
	if y < listsTop || y >= listsTop+l.listH || x < 0 || x >= l.width {
		return 0, false
	}
	if x < l.colX[1] {
		return 0, true
	}
	return 1, true
}

// cardSlotAt maps a row to a visible card slot; gaps between cards miss.
func (l layout) cardSlotAt(y int) (int, bool) {
	rel := y - l.cardsTop
	if rel < 0 || rel%cardStride >= cardHeight {
		return 0, false
	}
	slot := rel / cardStride
	if slot >= l.visibleCards {
		return 0, false
	}
	return slot, true
}

// cardY is the first row of the card in slot.
func (l layout) cardY(slot int) int { return l.cardsTop + slot*cardStride }
