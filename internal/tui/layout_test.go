package tui

import "testing"

func TestComputeLayout_Defaults(t *testing.T) {
	l := computeLayout(0, 0)
	if l.width != defaultWidth || l.height != defaultHeight {
		t.Fatalf("expected default size, got %dx%d", l.width, l.height)
	}
	if l.colW[0]+l.colW[1] != l.width {
		t.Fatalf("columns do not fill the width: %v", l.colW)
	}
	if l.cardsTop != listsTop+3 {
		t.Fatalf("unexpected cards top %d", l.cardsTop)
	}
}

func TestComputeLayout_SmallTerminalKeepsMinimumList(t *testing.T) {
	l := computeLayout(40, 10)
	if l.listH != minListH || l.visibleCards < 1 {
		t.Fatalf("expected minimum list height, got %d (%d cards)", l.listH, l.visibleCards)
	}
}

func TestLayout_HitTesting(t *testing.T) {
	l := computeLayout(100, 32)

	if f, ok := l.fieldAt(fieldY + 1); !ok || f != focusDescription {
		t.Fatalf("expected description field, got %v %v", f, ok)
	}
	if _, ok := l.fieldAt(buttonY); ok {
		t.Fatal("button row is not a field")
	}
	if col, ok := l.columnAt(10, listsTop); !ok || col != 0 {
		t.Fatalf("expected active column, got %d %v", col, ok)
	}
	if col, ok := l.columnAt(l.colX[1], listsTop+2); !ok || col != 1 {
		t.Fatalf("expected finished column, got %d %v", col, ok)
	}
	if _, ok := l.columnAt(10, listsTop+l.listH); ok {
		t.Fatal("row below the lists must miss")
	}

	if slot, ok := l.cardSlotAt(l.cardY(1) + 2); !ok || slot != 1 {
		t.Fatalf("expected slot 1, got %d %v", slot, ok)
	}
	if _, ok := l.cardSlotAt(l.cardY(0) + cardHeight); ok {
		t.Fatal("gap between cards must miss")
	}
	if _, ok := l.cardSlotAt(l.cardY(l.visibleCards)); ok {
		t.Fatal("slots past the visible cards must miss")
	}
}
