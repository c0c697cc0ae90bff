// Package board wires the project store to its views: the input form, the
// active and finished lists, and the cards inside them. Every front end
// (terminal, browser, script runner) drives the same Board.
package board

import (
	"fmt"

	"projboard/internal/dnd"
	"projboard/internal/model"
	"projboard/internal/store"
)

type Board struct {
	Store    *store.Store
	Doc      *dnd.Document
	Input    *InputView
	Active   *ListView
	Finished *ListView
}

// New builds the views of one board on top of st. The active list is
// constructed (and subscribed) first.
func New(st *store.Store) *Board {
	doc := dnd.NewDocument()
	return &Board{
		Store:    st,
		Doc:      doc,
		Input:    NewInputView(st),
		Active:   NewListView(st, doc, model.StatusActive),
		Finished: NewListView(st, doc, model.StatusFinished),
	}
}

// Lists returns the lists in display order.
func (b *Board) Lists() []*ListView {
	return []*ListView{b.Active, b.Finished}
}

func (b *Board) List(status model.Status) *ListView {
	if status == model.StatusFinished {
		return b.Finished
	}
	return b.Active
}

// ListByID finds a list by its container id.
func (b *Board) ListByID(id string) (*ListView, bool) {
	for _, l := range b.Lists() {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}

// Item finds the card for id in whichever list shows it.
func (b *Board) Item(id string) (*ItemView, bool) {
	for _, l := range b.Lists() {
		if it, ok := l.Item(id); ok {
			return it, true
		}
	}
	return nil, false
}

// Move drags the card for id onto the list for status and drops it there,
// running the full drag sequence. Ids with no card are still relayed, so a
// stale id reaches the store and is ignored there.
func (b *Board) Move(id string, status model.Status) error {
	var src dnd.Draggable = relaySource{id: id, doc: b.Doc}
	if it, ok := b.Item(id); ok {
		src = it
	}
	var s dnd.Session
	if err := s.Start(src); err != nil {
		return fmt.Errorf("move %s: %w", id, err)
	}
	accepted, err := s.Over(b.List(status))
	if err == nil && accepted {
		err = s.Drop()
	}
	if endErr := s.End(); err == nil {
		err = endErr
	}
	if err != nil {
		return fmt.Errorf("move %s: %w", id, err)
	}
	return nil
}
