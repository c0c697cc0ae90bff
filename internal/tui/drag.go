package tui

import (
	"strings"

	"projboard/internal/dnd"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mouse and keyboard both drive the same dnd.Session: press/space starts a
// drag, motion/arrows deliver over ticks, release/enter drops, esc cancels.

func (m *appModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	l := m.layout()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if col, ok := l.columnAt(msg.X, msg.Y); ok && !m.drag.Active() {
				m.col = col
				m.moveSelection(-1)
			}
			return nil
		case tea.MouseButtonWheelDown:
			if col, ok := l.columnAt(msg.X, msg.Y); ok && !m.drag.Active() {
				m.col = col
				m.moveSelection(1)
			}
			return nil
		case tea.MouseButtonLeft:
		default:
			return nil
		}
		if m.drag.Active() {
			return nil
		}
		if f, ok := l.fieldAt(msg.Y); ok {
			m.setFocus(f)
			return nil
		}
		if l.buttonAt(msg.Y) {
			return m.submit()
		}
		col, ok := l.columnAt(msg.X, msg.Y)
		if !ok {
			return nil
		}
		m.setFocus(focusLists)
		m.col = col
		slot, ok := l.cardSlotAt(msg.Y)
		if !ok {
			return nil
		}
		idx := m.offset[col] + slot
		items := m.board.Lists()[col].Items()
		if idx >= len(items) {
			return nil
		}
		m.selected[col] = idx
		if err := m.drag.Start(items[idx]); err != nil {
			m.log.Debug().Err(err).Msg("drag start ignored")
			return nil
		}
		m.dragByMouse = true
		m.dragID = items[idx].ID()
		return nil

	case tea.MouseActionMotion:
		if !m.drag.Active() || !m.dragByMouse {
			return nil
		}
		m.mouseOver(l, msg.X, msg.Y)
		return nil

	case tea.MouseActionRelease:
		if !m.drag.Active() || !m.dragByMouse {
			return nil
		}
		m.mouseOver(l, msg.X, msg.Y)
		return m.finishDrag()
	}
	return nil
}

// mouseOver delivers an over tick to the list under the pointer, or a leave
// when the pointer is outside both lists.
func (m *appModel) mouseOver(l layout, x, y int) {
	if col, ok := l.columnAt(x, y); ok {
		m.dragOver(col)
		return
	}
	if m.drag.State() == dnd.DragOverTarget {
		if err := m.drag.Leave(); err != nil {
			m.log.Debug().Err(err).Msg("drag leave ignored")
		}
	}
}

func (m *appModel) handleDragKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.cancelDrag()
	case m.dragByMouse:
		return nil
	case key.Matches(msg, m.keys.Left):
		m.dragOver(0)
	case key.Matches(msg, m.keys.Right):
		m.dragOver(1)
	case key.Matches(msg, m.keys.Drop):
		return m.finishDrag()
	}
	return nil
}

func (m *appModel) startKeyboardDrag() tea.Cmd {
	it, ok := m.selectedItem()
	if !ok {
		return m.showMinibuffer("No project selected")
	}
	if err := m.drag.Start(it); err != nil {
		m.log.Debug().Err(err).Msg("drag start ignored")
		return nil
	}
	m.dragByMouse = false
	m.dragID = it.ID()
	return m.showMinibuffer("Moving " + it.Project().Title + ": ←/→ pick a list, enter to drop, esc to cancel")
}

func (m *appModel) dragOver(col int) {
	ok, err := m.drag.Over(m.board.Lists()[col])
	if err != nil {
		m.log.Debug().Err(err).Msg("drag over ignored")
		return
	}
	if ok {
		m.col = col
	}
}

// finishDrag drops onto the hovered list, if any, and ends the drag.
func (m *appModel) finishDrag() tea.Cmd {
	id := m.dragID
	before := m.board.Store.Broadcasts()
	if m.drag.State() == dnd.DragOverTarget {
		if err := m.drag.Drop(); err != nil {
			m.log.Debug().Err(err).Msg("drop ignored")
		}
	}
	if err := m.drag.End(); err != nil {
		m.log.Debug().Err(err).Msg("drag end ignored")
	}
	m.dragID = ""
	m.dragByMouse = false

	if m.board.Store.Broadcasts() == before {
		return nil
	}
	p, ok := m.board.Store.Find(id)
	if !ok {
		return nil
	}
	list := m.board.List(p.Status)
	for i, it := range list.Items() {
		if it.ID() == id {
			m.col = int(p.Status)
			m.selected[m.col] = i
			break
		}
	}
	m.log.Info().Str("id", id).Stringer("status", p.Status).Msg("project moved")
	return m.showMinibuffer("Moved " + p.Title + " to " + strings.ToLower(list.Heading()))
}

func (m *appModel) cancelDrag() tea.Cmd {
	if err := m.drag.End(); err != nil {
		m.log.Debug().Err(err).Msg("drag end ignored")
	}
	m.dragID = ""
	m.dragByMouse = false
	return m.showMinibuffer("Move cancelled")
}
