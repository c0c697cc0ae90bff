package tui

import (
	"fmt"
	"strings"
	"time"

	"projboard/internal/board"
	"projboard/internal/dnd"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type focusArea int

const (
	focusTitle focusArea = iota
	focusDescription
	focusPeople
	focusLists
)

const focusCount = 4

const minibufferAutoClearAfter = 3 * time.Second

type minibufferClearMsg struct{ seq int }

var fieldLabels = [3]string{"Title", "Description", "People"}

// appModel is the bubbletea model of one board. All store calls happen inside
// Update, so the store only ever sees the program's event goroutine.
type appModel struct {
	board *board.Board
	log   zerolog.Logger

	keys   keyMap
	help   help.Model
	inputs []textinput.Model
	focus  focusArea

	col      int
	selected [2]int
	offset   [2]int

	drag        dnd.Session
	dragByMouse bool
	dragID      string

	width  int
	height int

	minibufferText  string
	minibufferAlert bool
	minibufferSetAt time.Time
	minibufferSeq   int
}

func newAppModel(b *board.Board, log zerolog.Logger) appModel {
	m := appModel{
		board: b,
		log:   log,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}

	title := textinput.New()
	title.Placeholder = "What is the project called?"
	title.CharLimit = 80
	desc := textinput.New()
	desc.Placeholder = "At least 5 characters, markdown welcome"
	desc.CharLimit = 500
	people := textinput.New()
	people.Placeholder = "1-5"
	people.CharLimit = 2
	for _, in := range []*textinput.Model{&title, &desc, &people} {
		in.Prompt = ""
	}
	m.inputs = []textinput.Model{title, desc, people}
	m.inputs[focusTitle].Focus()

	for _, l := range b.Lists() {
		l.OnRender(func(lv *board.ListView) {
			log.Debug().Str("list", lv.ID()).Int("items", lv.Len()).Msg("list rendered")
		})
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.handle(msg)
	m.clampSelection()
	return m, cmd
}

func (m *appModel) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return nil

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
			m.minibufferAlert = false
		}
		return nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateInput(msg)
}

func (m *appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit
	}
	if m.drag.Active() {
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return nil
	}

	if m.focus != focusLists {
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Left):
		m.col = 0
	case key.Matches(msg, m.keys.Right):
		m.col = 1
	case key.Matches(msg, m.keys.Grab):
		return m.startKeyboardDrag()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *appModel) updateInput(msg tea.Msg) tea.Cmd {
	if m.focus == focusLists {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *appModel) setFocus(f focusArea) {
	m.focus = f
	for i := range m.inputs {
		if focusArea(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// submit hands the form to the board's input view.
func (m *appModel) submit() tea.Cmd {
	in := m.board.Input
	in.Title = m.inputs[focusTitle].Value()
	in.Description = m.inputs[focusDescription].Value()
	in.People = m.inputs[focusPeople].Value()

	p, err := in.Submit()
	if err != nil {
		m.log.Debug().Err(err).Msg("project rejected")
		return m.showAlert(in.Alert())
	}
	m.inputs[focusTitle].SetValue(in.Title)
	m.inputs[focusDescription].SetValue(in.Description)
	m.inputs[focusPeople].SetValue(in.People)
	m.setFocus(focusTitle)

	m.col = 0
	m.selected[0] = m.board.Active.Len() - 1
	m.log.Info().Str("id", p.ID).Str("title", p.Title).Msg("project added")
	return m.showMinibuffer("Added: " + p.Title)
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferAlert = false
	m.minibufferSetAt = time.Now()
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

func (m *appModel) showAlert(text string) tea.Cmd {
	cmd := m.showMinibuffer(text)
	m.minibufferAlert = true
	return cmd
}

func (m *appModel) moveSelection(delta int) {
	n := m.board.Lists()[m.col].Len()
	if n == 0 {
		return
	}
	m.selected[m.col] += delta
	if m.selected[m.col] < 0 {
		m.selected[m.col] = 0
	}
	if m.selected[m.col] >= n {
		m.selected[m.col] = n - 1
	}
}

// clampSelection keeps selections and scroll offsets inside the lists after
// any change to the store.
func (m *appModel) clampSelection() {
	l := m.layout()
	for c, list := range m.board.Lists() {
		n := list.Len()
		if m.selected[c] >= n {
			m.selected[c] = n - 1
		}
		if m.selected[c] < 0 {
			m.selected[c] = 0
		}
		if m.selected[c] < m.offset[c] {
			m.offset[c] = m.selected[c]
		}
		if m.selected[c] >= m.offset[c]+l.visibleCards {
			m.offset[c] = m.selected[c] - l.visibleCards + 1
		}
		if m.offset[c] < 0 {
			m.offset[c] = 0
		}
	}
}

func (m appModel) layout() layout {
	return computeLayout(m.width, m.height)
}

// selectedItem returns the card under the cursor in the current column.
func (m appModel) selectedItem() (*board.ItemView, bool) {
	items := m.board.Lists()[m.col].Items()
	i := m.selected[m.col]
	if i < 0 || i >= len(items) {
		return nil, false
	}
	return items[i], true
}

func (m appModel) View() string {
	l := m.layout()

	rows := []string{m.viewHeader(l)}
	for i := range m.inputs {
		rows = append(rows, renderField(l.width, fieldLabels[i], m.inputs[i].View(), m.focus == focusArea(i)))
	}
	rows = append(rows, " "+styleButton(m.focus != focusLists).Render("ADD PROJECT")+styleMuted().Render("  enter to submit"), "")

	lists := lipgloss.JoinHorizontal(lipgloss.Top, m.viewList(l, 0), m.viewList(l, 1))
	rows = append(rows, lists, m.viewPreview(l), m.viewMinibuffer(l))

	km := m.keys
	switch {
	case m.drag.Active():
		km.mode = helpDrag
	case m.focus == focusLists:
		km.mode = helpLists
	}
	rows = append(rows, m.help.View(km))
	return strings.Join(rows, "\n")
}

func (m appModel) viewHeader(l layout) string {
	left := styleHeading().Render("projboard")
	right := styleMuted().Render(fmt.Sprintf("%d projects", m.board.Store.Len()))
	gap := l.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return clampLine(" "+left+strings.Repeat(" ", gap)+right, l.width)
}

func (m appModel) viewList(l layout, col int) string {
	list := m.board.Lists()[col]
	w := l.innerWidth(col)
	innerH := l.listH - 2

	heading := styleHeading().Render(list.Heading())
	if m.focus == focusLists && m.col == col {
		heading = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(list.Heading())
	}
	lines := []string{
		truncate(heading+styleMuted().Render(fmt.Sprintf("  %d", list.Len())), w),
		"",
	}

	items := list.Items()
	if len(items) == 0 {
		lines = append(lines, styleMuted().Render(truncate("No projects", w)))
	}
	end := m.offset[col] + l.visibleCards
	if end > len(items) {
		end = len(items)
	}
	for i := m.offset[col]; i < end; i++ {
		if i > m.offset[col] {
			lines = append(lines, "")
		}
		selected := m.focus == focusLists && m.col == col && m.selected[col] == i
		lines = append(lines, m.viewCard(items[i], w, selected)...)
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	return styleListBox(list.Droppable()).
		Width(l.colW[col] - 2).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) viewCard(it *board.ItemView, w int, selected bool) []string {
	p := it.Project()
	marker := "  "
	if selected {
		marker = "▸ "
	}
	title := lipgloss.NewStyle().Bold(true).Render(p.Title)
	meta := styleMuted()
	if m.drag.Active() && m.dragID == p.ID {
		title = lipgloss.NewStyle().Bold(true).Foreground(colorDragFg).Render(p.Title + " (moving)")
	}
	lines := []string{
		truncate(marker+title, w),
		truncate("  "+meta.Render(it.PeopleLabel()), w),
		truncate("  "+meta.Render(firstLine(p.Description)), w),
	}
	if selected {
		sel := lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Width(w)
		for i := range lines {
			lines[i] = sel.Render(lines[i])
		}
	}
	return lines
}

func (m appModel) viewPreview(l layout) string {
	lines := make([]string, 0, previewH)
	it, ok := m.selectedItem()
	if m.focus != focusLists || !ok {
		lines = append(lines, styleMuted().Render(" Tab to the lists to browse projects; drag cards with the mouse or space."))
	} else {
		p := it.Project()
		lines = append(lines, " "+styleHeading().Render(p.Title)+styleMuted().Render("  "+p.ID+" · "+it.PeopleLabel()))
		body := renderMarkdown(p.Description, l.width-4)
		for _, ln := range strings.Split(body, "\n") {
			if len(lines) == previewH {
				break
			}
			lines = append(lines, " "+ln)
		}
	}
	for i := range lines {
		lines[i] = clampLine(lines[i], l.width)
	}
	for len(lines) < previewH {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewMinibuffer(l layout) string {
	if m.minibufferText == "" {
		return ""
	}
	if m.minibufferAlert {
		return clampLine(" "+styleAlert().Render(m.minibufferText), l.width)
	}
	return clampLine(" "+m.minibufferText, l.width)
}
