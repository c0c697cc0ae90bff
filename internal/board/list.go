package board

import (
	"projboard/internal/dnd"
	"projboard/internal/model"
	"projboard/internal/store"
)

const (
	ActiveListID   = "active-projects-list"
	FinishedListID = "finished-projects-list"
)

// ListID returns the container id of the list showing status.
func ListID(status model.Status) string {
	if status == model.StatusFinished {
		return FinishedListID
	}
	return ActiveListID
}

// Heading returns the title printed above the list showing status.
func Heading(status model.Status) string {
	if status == model.StatusFinished {
		return "FINISHED PROJECTS"
	}
	return "ACTIVE PROJECTS"
}

// ListView shows the projects of one status and accepts drops that move a
// project into that status.
type ListView struct {
	status model.Status
	id     string
	store  *store.Store
	doc    *dnd.Document

	items   []*ItemView
	renders int
	hooks   []func(*ListView)
}

// NewListView registers the list's container, subscribes to st and renders
// the projects already in st.
func NewListView(st *store.Store, doc *dnd.Document, status model.Status) *ListView {
	l := &ListView{
		status: status,
		id:     ListID(status),
		store:  st,
		doc:    doc,
	}
	doc.Register(l.id)
	st.Subscribe(l.render)
	l.rebuild(st.Snapshot())
	return l
}

// OnRender adds fn to the hooks run after every re-render caused by a
// broadcast.
func (l *ListView) OnRender(fn func(*ListView)) {
	if fn != nil {
		l.hooks = append(l.hooks, fn)
	}
}

func (l *ListView) render(projects []model.Project) {
	l.rebuild(projects)
	for _, fn := range l.hooks {
		fn(l)
	}
}

func (l *ListView) rebuild(projects []model.Project) {
	items := make([]*ItemView, 0, len(projects))
	for _, p := range projects {
		if p.Status == l.status {
			items = append(items, newItemView(p, l.doc))
		}
	}
	l.items = items
	l.renders++
}

func (l *ListView) Status() model.Status { return l.status }
func (l *ListView) ID() string           { return l.id }
func (l *ListView) Heading() string      { return Heading(l.status) }
func (l *ListView) Len() int             { return len(l.items) }

// Renders counts full rebuilds, the initial one included.
func (l *ListView) Renders() int { return l.renders }

// Droppable reports whether the list currently shows its drop marker.
func (l *ListView) Droppable() bool { return l.doc.Droppable(l.id) }

func (l *ListView) Items() []*ItemView {
	out := make([]*ItemView, len(l.items))
	copy(out, l.items)
	return out
}

// Projects returns the projects currently shown, in store order.
func (l *ListView) Projects() []model.Project {
	out := make([]model.Project, len(l.items))
	for i, it := range l.items {
		out[i] = it.project
	}
	return out
}

func (l *ListView) Item(id string) (*ItemView, bool) {
	for _, it := range l.items {
		if it.project.ID == id {
			return it, true
		}
	}
	return nil, false
}

func (l *ListView) DragOver(dt *dnd.DataTransfer) bool {
	if !dt.HasType(dnd.MIMEText) {
		return false
	}
	l.doc.Mark(l.id)
	return true
}

func (l *ListView) DragLeave(*dnd.DataTransfer) {
	l.doc.Unmark(l.id)
}

func (l *ListView) Drop(dt *dnd.DataTransfer) {
	l.store.Transition(dt.GetData(dnd.MIMEText), l.status)
}
