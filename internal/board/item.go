package board

import (
	"projboard/internal/dnd"
	"projboard/internal/model"
)

// ItemView is one project card. Cards are rebuilt on every broadcast, so an
// ItemView never outlives the snapshot it was built from.
type ItemView struct {
	project model.Project
	doc     *dnd.Document
}

func newItemView(p model.Project, doc *dnd.Document) *ItemView {
	return &ItemView{project: p, doc: doc}
}

func (it *ItemView) Project() model.Project { return it.project }
func (it *ItemView) ID() string             { return it.project.ID }
func (it *ItemView) PeopleLabel() string    { return it.project.PeopleLabel() }

func (it *ItemView) DragStart(dt *dnd.DataTransfer) {
	dt.SetData(dnd.MIMEText, it.project.ID)
	dt.EffectAllowed = dnd.EffectMove
}

func (it *ItemView) DragEnd(*dnd.DataTransfer) {
	it.doc.ClearAll()
}

// relaySource stands in for a card whose drag started outside this process,
// e.g. in a browser that only reports the dropped id.
type relaySource struct {
	id  string
	doc *dnd.Document
}

func (r relaySource) DragStart(dt *dnd.DataTransfer) {
	dt.SetData(dnd.MIMEText, r.id)
	dt.EffectAllowed = dnd.EffectMove
}

func (r relaySource) DragEnd(*dnd.DataTransfer) {
	r.doc.ClearAll()
}
