package dnd

// Document tracks the visual drop marker of every list container. Each list
// marks only itself; a finished drag clears them all.
type Document struct {
	order     []string
	droppable map[string]bool
}

func NewDocument() *Document {
	return &Document{droppable: map[string]bool{}}
}

// Register adds a container. Registering twice is harmless.
func (d *Document) Register(container string) {
	if _, ok := d.droppable[container]; ok {
		return
	}
	d.order = append(d.order, container)
	d.droppable[container] = false
}

func (d *Document) Mark(container string) {
	d.Register(container)
	d.droppable[container] = true
}

func (d *Document) Unmark(container string) {
	if _, ok := d.droppable[container]; ok {
		d.droppable[container] = false
	}
}

func (d *Document) ClearAll() {
	for k := range d.droppable {
		d.droppable[k] = false
	}
}

func (d *Document) Droppable(container string) bool {
	return d.droppable[container]
}

// Marked returns the marked containers in registration order.
func (d *Document) Marked() []string {
	var out []string
	for _, c := range d.order {
		if d.droppable[c] {
			out = append(out, c)
		}
	}
	return out
}

func (d *Document) Containers() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
