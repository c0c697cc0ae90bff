// Package dnd models drag and drop between project lists independently of
// any input device: the terminal UI feeds it mouse and key events, the web
// front end feeds it the browser's drop requests.
package dnd

import (
	"errors"
	"fmt"
)

// MIMEText is the only payload key ever written or read.
const MIMEText = "text/plain"

type Effect string

const (
	EffectNone Effect = "none"
	EffectCopy Effect = "copy"
	EffectMove Effect = "move"
)

// DataTransfer is the payload carried from drag start to drop.
type DataTransfer struct {
	EffectAllowed Effect

	data  map[string]string
	types []string
}

func NewDataTransfer() *DataTransfer {
	return &DataTransfer{EffectAllowed: EffectNone, data: map[string]string{}}
}

func (d *DataTransfer) SetData(format, value string) {
	if _, ok := d.data[format]; !ok {
		d.types = append(d.types, format)
	}
	d.data[format] = value
}

// GetData returns "" when format was never set.
func (d *DataTransfer) GetData(format string) string {
	if d == nil {
		return ""
	}
	return d.data[format]
}

func (d *DataTransfer) Types() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.types))
	copy(out, d.types)
	return out
}

func (d *DataTransfer) HasType(format string) bool {
	if d == nil {
		return false
	}
	_, ok := d.data[format]
	return ok
}

// Draggable is the drag source capability.
type Draggable interface {
	DragStart(dt *DataTransfer)
	DragEnd(dt *DataTransfer)
}

// DropTarget is the drop target capability.
type DropTarget interface {
	// DragOver reports whether the target accepts the payload. Only an
	// accepting target can receive the drop.
	DragOver(dt *DataTransfer) bool
	DragLeave(dt *DataTransfer)
	Drop(dt *DataTransfer)
}

type State int

const (
	Idle State = iota
	DragStarted
	DragOverTarget
	DragLeftTarget
	Dropped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DragStarted:
		return "drag-started"
	case DragOverTarget:
		return "drag-over-target"
	case DragLeftTarget:
		return "drag-left-target"
	case Dropped:
		return "dropped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("dnd: invalid transition")

func invalid(from State, event string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, from)
}

// Session drives one drag interaction at a time. The zero value is Idle and
// ready to use.
type Session struct {
	state  State
	source Draggable
	target DropTarget
	dt     *DataTransfer
}

func (s *Session) State() State { return s.state }
func (s *Session) Source() Draggable { return s.source }
func (s *Session) Target() DropTarget { return s.target }
func (s *Session) Transfer() *DataTransfer { return s.dt }
func (s *Session) Active() bool { return s.state != Idle }
func (s *Session) Hovering(t DropTarget) bool { return s.target != nil && s.target == t }

// Start begins a drag from src. The source fills the payload; nothing else
// changes.
func (s *Session) Start(src Draggable) error {
	if s.state != Idle {
		return invalid(s.state, "start")
	}
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidTransition)
	}
	s.dt = NewDataTransfer()
	s.source = src
	src.DragStart(s.dt)
	s.state = DragStarted
	return nil
}

// Over delivers a drag-over tick for t. Moving onto a different target first
// leaves the previous one. It reports whether t accepted the payload.
func (s *Session) Over(t DropTarget) (bool, error) {
	switch s.state {
	case DragStarted, DragOverTarget, DragLeftTarget:
	default:
		return false, invalid(s.state, "over")
	}
	if t == nil {
		return false, fmt.Errorf("%w: nil target", ErrInvalidTransition)
	}
	if s.target != nil && s.target != t {
		s.target.DragLeave(s.dt)
		s.target = nil
		s.state = DragLeftTarget
	}
	if !t.DragOver(s.dt) {
		return false, nil
	}
	s.target = t
	s.state = DragOverTarget
	return true, nil
}

// Leave is delivered when the pointer moves off the hovered target.
func (s *Session) Leave() error {
	if s.state != DragOverTarget || s.target == nil {
		return invalid(s.state, "leave")
	}
	s.target.DragLeave(s.dt)
	s.target = nil
	s.state = DragLeftTarget
	return nil
}

// Drop hands the payload to the accepting target.
func (s *Session) Drop() error {
	if s.state != DragOverTarget || s.target == nil {
		return invalid(s.state, "drop")
	}
	t := s.target
	s.target = nil
	s.state = Dropped
	t.Drop(s.dt)
	return nil
}

// End finishes the drag whether or not a drop happened and returns to Idle.
func (s *Session) End() error {
	if s.state == Idle {
		return invalid(s.state, "end")
	}
	if s.state == DragOverTarget && s.target != nil {
		// Cancelled while hovering: the target sees a leave first.
		s.target.DragLeave(s.dt)
	}
	src, dt := s.source, s.dt
	s.state = Idle
	s.source = nil
	s.target = nil
	s.dt = nil
	src.DragEnd(dt)
	return nil
}
