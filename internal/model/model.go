package model

import (
	"fmt"
	"strings"
	"time"
)

type Status int

const (
	StatusActive Status = iota
	StatusFinished
)

// Statuses lists every status in board order (active list first).
var Statuses = []Status{StatusActive, StatusFinished}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusFinished
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "finished", "done":
		return StatusFinished, nil
	default:
		return 0, fmt.Errorf("invalid status: %q (expected active|finished)", s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status: %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Project is a value object. Everything except Status is fixed at creation;
// Status changes only through the store's transition.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	People      int       `json:"people"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PeopleLabel renders the headcount the way list cards show it.
func (p Project) PeopleLabel() string {
	if p.People == 1 {
		return "1 person assigned"
	}
	return fmt.Sprintf("%d persons assigned", p.People)
}

// Event is one entry of the store journal.
type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}

const (
	EventProjectCreate = "project.create"
	EventProjectStatus = "project.status"
)
