package store

import (
	"fmt"
	"strings"
	"time"

	"projboard/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Listener receives a snapshot of every project, in creation order.
// The slice is freshly allocated for each call and owned by the listener.
type Listener func(projects []model.Project)

type Option func(*Store)

// WithIDGenerator replaces the default random id source. The store still
// guarantees uniqueness: colliding ids are retried.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.genID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store is the single source of truth for a board's projects.
//
// A Store is not safe for concurrent use. Every call (and therefore every
// broadcast) must come from one goroutine: the bubbletea update loop in the
// TUI, or the web server's loop.
type Store struct {
	projects  []model.Project
	listeners []Listener

	genID func() string
	now   func() time.Time
	log   zerolog.Logger

	broadcasts int
}

func New(opts ...Option) *Store {
	s := &Store{
		now: func() time.Time { return time.Now().UTC() },
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every future broadcast. fn is not called
// immediately, and subscribing the same function twice yields two calls.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.listeners = append(s.listeners, fn)
}

// Create appends a new active project and broadcasts. Inputs are expected to
// be validated by the caller.
func (s *Store) Create(title, description string, people int) model.Project {
	p := model.Project{
		ID:          s.nextID(),
		Title:       title,
		Description: description,
		People:      people,
		Status:      model.StatusActive,
		CreatedAt:   s.now(),
	}
	s.projects = append(s.projects, p)
	s.log.Debug().Str("id", p.ID).Str("title", p.Title).Msg("project created")
	s.broadcast()
	return p
}

// Transition moves the project with the given id to status. Unknown ids and
// projects already in status are ignored without a broadcast, as is a status
// outside the known set. It reports
// whether anything changed.
func (s *Store) Transition(id string, status model.Status) bool {
	if !status.Valid() {
		s.log.Debug().Str("id", id).Int("status", int(status)).Msg("transition ignored: invalid status")
		return false
	}
	i, ok := s.index(id)
	if !ok {
		s.log.Debug().Str("id", id).Msg("transition ignored: unknown project")
		return false
	}
	if s.projects[i].Status == status {
		s.log.Debug().Str("id", id).Stringer("status", status).Msg("transition ignored: status unchanged")
		return false
	}
	from := s.projects[i].Status
	s.projects[i].Status = status
	s.log.Debug().Str("id", id).Stringer("from", from).Stringer("to", status).Msg("project status changed")
	s.broadcast()
	return true
}

// Snapshot returns a copy of the current project sequence.
func (s *Store) Snapshot() []model.Project {
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

func (s *Store) Find(id string) (model.Project, bool) {
	i, ok := s.index(id)
	if !ok {
		return model.Project{}, false
	}
	return s.projects[i], true
}

func (s *Store) Len() int { return len(s.projects) }

// Broadcasts is the number of broadcasts delivered so far.
func (s *Store) Broadcasts() int { return s.broadcasts }

func (s *Store) broadcast() {
	s.broadcasts++
	// Listeners added during this broadcast are first called on the next one.
	for _, fn := range s.listeners {
		fn(s.Snapshot())
	}
}

func (s *Store) index(id string) (int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, false
	}
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Store) nextID() string {
	if s.genID != nil {
		for i := 0; i < 10; i++ {
			id := strings.TrimSpace(s.genID())
			if id == "" {
				continue
			}
			if _, exists := s.index(id); !exists {
				return id
			}
		}
		// Generator keeps colliding; fall back to the first free sequential id.
		for n := len(s.projects) + 1; ; n++ {
			id := fmt.Sprintf("prj-%d", n)
			if _, exists := s.index(id); !exists {
				return id
			}
		}
	}

	// Short ids keep cards and CLI output readable; grow on collision.
	for _, ln := range []int{6, 8, 12} {
		for i := 0; i < 20; i++ {
			id := newProjectID(ln)
			if _, exists := s.index(id); !exists {
				return id
			}
		}
	}
	return "prj-" + uuid.NewString()
}

func newProjectID(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return "prj-" + hex[:n]
}
