package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"projboard/internal/board"
)

type cardVM struct {
	ID          string
	Title       string
	People      string
	Description template.HTML
}

type listVM struct {
	ID      string
	Heading string
	Status  string
	Count   int
	Cards   []cardVM
}

type formVM struct {
	Title       string
	Description string
	People      string
	Alert       string
	Errors      []string
}

type pageVM struct {
	Form    formVM
	Lists   []listVM
	Version int
}

// buildLists copies what the templates need out of the board. It must run on
// the loop; the result is plain data and can be rendered anywhere.
func buildLists(b *board.Board) []listVM {
	out := make([]listVM, 0, 2)
	for _, l := range b.Lists() {
		vm := listVM{
			ID:      l.ID(),
			Heading: l.Heading(),
			Status:  l.Status().String(),
			Count:   l.Len(),
		}
		for _, it := range l.Items() {
			p := it.Project()
			vm.Cards = append(vm.Cards, cardVM{
				ID:          p.ID,
				Title:       p.Title,
				People:      it.PeopleLabel(),
				Description: renderMarkdownHTML(p.Description),
			})
		}
		out = append(out, vm)
	}
	return out
}

func (s *Server) snapshot(ctx context.Context) ([]listVM, int, error) {
	var (
		lists   []listVM
		version int
	)
	err := s.loop.Do(ctx, func() {
		lists = buildLists(s.cfg.Board)
		version = s.cfg.Board.Store.Broadcasts()
	})
	return lists, version, err
}

func (s *Server) renderLists(ctx context.Context) (string, int, error) {
	lists, version, err := s.snapshot(ctx)
	if err != nil {
		return "", 0, err
	}
	html, err := s.renderTemplate("lists", lists)
	return html, version, err
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, form formVM) {
	lists, version, err := s.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	html, err := s.renderTemplate("index", pageVM{Form: form, Lists: lists, Version: version})
	if err != nil {
		s.cfg.Log.Error().Err(err).Msg("render page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}
