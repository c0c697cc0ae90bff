package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"projboard/internal/board"
	"projboard/internal/model"
	"projboard/internal/publish"

	"github.com/starfederation/datastar-go/datastar"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, formVM{})
}

// handleEvents streams the lists to one page. Every store broadcast causes a
// fresh render of #lists; the page also gets one render right away so it
// catches up on changes made after it was served.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch, cancel := s.hub.subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	keepAlive := time.NewTicker(s.cfg.Keepalive)
	defer keepAlive.Stop()

	push := func() bool {
		html, version, err := s.renderLists(sse.Context())
		if err != nil {
			if errors.Is(err, errLoopStopped) || errors.Is(err, context.Canceled) {
				return false
			}
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return true
		}
		_ = sse.PatchElements(html, datastar.WithSelector("#lists"), datastar.WithMode(datastar.ElementPatchModeOuter))
		_ = sse.MarshalAndPatchSignals(map[string]any{"boardVersion": version})
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			if !push() {
				return
			}
		}
	}
}

type createRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	People      json.RawMessage `json:"people"`
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	form, asJSON, err := readCreateForm(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		p      model.Project
		subErr error
		alert  string
	)
	err = s.loop.Do(r.Context(), func() {
		in := s.cfg.Board.Input
		in.Title, in.Description, in.People = form.Title, form.Description, form.People
		p, subErr = in.Submit()
		alert = in.Alert()
		if subErr != nil {
			// The web form keeps its own copy of the fields.
			in.Clear()
		}
	})
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if subErr != nil {
		s.cfg.Log.Debug().Err(subErr).Msg("project rejected")
		form.Alert = alert
		form.Errors = board.FieldErrors(subErr)
	} else {
		s.cfg.Log.Info().Str("id", p.ID).Str("title", p.Title).Msg("project added")
		form = formVM{}
	}

	switch {
	case asJSON:
		if subErr != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": alert, "fields": form.Errors})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": p})
	case isDatastar(r):
		html, err := s.renderTemplate("form", form)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElements(html, datastar.WithSelector("#project-form"), datastar.WithMode(datastar.ElementPatchModeOuter))
	case subErr != nil:
		s.renderPage(w, r, http.StatusUnprocessableEntity, form)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func readCreateForm(r *http.Request) (formVM, bool, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req createRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
			return formVM{}, true, fmt.Errorf("invalid json: %w", err)
		}
		people := strings.Trim(string(bytes.TrimSpace(req.People)), `"`)
		if people == "null" {
			people = ""
		}
		return formVM{Title: req.Title, Description: req.Description, People: people}, true, nil
	}
	if err := r.ParseForm(); err != nil {
		return formVM{}, false, fmt.Errorf("invalid form: %w", err)
	}
	return formVM{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		People:      r.FormValue("people"),
	}, false, nil
}

// handleDrop receives a browser drop: the body is the text/plain payload the
// dragged card carried.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	status, err := model.ParseStatus(r.PathValue("status"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 256))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	id := strings.TrimSpace(string(body))
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing project id")
		return
	}

	var (
		changed bool
		moveErr error
	)
	err = s.loop.Do(r.Context(), func() {
		before := s.cfg.Board.Store.Broadcasts()
		moveErr = s.cfg.Board.Move(id, status)
		changed = s.cfg.Board.Store.Broadcasts() != before
	})
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if moveErr != nil {
		writeJSONError(w, http.StatusConflict, moveErr.Error())
		return
	}
	if changed {
		s.cfg.Log.Info().Str("id", id).Stringer("status", status).Msg("project moved")
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"id":      id,
		"status":  status,
		"changed": changed,
	}})
}

func (s *Server) handleAPIProjects(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("status"))
	var status model.Status
	if filter != "" {
		st, err := model.ParseStatus(filter)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = st
	}

	var projects []model.Project
	err := s.loop.Do(r.Context(), func() {
		if filter != "" {
			projects = s.cfg.Board.List(status).Projects()
			return
		}
		projects = s.cfg.Board.Store.Snapshot()
	})
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": projects})
}

func (s *Server) handleAPIEvents(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Journal == nil {
		writeJSONError(w, http.StatusNotFound, "journal disabled")
		return
	}
	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	evs, err := s.cfg.Journal.Tail(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": evs})
}

// handleMarkdown serves the board index the way `projboard script --publish`
// writes it.
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	var lists []publish.List
	err := s.loop.Do(r.Context(), func() { lists = publish.ListsOf(s.cfg.Board) })
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, publish.RenderBoardMarkdown(lists, publish.RenderOptions{GeneratedAt: time.Now()}))
}

func isDatastar(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("Datastar-Request")), "true")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
