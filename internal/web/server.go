// Package web serves the board to browsers. Pages are rendered on the
// server; list changes are pushed over a datastar SSE stream and card drags
// use the browser's native drag and drop.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"projboard/internal/board"
	"projboard/internal/metrics"
	"projboard/internal/model"
	"projboard/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

//go:embed templates/*.html
var assetsFS embed.FS

type ServerConfig struct {
	Addr  string
	Board *board.Board
	// Journal and Metrics are optional; their routes answer 404 without them.
	Journal *store.Journal
	Metrics *metrics.Collector
	Log     zerolog.Logger

	// RateLimit and RateBurst bound mutating requests (per second, shared by
	// all clients). Zero disables limiting.
	RateLimit float64
	RateBurst int
	Keepalive time.Duration
}

type Server struct {
	cfg     ServerConfig
	tmpl    *template.Template
	loop    *loop
	hub     *resourceHub
	limiter *rate.Limiter
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("web: missing addr")
	}
	if cfg.Board == nil {
		return nil, errors.New("web: missing board")
	}
	if cfg.Keepalive <= 0 {
		cfg.Keepalive = 15 * time.Second
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:  cfg,
		tmpl: tmpl,
		loop: newLoop(),
		hub:  newResourceHub(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	// Subscribing is a store call like any other, so it runs on the loop.
	err = s.loop.Do(context.Background(), func() {
		cfg.Board.Store.Subscribe(func([]model.Project) { s.hub.broadcast() })
	})
	if err != nil {
		s.loop.stop()
		return nil, err
	}
	return s, nil
}

func (s *Server) Addr() string { return strings.TrimSpace(s.cfg.Addr) }

// Close stops the board loop. Requests still in flight fail with 503.
func (s *Server) Close() error {
	s.loop.stop()
	return nil
}

// Do runs fn on the board loop. Anything outside the server that touches the
// board while the server runs must go through here.
func (s *Server) Do(ctx context.Context, fn func(b *board.Board)) error {
	return s.loop.Do(ctx, func() { fn(s.cfg.Board) })
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /health", s.handleHealth)
	s.handle(mux, "GET /{$}", s.handleHome)
	s.handle(mux, "GET /events", s.handleEvents)
	s.handle(mux, "POST /projects", s.limit(s.handleProjectCreate))
	s.handle(mux, "POST /lists/{status}/drop", s.limit(s.handleDrop))
	s.handle(mux, "GET /api/projects", s.handleAPIProjects)
	s.handle(mux, "GET /api/events", s.handleAPIEvents)
	s.handle(mux, "GET /board.md", s.handleMarkdown)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics.Handler())
	}
	return loggerMiddleware(s.cfg.Log)(mux)
}

// handle registers h, timed by the metrics collector when there is one.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if s.cfg.Metrics == nil {
		mux.HandleFunc(pattern, h)
		return
	}
	path := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		path = pattern[i+1:]
	}
	mux.Handle(pattern, s.cfg.Metrics.Middleware(path, h))
}

func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}
