// Package metrics exposes board activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"projboard/internal/model"
	"projboard/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several boards (and tests) can live in
// one process.
type Collector struct {
	reg *prometheus.Registry

	projects        *prometheus.GaugeVec
	broadcasts      prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		projects: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "projboard_projects",
				Help: "Projects on the board by status",
			},
			[]string{"status"},
		),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "projboard_broadcasts_total",
			Help: "Store broadcasts delivered",
		}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
	c.reg.MustRegister(c.projects, c.broadcasts, c.requestDuration)
	for _, s := range model.Statuses {
		c.projects.WithLabelValues(s.String()).Set(0)
	}
	return c
}

// Attach seeds the gauges from st and subscribes to its broadcasts.
func (c *Collector) Attach(st *store.Store) {
	c.setCounts(st.Snapshot())
	st.Subscribe(c.observe)
}

func (c *Collector) observe(projects []model.Project) {
	c.broadcasts.Inc()
	c.setCounts(projects)
}

func (c *Collector) setCounts(projects []model.Project) {
	counts := map[model.Status]int{}
	for _, p := range projects {
		counts[p.Status]++
	}
	for _, s := range model.Statuses {
		c.projects.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Middleware records request durations. path should be the route pattern,
// not the raw URL, to keep label cardinality bounded.
func (c *Collector) Middleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		c.requestDuration.
			WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streams working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
