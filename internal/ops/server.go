// Package ops exposes the operational HTTP endpoint: health, cache and
// selector statistics, and Prometheus metrics.
package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcfactory/arc/internal/cache"
	"github.com/arcfactory/arc/internal/logging"
	"github.com/arcfactory/arc/internal/selector"
)

// Server serves the operational endpoints for a running orchestrator.
type Server struct {
	caches   *cache.Manager
	selector *selector.Selector
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server over the given cache manager and selector.
// Either may be nil; the corresponding stats endpoint then returns 404.
func NewServer(caches *cache.Manager, sel *selector.Selector, opts ...Option) *Server {
	s := &Server{
		caches:   caches,
		selector: sel,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router. Metrics are gathered from the given
// registry, which must be the one the engine and caches report into.
func (s *Server) Handler(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/stats/cache", s.cacheStats)
	r.Get("/stats/selector", s.selectorStats)
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	if s.caches == nil {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, map[string]cache.Stats{
		cache.TierData:   s.caches.Data().Stats(),
		cache.TierOutput: s.caches.Output().Stats(),
	})
}

func (s *Server) selectorStats(w http.ResponseWriter, r *http.Request) {
	if s.selector == nil {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, s.selector.Stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("ops response encode failed", "error", err)
	}
}
