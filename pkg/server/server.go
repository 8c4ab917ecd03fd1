// Package server exposes one sheet over a small JSON HTTP API.
//
// # Routes
//
//	PUT    /cells/{ref}     body {"text": "..."}; 200 with the cell
//	GET    /cells/{ref}     200 with the cell, 404 when unset
//	DELETE /cells/{ref}     204
//	GET    /sheet/values    tab-separated values of the printable area
//	GET    /sheet/texts     tab-separated texts of the printable area
//	GET    /sheet/graph     dependency graph, ?format=dot|svg|png
//	GET    /healthz         liveness
//	GET    /metrics         Prometheus metrics, when configured
//
// Errors are JSON objects {"code": "...", "message": "..."}. Rejected
// formulas (cycles, chains that are too deep) answer 409.
//
// A sheet is not safe for concurrent use, so the server serializes access.
// Reading values fills formula caches and therefore takes the write lock.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

// Server serves one sheet.
type Server struct {
	mu    sync.RWMutex
	sheet *sheet.Sheet

	logger  *log.Logger
	cache   cache.Cache
	metrics http.Handler
	renders singleflight.Group
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCache stores rendered graphs in c.
func WithCache(c cache.Cache) Option { return func(s *Server) { s.cache = c } }

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// New creates a server for sh.
func New(sh *sheet.Sheet, opts ...Option) *Server {
	s := &Server{
		sheet:  sh,
		logger: log.Default(),
		cache:  cache.NewNullCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "sheet": s.sheet.ID()})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/cells/{ref}", s.getCell)
	r.Put("/cells/{ref}", s.putCell)
	r.Delete("/cells/{ref}", s.deleteCell)

	r.Get("/sheet/values", s.printSheet(true))
	r.Get("/sheet/texts", s.printSheet(false))
	r.Get("/sheet/graph", s.graph)
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
