// Package server exposes the cached analysis runner over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness probe
//	GET  /version                 build information
//	POST /v1/analyze              analyze a manifest, returns a report
//	GET  /v1/reports/{key}        fetch a cached report by cache key
//
// Both report routes take a format query parameter (json, text, csv,
// markdown, dot, svg); JSON is the default. POST /v1/analyze accepts
// either a normalized manifest or raw package.json and package-lock.json
// documents:
//
//	{"package_json": {...}, "lockfile": {...}, "sizes": [...], "usage": [...]}
//
// Every response carries an X-Request-ID header; report responses also
// carry X-Report-Key and X-Cache (HIT or MISS).
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/cache"
)

// Defaults for [Options].
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 32 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	Addr            string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	return o
}

// Server is the HTTP API. Reports are cached by the runner; rendered graph
// exports are cached in the runner's cache under export keys.
type Server struct {
	runner *analysis.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New builds a server around runner.
func New(runner *analysis.Runner, opts Options) *Server {
	s := &Server{
		runner: runner,
		logger: runner.Logger,
		opts:   opts.withDefaults(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/reports/{key}", s.handleReport)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) cache() cache.Cache { return s.runner.Cache }
