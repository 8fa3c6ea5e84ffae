// Package server exposes the mesh pipeline over HTTP.
//
// # Routes
//
//	GET    /healthz                          liveness and build version
//	POST   /v1/meshes/process                process a document and store the result
//	GET    /v1/meshes                        list stored meshes, newest first
//	GET    /v1/meshes/{id}                   fetch a stored mesh with its input
//	DELETE /v1/meshes/{id}                   delete a stored mesh
//	GET    /v1/meshes/{id}/render/{format}   render a stored mesh (json, dot, svg, png)
//
// Errors are JSON objects carrying the error code from package errors and
// the request ID assigned by the router.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/meshtopo/pkg/pipeline"
	"github.com/matzehuels/meshtopo/pkg/store"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultTimeout bounds the time spent on one request.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBody bounds the size of a request body.
	DefaultMaxBody = 16 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	// Runner processes and renders meshes. Required.
	Runner *pipeline.Runner
	// Store persists processed meshes. Required.
	Store store.Store
	// Logger receives request logs. Nil discards them.
	Logger *log.Logger
	// Defaults are the pipeline options requests start from.
	Defaults pipeline.Options
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxBody bounds request bodies in bytes. Zero means DefaultMaxBody.
	MaxBody int64
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
	maxBody  int64
	router   chi.Router
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBody == 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		defaults: cfg.Defaults,
		maxBody:  cfg.MaxBody,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/meshes", func(r chi.Router) {
		r.Post("/process", s.handleProcess)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.meshID)
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/render/{format}", s.handleRender)
		})
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
