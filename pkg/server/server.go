// Package server exposes the villas pipeline and blueprint store over HTTP.
//
// # Routes
//
//	GET    /healthz
//	POST   /api/rooms/validate
//	POST   /api/render?format=svg
//	GET    /api/blueprints
//	POST   /api/blueprints
//	GET    /api/blueprints/{id}
//	PUT    /api/blueprints/{id}
//	DELETE /api/blueprints/{id}
//	GET    /api/blueprints/{id}/render?format=svg
//	GET    /api/blueprints/{id}/regions
//	GET    /api/blueprints/{id}/path?from=i,j&to=i,j
//
// Errors are JSON objects {"code": ..., "message": ...}. The status follows
// the error code: NOT_FOUND is 404, UNSUPPORTED is 501, other input errors
// are 400 and everything else is 500.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/store"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Defaults are the render options used when a request does not set them.
	Defaults pipeline.Options

	Addr            string
	ShutdownTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options

	addr            string
	shutdownTimeout time.Duration
}

// New creates a server. A nil Runner gets an uncached runner; the Store is required.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server requires a store")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		runner:          cfg.Runner,
		store:           cfg.Store,
		logger:          cfg.Logger,
		defaults:        cfg.Defaults,
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		s.logRequests,
		observe,
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    string(errors.ErrCodeInvalidInput),
			Message: r.Method + " is not allowed on " + r.URL.Path,
		})
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms/validate", s.handleValidateRoom)
		r.Post("/render", s.handleRender)

		r.Route("/blueprints", func(r chi.Router) {
			r.Get("/", s.handleListBlueprints)
			r.Post("/", s.handleCreateBlueprint)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBlueprint)
				r.Put("/", s.handlePutBlueprint)
				r.Delete("/", s.handleDeleteBlueprint)
				r.Get("/render", s.handleRenderBlueprint)
				r.Get("/regions", s.handleRegions)
				r.Get("/path", s.handlePath)
			})
		})
	})

	return r
}

// Serve listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", s.addr)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
