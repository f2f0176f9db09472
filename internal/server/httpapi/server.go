// Package httpapi serves the NoteHub REST API over chi.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	users   *services.UserService
	notes   *services.NoteService
	logger  logging.Logger
	zap     *zap.Logger
	metrics *metrics
}

func NewServer(addr string, l *logging.ZapLogger, us *services.UserService, ns *services.NoteService) *Server {
	return &Server{
		address: addr,
		users:   us,
		notes:   ns,
		logger:  l.With("module", "http_server"),
		zap:     l.Zap(),
		metrics: newMetrics(),
	}
}

// Router builds the handler tree. The API lives under /api; /metrics sits
// at the root.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.zap))
	r.Use(s.metrics.middleware)

	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/auth/session", s.createSession)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/session", s.whoAmI)
			r.Post("/auth/session/revoke", s.revokeSession)
			r.Post("/notes/upload", s.uploadNote)
			r.Post("/notes/{id}/vote", s.vote)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.optionalAuth)
			r.Get("/notes", s.recentNotes)
			r.Get("/notes/search", s.searchNotes)
			r.Get("/notes/{id}", s.getNote)
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
