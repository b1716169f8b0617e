package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skillcoder/podstream/internal/infra/shutdown"
)

// Server serves probes and the pod API. Open pod streams end once the pod
// service closes its subscriptions, so that service must shut down first.
type Server struct {
	*listener
	appState          appstater
	pods              podService
	keepAliveInterval time.Duration
}

// New creates a new HTTP server instance
func New(logger *slog.Logger, appState appstater, pods podService, port string) *Server {
	if port == "" {
		port = defaultPort
	}

	return &Server{
		listener:          newListener(logger, "http-server", port),
		appState:          appState,
		pods:              pods,
		keepAliveInterval: sseKeepAliveInterval,
	}
}

var _ shutdown.Shutdowner = (*Server)(nil)

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/-/healthz", s.handleHealthz)
	router.Get("/-/readyz", s.handleReadyz)
	router.Get("/-/status", s.handleStatus)

	router.Route("/api/pods", func(r chi.Router) {
		r.Get("/", s.handlePods)
		r.Get("/stream", s.handleStream)
		r.Post("/resync", s.handleResync)
	})

	return router
}

// Start binds the port and serves in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	return s.serve(ctx, s.Handler())
}
