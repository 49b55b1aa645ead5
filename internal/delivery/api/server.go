package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"mcdiscord/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Config struct {
	Addr  string `env:"ADDR" envDefault:":8085"`
	Token string `env:"TOKEN" envDefault:""`
}

// Server exposes the registry to the game server plugin.
type Server struct {
	cfg        *Config
	httpServer *http.Server
	listener   net.Listener
	logger     application.Logger
}

func NewServer(cfg *Config, services *application.Service, logger application.Logger) *Server {
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Handler:      NewRouter(services, cfg.Token, logger),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

func NewRouter(services *application.Service, token string, logger application.Logger) http.Handler {
	h := &handler{
		links:       services.Links,
		connections: services.Connections,
		logger:      logger,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(notFound)
	router.MethodNotAllowed(notAllowed)

	router.Route("/v1", func(v1 chi.Router) {
		v1.Use(authenticate(token, logger))
		v1.Route("/players/{uuid}", func(p chi.Router) {
			p.Post("/code", h.requestCode)
			p.Get("/link", h.getLink)
			p.Delete("/link", h.deleteLink)
		})
		v1.Route("/events", func(ev chi.Router) {
			ev.Post("/join", h.playerJoined)
			ev.Post("/quit", h.playerQuit)
		})
		v1.Post("/save", h.save)
	})

	return router
}

func (s *Server) Init() error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	return nil
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("Game API listening on %s", s.listener.Addr())
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Game API stopped: %v", err)
	}
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("Game API shutdown: %v", err)
	}
}
