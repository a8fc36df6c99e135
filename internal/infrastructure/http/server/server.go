// Package server provides the HTTP server for the JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	appuser "github.com/planforge/v1/internal/application/user"
	"github.com/planforge/v1/internal/infrastructure/config"
	"github.com/planforge/v1/internal/infrastructure/http/handlers"
	"github.com/planforge/v1/internal/infrastructure/http/middleware"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Server wires the router, middleware stack and handlers.
type Server struct {
	config      *config.Config
	logger      *zap.Logger
	router      *chi.Mux
	server      *http.Server
	planService inbound.PlanService
	userService *appuser.UserService
}

// NewServer creates a new HTTP server instance.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	planService inbound.PlanService,
	userService *appuser.UserService,
) *Server {
	s := &Server{
		config:      cfg,
		logger:      logger.Named("http-server"),
		planService: planService,
		userService: userService,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	if cfg.Server.EnableHTTP2 {
		if err := http2.ConfigureServer(s.server, &http2.Server{}); err != nil {
			s.logger.Warn("Failed to configure HTTP/2", zap.Error(err))
		}
	}

	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMin,
			s.config.RateLimit.BurstSize,
			s.config.RateLimit.CleanupEvery,
		)
		r.Use(limiter.Handler())
	}

	planHandlers := handlers.NewPlanHandlers(s.planService, s.logger)
	authHandlers := handlers.NewAuthHandlers(
		s.userService,
		s.config.Auth.CookieName,
		s.config.Auth.CookieSecure,
		s.logger,
	)

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.JSONOnly())

		api.Post("/auth/register", authHandlers.Register)
		api.Post("/auth/login", authHandlers.Login)
		api.Post("/auth/logout", authHandlers.Logout)

		// Plan generation works anonymously; a logged-in caller is recognized
		// so the request can be attributed.
		api.With(middleware.OptionalAuth(s.userService, s.config.Auth.CookieName)).
			Post("/generate-plan", planHandlers.GeneratePlan)

		api.Group(func(private chi.Router) {
			private.Use(middleware.Authenticate(s.userService, s.config.Auth.CookieName))

			private.Get("/auth/me", authHandlers.Me)
			private.Put("/profile", authHandlers.UpdateProfile)

			private.Post("/plans", planHandlers.SavePlan)
			private.Get("/plans", planHandlers.ListPlans)
			private.Get("/plans/{planID}", planHandlers.GetPlan)
			private.Delete("/plans/{planID}", planHandlers.DeletePlan)
		})
	})

	return r
}

// Router exposes the chi mux, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener fails or is closed.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.Bool("http2", s.config.Server.EnableHTTP2),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
