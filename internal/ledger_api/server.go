package ledger_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowi-ledger/internal/config"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/ledger_api/handler"
	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/gin-gonic/gin"
)

// Services are the application services the HTTP surface delegates to
type Services struct {
	Rates       service.RateService
	Obligations service.ObligationService
	Dashboard   service.DashboardService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services.
// checks are reported by GET /health.
func NewServer(log *slog.Logger, cfg *config.Config, services Services, checks ...handler.HealthCheck) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, cfg.CORS, routeHandlers{
		rate:        handler.NewRateHandler(log, services.Rates),
		receivables: handler.NewObligationHandler(log, services.Obligations, obligation.KindReceivable),
		payables:    handler.NewObligationHandler(log, services.Obligations, obligation.KindPayable),
		dashboard:   handler.NewDashboardHandler(log, services.Dashboard),
		health:      handler.Health(checks...),
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server within the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
