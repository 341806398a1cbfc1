// Package api exposes the session engine over HTTP with Echo v5,
// generalised from pkg/api/server.go's route-registration and
// health-check shape. Unlike the teacher, there is no dashboard, chat,
// or WebSocket surface: the kernel is request/response only.
package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeready-toolchain/quizkernel/pkg/config"
	"github.com/codeready-toolchain/quizkernel/pkg/database"
	"github.com/codeready-toolchain/quizkernel/pkg/kernel"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
	"github.com/codeready-toolchain/quizkernel/pkg/version"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	cfg        *config.Config
	engine     *kernel.Engine
	repo       repository.Repository
	dbPool     *pgxpool.Pool // nil when running against the in-memory repository
}

// NewServer creates a new API server with Echo v5. dbPool is optional:
// it is nil when repo is the in-memory store (e.g. local demos), in
// which case the /healthz database check is skipped.
func NewServer(cfg *config.Config, engine *kernel.Engine, repo repository.Repository, dbPool *pgxpool.Pool) *Server {
	e := echo.New()

	s := &Server{
		echo:   e,
		cfg:    cfg,
		engine: engine,
		repo:   repo,
		dbPool: dbPool,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(1 * 1024 * 1024))
	s.echo.Use(securityHeaders())
	s.echo.Use(metricsMiddleware())

	s.echo.GET("/healthz", s.healthHandler)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/sessions", s.createSessionHandler)
	v1.GET("/sessions/:id/next-question", s.nextQuestionHandler)
	v1.POST("/sessions/:id/answer", s.submitAnswerHandler)
	v1.GET("/sessions/:id/summary", s.sessionSummaryHandler)
	v1.GET("/sessions/:id/interactions", s.sessionInteractionsHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /healthz.
func (s *Server) healthHandler(c *echo.Context) error {
	resp := &HealthResponse{Status: "healthy", Version: version.Full()}

	if s.dbPool != nil {
		reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		dbHealth, err := database.Health(reqCtx, s.dbPool)
		resp.Database = map[string]interface{}{
			"status":           dbHealth.Status,
			"open_connections": dbHealth.OpenConnections,
			"in_use":           dbHealth.InUse,
			"idle":             dbHealth.Idle,
		}
		if err != nil {
			resp.Status = "unhealthy"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}

	resp.Quizzes = s.cfg.Stats().Quizzes

	return c.JSON(http.StatusOK, resp)
}
