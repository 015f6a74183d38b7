// Package api exposes the AI facade over HTTP for the browser UI.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lexdesk/lexdesk/internal/dispatch"
	"github.com/lexdesk/lexdesk/internal/journal"
	"github.com/lexdesk/lexdesk/internal/log"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/internal/stats"
	"github.com/lexdesk/lexdesk/internal/status"
)

// PathHeader tells the client which executor produced a result.
const PathHeader = "X-LexDesk-Path"

// Service is the facade surface the server needs.
type Service interface {
	Run(ctx context.Context, kind operation.Kind, input string, reqCtx map[string]any) (dispatch.Outcome, error)
	Status() status.Report
	ForceCheck(ctx context.Context) bool
	Stats(ctx context.Context) *stats.Stats
	History(ctx context.Context, kind operation.Kind, limit int) ([]journal.Entry, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	RateLimit       float64 // requests per second per client, 0 disables
	Burst           int
	ShutdownTimeout time.Duration

	// Mock makes the server act as a stand-in backend: /health always
	// answers ok and reports the "mock" mode.
	Mock bool
}

// Server is the LexDesk HTTP API.
type Server struct {
	cfg  Config
	svc  Service
	echo *echo.Echo
}

// NewServer creates the server and registers its routes.
func NewServer(cfg Config, svc Service) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:  cfg,
		svc:  svc,
		echo: echo.New(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Bool("mock", s.cfg.Mock).Msg("Starting LexDesk API")
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.Shutdown(); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown stops the server, waiting up to the shutdown timeout.
func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(requestLogger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	if s.cfg.RateLimit > 0 {
		s.echo.Use(NewRateLimiter(s.cfg.RateLimit, s.cfg.Burst).Middleware())
	}

	s.echo.GET("/health", s.HealthHandler)

	s.echo.GET("/api/status", s.StatusHandler)
	s.echo.POST("/api/status/refresh", s.RefreshHandler)
	s.echo.GET("/api/stats", s.StatsHandler)
	s.echo.GET("/api/history", s.HistoryHandler)

	s.echo.POST("/ai/generate", s.operationHandler(operation.GenerateText))
	s.echo.POST("/ai/summarize", s.operationHandler(operation.SummarizeText))
	s.echo.POST("/ai/analyze-document", s.operationHandler(operation.AnalyzeDocument))
	s.echo.POST("/contract-analyzer/analyze", s.operationHandler(operation.AnalyzeContract))
}

// requestLogger logs one line per request through the shared logger.
func requestLogger() echo.MiddlewareFunc {
	logger := log.Component("api")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Status >= http.StatusInternalServerError || v.Error != nil {
				event = logger.Warn()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Err(v.Error).
				Msg("Request")
			return nil
		},
	})
}
