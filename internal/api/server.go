// Package api serves the HTTP endpoints used by the browser extension.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/diagnostics"
	"github.com/seerlink/seerlink/internal/extract"
	"github.com/seerlink/seerlink/internal/health"
	"github.com/seerlink/seerlink/internal/history"
	"github.com/seerlink/seerlink/internal/lookup"
	"github.com/seerlink/seerlink/internal/scheduler"
	"github.com/seerlink/seerlink/internal/seerr"
)

// Connector tests the Jellyseerr connection.
type Connector interface {
	TestConnection(ctx context.Context) (*seerr.Connection, error)
}

// Deps are the services behind the API. Optional services may be nil, in
// which case their routes are not registered.
type Deps struct {
	Lookup    *lookup.Service
	Connector Connector
	Extractor *extract.Extractor
	Health    *health.Service

	History   *history.Service
	Scheduler *scheduler.Scheduler
	Traces    *diagnostics.Buffer
	Logs      LogsProvider
}

// Server handles HTTP requests for the seerlink API.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(deps Deps, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger.With().Str("component", "api").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	// The extension calls from arbitrary page origins.
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Debug()
			if v.Error != nil {
				event = s.logger.Warn().Err(v.Error)
			}
			event.
				Str("requestId", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	s.echo.Use(noStore)
}

// noStore disables caching of API responses; statuses change as downloads progress.
func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("X-Content-Type-Options", "nosniff")
		if strings.HasPrefix(c.Request().URL.Path, "/api") {
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		}
		return next(c)
	}
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")

	api.POST("/navigation", s.beginNavigation)
	api.POST("/status", s.resolveStatus)
	api.POST("/request", s.submitRequest)
	api.POST("/extract", s.extractPage)
	api.GET("/search/terms", s.searchTerms)
	api.POST("/debug/search", s.debugSearch)
	api.GET("/connection", s.testConnection)
	api.GET("/diagnostics", s.diagnostics)

	if s.deps.History != nil {
		history.NewHandlers(s.deps.History).RegisterRoutes(api.Group("/history"))
	}
	if s.deps.Scheduler != nil {
		NewTaskHandlers(s.deps.Scheduler).RegisterRoutes(api.Group("/tasks"))
	}
	if s.deps.Logs != nil {
		NewLogsHandlers(s.deps.Logs).RegisterRoutes(api.Group("/logs"))
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

type healthResponse struct {
	Status string          `json:"status"`
	Time   time.Time       `json:"time"`
	Health health.Snapshot `json:"health"`
}

// healthCheck always answers 200 while the process is up; dependency state is
// reported in the body.
func (s *Server) healthCheck(c echo.Context) error {
	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	if s.deps.Health != nil {
		resp.Health = s.deps.Health.Snapshot()
	}
	return c.JSON(http.StatusOK, resp)
}
