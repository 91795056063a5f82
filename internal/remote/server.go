package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/roach88/recap/internal/ir"
	"github.com/roach88/recap/internal/store"
)

// Backend is the store a Server exposes. Implemented by store.SQLite and
// store.Memory.
type Backend interface {
	Create(ctx context.Context, a ir.Artifact) error
	Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error)
	Get(ctx context.Context, id string) (ir.Artifact, error)
}

// Server handles artifact HTTP requests.
type Server struct {
	store  Backend
	logger *slog.Logger
}

// NewServer creates a server over s. A nil logger selects slog.Default().
func NewServer(s Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: s, logger: logger}
}

// RegisterRoutes registers routes with the echo server.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/artifacts", s.CreateArtifact)
	e.POST("/v1/artifacts/lookup", s.LookupArtifact)
	e.GET("/v1/artifacts/:id", s.GetArtifact)
	e.GET("/health", s.Health)
}

// Echo returns a configured echo instance with middleware and routes.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	s.RegisterRoutes(e)
	return e
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateArtifact stores one artifact.
// POST /v1/artifacts
func (s *Server) CreateArtifact(c echo.Context) error {
	ctx := c.Request().Context()

	var a ir.Artifact
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, ir.ErrMalformed) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		s.logger.Error("create artifact failed", "key", a.Key.Short(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create artifact"})
	}

	return c.JSON(http.StatusCreated, map[string]any{"ok": true, "id": a.ID})
}

// LookupArtifact returns the artifact matching a probe.
// POST /v1/artifacts/lookup
func (s *Server) LookupArtifact(c echo.Context) error {
	ctx := c.Request().Context()

	var probe ir.Probe
	if err := c.Bind(&probe); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if probe.Key == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "key is required"})
	}

	a, ok, err := s.store.Lookup(ctx, probe)
	if err != nil {
		s.logger.Error("lookup artifact failed", "key", probe.Key.Short(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to look up artifact"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no matching artifact"})
	}
	return c.JSON(http.StatusOK, a)
}

// GetArtifact returns one artifact by ID.
// GET /v1/artifacts/:id
func (s *Server) GetArtifact(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	a, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "artifact not found"})
	}
	if err != nil {
		s.logger.Error("get artifact failed", "id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get artifact"})
	}
	return c.JSON(http.StatusOK, a)
}

// Health returns health status.
// GET /health
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": ir.EngineVersion,
	})
}
