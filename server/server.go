// Package server wires the HTTP surface together.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/plugin/ai"
	apiv1 "github.com/mvpforge/mvpforge/server/router/api/v1"
	"github.com/mvpforge/mvpforge/store"
)

// Server is the mvpforge HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

// NewServer creates the server and registers all routes.
func NewServer(_ context.Context, p *profile.Profile, s *store.Store) (*Server, error) {
	e := echo.New()
	e.Debug = p.IsDev()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.OPTIONS},
	}))
	e.Use(echomw.Recover())
	e.Use(requestLogger())

	var generator *ai.Generator
	if p.IsLLMEnabled() {
		llmService, err := ai.NewLLMService(ai.NewConfigFromProfile(p))
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM service: %w", err)
		}
		generator = ai.NewGenerator(llmService, 4)
		slog.Info("LLM generation enabled", "model", p.LLMModel)
	} else {
		// Generation requests still succeed; every stage falls back to its
		// static default artifact.
		generator = ai.NewGenerator(nil, 4)
		slog.Warn("no LLM API key configured, stage generation serves fallback artifacts")
	}

	apiService := apiv1.NewAPIV1Service(p, s, generator)
	apiService.RegisterRoutes(e)

	return &Server{
		Profile:    p,
		Store:      s,
		echoServer: e,
		apiService: apiService,
	}, nil
}

// Start begins serving on the profile's address and port. It blocks until
// the listener fails or Shutdown is called.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

// Shutdown gracefully stops the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}

// requestLogger logs one line per request with slog.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				slog.Warn("http request", attrs...)
			} else {
				slog.Info("http request", attrs...)
			}
			return nil
		},
	})
}
