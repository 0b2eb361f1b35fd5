package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/metrics"
	"github.com/simonboegh/x-sentiment-tracker/internal/app"
	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
	"github.com/simonboegh/x-sentiment-tracker/internal/platform/config"
)

type appService interface {
	Analyze(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error)
	Refresh(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error)
	Dashboard(ctx context.Context, mode domain.ScoringMode) ([]app.DashboardEntry, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app            appService
	healthChecks   []HealthCheck
	upstreamChecks []HealthCheck
	metricsHandler http.Handler
	httpMetrics    *metrics.HTTPMetrics
	startTime      time.Time
}

// NewServer wires routes and middleware. healthChecks gate readiness; upstreamChecks
// are only reported. metricsHandler and httpMetrics may be nil.
func NewServer(cfg *config.Config, app appService, healthChecks, upstreamChecks []HealthCheck, metricsHandler http.Handler, httpMetrics *metrics.HTTPMetrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		healthChecks:   healthChecks,
		upstreamChecks: upstreamChecks,
		metricsHandler: metricsHandler,
		httpMetrics:    httpMetrics,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
