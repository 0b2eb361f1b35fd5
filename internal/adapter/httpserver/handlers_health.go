package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/simonboegh/x-sentiment-tracker/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
	upstreamProbeTimeout  = 2 * time.Second

	checkOK = "ok"
)

// HealthCheck is a named health check function.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// healthReport lists every check by name with "ok" or its error text.
type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Failed []string          `json:"failed_checks,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/health/upstreams", s.handleUpstreams)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()

	return s.writeProbe(c, runChecks(ctx, s.healthChecks))
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()

	response := map[string]any{
		"status": "ok",
		"uptime": uptime,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}

	return nil
}

// handleReadiness gates on local dependencies only. An open upstream breaker
// degrades single requests, not the instance.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	return s.writeProbe(c, runChecks(ctx, s.healthChecks))
}

// handleUpstreams reports text source and classifier breaker state. It always
// answers 200; "degraded" means at least one upstream is failing fast.
func (s *Server) handleUpstreams(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), upstreamProbeTimeout)
	defer cancel()

	report := runChecks(ctx, s.upstreamChecks)
	report.Status = "ok"
	if len(report.Failed) > 0 {
		report.Status = "degraded"
	}

	if err := c.JSON(http.StatusOK, report); err != nil {
		return fmt.Errorf("failed to write upstream health response: %w", err)
	}
	return nil
}

func (s *Server) writeProbe(c echo.Context, report healthReport) error {
	status := http.StatusOK
	report.Status = "ready"
	if len(report.Failed) > 0 {
		status = http.StatusServiceUnavailable
		report.Status = "unhealthy"
	}

	if err := c.JSON(status, report); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// runChecks runs all checks concurrently. Failed names keep registration order.
func runChecks(ctx context.Context, checks []HealthCheck) healthReport {
	results := make([]error, len(checks))

	var g errgroup.Group
	for i, hc := range checks {
		g.Go(func() error {
			results[i] = hc.Check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	report := healthReport{}
	if len(checks) > 0 {
		report.Checks = make(map[string]string, len(checks))
	}
	for i, hc := range checks {
		if results[i] != nil {
			report.Checks[hc.Name] = results[i].Error()
			report.Failed = append(report.Failed, hc.Name)
			continue
		}
		report.Checks[hc.Name] = checkOK
	}
	return report
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
