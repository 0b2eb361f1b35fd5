package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simonboegh/x-sentiment-tracker/internal/app"
	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
	"github.com/simonboegh/x-sentiment-tracker/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	analyzeFn   func(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error)
	refreshFn   func(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error)
	dashboardFn func(ctx context.Context, mode domain.ScoringMode) ([]app.DashboardEntry, error)
}

func (m *mockAppService) Analyze(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, symbol, mode)
	}
	return testReport(symbol, domain.ScoreMean), nil
}

func (m *mockAppService) Refresh(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, symbol, mode)
	}
	return testReport(symbol, domain.ScoreMean), nil
}

func (m *mockAppService) Dashboard(ctx context.Context, mode domain.ScoringMode) ([]app.DashboardEntry, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx, mode)
	}
	return nil, nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo:   echo.New(),
		config: &config.Config{APIRateLimit: 100, APIRateBurst: 100},
		app:    app,
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withUpstreamChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.upstreamChecks = checks
	}
}

func withConfig(cfg *config.Config) func(*Server) {
	return func(s *Server) {
		s.config = cfg
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

func testReport(symbol string, mode domain.ScoringMode) *domain.Report {
	bull := domain.ClassificationResult{Text: "$" + symbol + " to the moon, loading calls", Polarity: domain.Bullish, Confidence: 0.9}
	bear := domain.ClassificationResult{Text: "$" + symbol + " puts printing, this is going to crash", Polarity: domain.Bearish, Confidence: 0.7}
	return &domain.Report{
		Symbol: symbol,
		Source: "static",
		Tone:   domain.Bullish,
		Result: domain.AggregateResult{
			NetScore:   0.1,
			Mode:       mode,
			Counts:     domain.Counts{Bullish: 1, Bearish: 1, Total: 2},
			TopBullish: &bull,
			TopBearish: &bear,
			Classified: []domain.ClassificationResult{bull, bear},
			Status:     domain.StatusOK,
		},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
