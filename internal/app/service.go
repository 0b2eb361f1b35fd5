package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
	"github.com/simonboegh/x-sentiment-tracker/internal/platform/correlation"
	apperrors "github.com/simonboegh/x-sentiment-tracker/internal/platform/errors"
	"github.com/simonboegh/x-sentiment-tracker/internal/sentiment"
)

const dashboardConcurrency = 4

// Recorder receives per-analysis observations. Implemented by the metrics adapter.
type Recorder interface {
	ObserveReport(report domain.Report, d time.Duration)
	FetchFailed(source string)
}

type Settings struct {
	Mode         domain.ScoringMode
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	WatchList    []string
}

// Service is the application layer. It is the only component that references
// multiple domain components.
type Service struct {
	source     domain.TextSource
	classifier domain.Classifier
	cache      domain.ResultCache
	publisher  domain.EventPublisher
	recorder   Recorder
	clock      clockwork.Clock
	settings   Settings
}

// NewService creates the application layer service.
// publisher and recorder may be nil.
func NewService(source domain.TextSource, classifier domain.Classifier, cache domain.ResultCache, publisher domain.EventPublisher, recorder Recorder, clock clockwork.Clock, settings Settings) *Service {
	if _, ok := domain.ParseScoringMode(string(settings.Mode)); !ok {
		settings.Mode = domain.ScoreMean
	}
	return &Service{
		source:     source,
		classifier: classifier,
		cache:      cache,
		publisher:  publisher,
		recorder:   recorder,
		clock:      clock,
		settings:   settings,
	}
}

func (s *Service) WatchList() []string {
	return append([]string(nil), s.settings.WatchList...)
}

// Analyze returns the report for symbol in the given scoring mode, serving it
// from cache within the TTL. An empty mode selects the configured default.
// Fresh reports are published as events.
func (s *Service) Analyze(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error) {
	return s.analyze(ctx, symbol, mode, false)
}

// Refresh drops any cached report for symbol and mode before analysing it again.
func (s *Service) Refresh(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error) {
	return s.analyze(ctx, symbol, mode, true)
}

func (s *Service) analyze(ctx context.Context, symbol string, mode domain.ScoringMode, refresh bool) (*domain.Report, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.ValidationError("symbol is required")
	}
	mode, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}

	if _, ok := correlation.ID(ctx); !ok {
		ctx = correlation.WithID(ctx, correlation.NewID())
	}
	ctx = correlation.WithSymbol(ctx, symbol)

	key := symbol + "|" + string(mode)
	if refresh {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			slog.WarnContext(ctx, "Failed to invalidate cached report", "key", key, "error", err)
		}
	}

	report, hit, err := s.cache.GetOrCompute(ctx, key, s.settings.CacheTTL, func(ctx context.Context) (*domain.Report, error) {
		return s.compute(ctx, symbol, mode)
	})
	if err != nil {
		return nil, err
	}

	if !hit && s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, domain.NewReportEvent(*report, s.clock.Now())); err != nil {
			slog.WarnContext(ctx, "Failed to publish report event", "error", err)
		}
	}
	return report, nil
}

// DashboardEntry is one watchlist row. Exactly one of Report and Error is set.
type DashboardEntry struct {
	Symbol string
	Report *domain.Report
	Error  string
}

// Dashboard analyses every watchlist symbol concurrently. A failure for one
// symbol is reported in its entry and does not affect the others.
func (s *Service) Dashboard(ctx context.Context, mode domain.ScoringMode) ([]DashboardEntry, error) {
	mode, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}

	entries := make([]DashboardEntry, len(s.settings.WatchList))
	var g errgroup.Group
	g.SetLimit(dashboardConcurrency)

	for i, symbol := range s.settings.WatchList {
		g.Go(func() error {
			entries[i].Symbol = symbol
			report, err := s.Analyze(ctx, symbol, mode)
			if err != nil {
				entries[i].Error = apperrors.AsStructuredError(err).Message
				return nil
			}
			entries[i].Report = report
			return nil
		})
	}
	_ = g.Wait()

	return entries, nil
}

func (s *Service) resolveMode(mode domain.ScoringMode) (domain.ScoringMode, error) {
	if mode == "" {
		return s.settings.Mode, nil
	}
	parsed, ok := domain.ParseScoringMode(string(mode))
	if !ok {
		return "", apperrors.ValidationError("mode must be count or mean").WithField("mode", string(mode))
	}
	return parsed, nil
}

func (s *Service) compute(ctx context.Context, symbol string, mode domain.ScoringMode) (*domain.Report, error) {
	start := s.clock.Now()
	sourceName := s.source.Name()

	fetchCtx, cancel := context.WithTimeout(ctx, s.settings.FetchTimeout)
	texts, err := s.source.Fetch(fetchCtx, symbol)
	cancel()
	if err != nil {
		if s.recorder != nil {
			s.recorder.FetchFailed(sourceName)
		}
		slog.WarnContext(ctx, "Text source fetch failed", "source", sourceName, "error", err)
		return nil, sourceError(symbol, sourceName, err)
	}

	result := sentiment.Aggregate(ctx, texts, s.classifier, mode)
	// A context that ended mid-classification fails every item; that outcome
	// says nothing about the symbol and must not be cached.
	if err := ctx.Err(); err != nil {
		return nil, abortedError(symbol, err)
	}
	report := &domain.Report{
		Symbol:      symbol,
		Source:      sourceName,
		Tone:        sentiment.Tone(result),
		Result:      result,
		GeneratedAt: s.clock.Now(),
	}

	if s.recorder != nil {
		s.recorder.ObserveReport(*report, s.clock.Since(start))
	}
	slog.InfoContext(ctx, "Analysis complete",
		"source", sourceName,
		"mode", string(mode),
		"status", result.Status,
		"net_score", result.NetScore,
		"classified", result.Counts.Total,
		"skipped", result.Skipped,
	)
	return report, nil
}

func sourceError(symbol, sourceName string, err error) error {
	cause := fmt.Errorf("%w: %w", domain.ErrSourceFailed, err)
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError(fmt.Sprintf("%s fetch for %s timed out", sourceName, symbol), cause).
			WithField("symbol", symbol).WithField("source", sourceName)
	}
	return apperrors.ExternalError(fmt.Sprintf("%s fetch for %s failed", sourceName, symbol), cause).
		WithField("symbol", symbol).WithField("source", sourceName)
}

func abortedError(symbol string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError(fmt.Sprintf("analysis for %s timed out", symbol), err).
			WithField("symbol", symbol)
	}
	return apperrors.InternalError(fmt.Sprintf("analysis for %s was cancelled", symbol), err).
		WithField("symbol", symbol)
}
