package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

const previewLength = 120

type sentimentRequest struct {
	Symbol   string `param:"symbol" validate:"required,ticker"`
	Mode     string `query:"mode" validate:"omitempty,oneof=count mean"`
	Evidence int    `query:"evidence" default:"10" validate:"gte=0,lte=100"`
	Refresh  bool   `query:"refresh"`
}

type dashboardRequest struct {
	Mode string `query:"mode" validate:"omitempty,oneof=count mean"`
}

type exampleResponse struct {
	Text       string          `json:"text"`
	Preview    string          `json:"preview"`
	Label      domain.Polarity `json:"label"`
	Confidence float64         `json:"confidence"`
}

type reportResponse struct {
	Symbol      string             `json:"symbol"`
	Source      string             `json:"source"`
	Mode        domain.ScoringMode `json:"mode"`
	Status      string             `json:"status"`
	NetScore    float64            `json:"net_score"`
	Tone        domain.Polarity    `json:"tone"`
	Counts      domain.Counts      `json:"counts"`
	TopBullish  *exampleResponse   `json:"top_bullish_example,omitempty"`
	TopBearish  *exampleResponse   `json:"top_bearish_example,omitempty"`
	Evidence    []exampleResponse  `json:"evidence"`
	Skipped     int                `json:"skipped"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type dashboardEntryResponse struct {
	Symbol string          `json:"symbol"`
	Report *reportResponse `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type dashboardResponse struct {
	Mode    domain.ScoringMode       `json:"mode,omitempty"`
	Symbols []dashboardEntryResponse `json:"symbols"`
}

func (s *Server) registerSentimentRoutes() {
	api := s.echo.Group("/api")
	if s.config.APIRateLimit > 0 && s.config.APIRateBurst > 0 {
		api.Use(newRateLimiter(s.config.APIRateLimit, s.config.APIRateBurst))
	}
	api.GET("/sentiment/:symbol", s.handleSentiment)
	api.GET("/dashboard", s.handleDashboard)
}

func (s *Server) handleSentiment(c echo.Context) error {
	var req sentimentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	analyze := s.app.Analyze
	if req.Refresh {
		analyze = s.app.Refresh
	}
	report, err := analyze(c.Request().Context(), req.Symbol, domain.ScoringMode(req.Mode))
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, toReportResponse(report, req.Evidence)); err != nil {
		return fmt.Errorf("failed to write sentiment response: %w", err)
	}
	return nil
}

func (s *Server) handleDashboard(c echo.Context) error {
	var req dashboardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entries, err := s.app.Dashboard(c.Request().Context(), domain.ScoringMode(req.Mode))
	if err != nil {
		return err
	}

	resp := dashboardResponse{
		Symbols: make([]dashboardEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		row := dashboardEntryResponse{Symbol: entry.Symbol, Error: entry.Error}
		if entry.Report != nil {
			row.Report = toReportResponse(entry.Report, 0)
			resp.Mode = entry.Report.Result.Mode
		}
		resp.Symbols = append(resp.Symbols, row)
	}
	if resp.Mode == "" {
		resp.Mode = domain.ScoringMode(req.Mode)
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write dashboard response: %w", err)
	}
	return nil
}

// toReportResponse renders a report with at most evidence classified items.
func toReportResponse(r *domain.Report, evidence int) *reportResponse {
	res := r.Result
	resp := &reportResponse{
		Symbol:      r.Symbol,
		Source:      r.Source,
		Mode:        res.Mode,
		Status:      res.Status,
		NetScore:    res.NetScore,
		Tone:        r.Tone,
		Counts:      res.Counts,
		TopBullish:  toExample(res.TopBullish),
		TopBearish:  toExample(res.TopBearish),
		Evidence:    make([]exampleResponse, 0, min(evidence, len(res.Classified))),
		Skipped:     res.Skipped,
		GeneratedAt: r.GeneratedAt,
	}
	for _, cr := range res.Classified[:min(evidence, len(res.Classified))] {
		resp.Evidence = append(resp.Evidence, *toExample(&cr))
	}
	return resp
}

func toExample(cr *domain.ClassificationResult) *exampleResponse {
	if cr == nil {
		return nil
	}
	return &exampleResponse{
		Text:       cr.Text,
		Preview:    candidate.Truncate(cr.Text, previewLength),
		Label:      cr.Polarity,
		Confidence: cr.Confidence,
	}
}
