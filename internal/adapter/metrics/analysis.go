package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

// AnalysisMetrics covers the fetch, classify and aggregate pipeline.
type AnalysisMetrics struct {
	Analyses        *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	Classifications *prometheus.CounterVec
	Skipped         prometheus.Counter
	NetScore        *prometheus.GaugeVec
	FetchErrors     *prometheus.CounterVec
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of completed analyses, by aggregation status.",
		}, []string{"status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of one fetch and classify run in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"source"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Total number of classified texts, by polarity.",
		}, []string{"polarity"}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_skipped_total",
			Help:      "Total number of texts dropped because classification failed.",
		}),
		NetScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "net_score",
			Help:      "Most recent net score per symbol and scoring mode.",
		}, []string{"symbol", "mode"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total number of failed text source fetches, by source.",
		}, []string{"source"}),
	}

	reg.MustRegister(m.Analyses, m.Duration, m.Classifications, m.Skipped, m.NetScore, m.FetchErrors)
	return m
}

func (m *AnalysisMetrics) ObserveReport(report domain.Report, d time.Duration) {
	r := report.Result
	m.Analyses.WithLabelValues(r.Status).Inc()
	m.Duration.WithLabelValues(report.Source).Observe(d.Seconds())
	m.Classifications.WithLabelValues(string(domain.Bullish)).Add(float64(r.Counts.Bullish))
	m.Classifications.WithLabelValues(string(domain.Bearish)).Add(float64(r.Counts.Bearish))
	m.Classifications.WithLabelValues(string(domain.Neutral)).Add(float64(r.Counts.Neutral))
	m.Skipped.Add(float64(r.Skipped))
	m.NetScore.WithLabelValues(report.Symbol, string(r.Mode)).Set(r.NetScore)
}

func (m *AnalysisMetrics) FetchFailed(source string) {
	m.FetchErrors.WithLabelValues(source).Inc()
}
