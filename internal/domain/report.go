package domain

import (
	"time"

	"github.com/google/uuid"
)

// Report is an aggregation result for one symbol together with where and when it
// was produced.
type Report struct {
	Symbol      string          `json:"symbol"`
	Source      string          `json:"source"`
	Tone        Polarity        `json:"tone"`
	Result      AggregateResult `json:"result"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// ReportEvent is published whenever a report is freshly computed.
type ReportEvent struct {
	ID         uuid.UUID `json:"id"`
	Report     Report    `json:"report"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewReportEvent(report Report, now time.Time) ReportEvent {
	return ReportEvent{
		ID:         uuid.New(),
		Report:     report,
		OccurredAt: now,
	}
}
