package eventpublisher

import (
	"context"
	"log/slog"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

// FailureRecorder counts publish failures per sink.
type FailureRecorder interface {
	PublishFailed(sink string)
}

type Sink struct {
	Name      string
	Publisher domain.EventPublisher
}

// EventPublisher implements domain.EventPublisher by fanning an event out to
// every configured sink. Sink failures are logged and counted, never returned.
type EventPublisher struct {
	sinks    []Sink
	recorder FailureRecorder
}

var _ domain.EventPublisher = (*EventPublisher)(nil)

func New(recorder FailureRecorder, sinks ...Sink) *EventPublisher {
	return &EventPublisher{sinks: sinks, recorder: recorder}
}

func (ep *EventPublisher) PublishReport(ctx context.Context, event domain.ReportEvent) error {
	for _, sink := range ep.sinks {
		if err := sink.Publisher.PublishReport(ctx, event); err != nil {
			slog.WarnContext(ctx, "Failed to publish report event",
				"sink", sink.Name, "event_id", event.ID, "symbol", event.Report.Symbol, "error", err)
			if ep.recorder != nil {
				ep.recorder.PublishFailed(sink.Name)
			}
		}
	}
	return nil
}

func (ep *EventPublisher) Len() int { return len(ep.sinks) }
