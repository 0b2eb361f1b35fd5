package domain

import "context"

// EventPublisher publishes domain events to infrastructure.
type EventPublisher interface {
	PublishReport(ctx context.Context, event ReportEvent) error
}
