package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

// ReportChannel carries every freshly computed report as JSON.
const ReportChannel = "sentiment:updated"

type Publisher struct {
	rdb goredis.Cmdable
}

var _ domain.EventPublisher = (*Publisher)(nil)

func NewPublisher(rdb goredis.Cmdable) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) PublishReport(ctx context.Context, event domain.ReportEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal report event: %w", err)
	}
	if err := p.rdb.Publish(ctx, ReportChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish report event: %w", err)
	}
	return nil
}
