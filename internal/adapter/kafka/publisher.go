// Package kafka publishes report events to a Kafka topic, keyed by symbol so all
// reports for one symbol land on the same partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	topic  string
}

var _ domain.EventPublisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("brokers are required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		Compression:            kafkago.Gzip,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: writer, topic: topic}, nil
}

func (p *Publisher) PublishReport(ctx context.Context, event domain.ReportEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal report event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Report.Symbol),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "source", Value: []byte(event.Report.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
