package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

type mockWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher(nil, "reports")
	assert.EqualError(t, err, "brokers are required")

	_, err = NewPublisher([]string{"localhost:9092"}, "")
	assert.EqualError(t, err, "topic is required")

	p, err := NewPublisher([]string{"localhost:9092"}, "reports")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestPublishReport_KeyedBySymbol(t *testing.T) {
	w := &mockWriter{}
	p := &Publisher{writer: w, topic: "reports"}

	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	event := domain.NewReportEvent(domain.Report{
		Symbol: "NVDA",
		Source: "stocktwits",
		Tone:   domain.Bearish,
		Result: domain.AggregateResult{NetScore: -0.4, Mode: domain.ScoreMean, Status: domain.StatusOK},
	}, now)

	require.NoError(t, p.PublishReport(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "NVDA", string(msg.Key))
	assert.Equal(t, now, msg.Time)
	assert.Equal(t, []kafkago.Header{
		{Key: "event_id", Value: []byte(event.ID.String())},
		{Key: "source", Value: []byte("stocktwits")},
	}, msg.Headers)

	var decoded domain.ReportEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.InDelta(t, -0.4, decoded.Report.Result.NetScore, 1e-9)
}

func TestPublishReport_WriteError(t *testing.T) {
	p := &Publisher{writer: &mockWriter{err: errors.New("leader not available")}, topic: "reports"}

	err := p.PublishReport(context.Background(), domain.ReportEvent{})
	assert.ErrorContains(t, err, "write to reports: leader not available")
}

func TestClose(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, (&Publisher{writer: w}).Close())
	assert.True(t, w.closed)
}
