package alpaca

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
)

type mockNewsClient struct {
	getNewsFn func(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

func (m *mockNewsClient) GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error) {
	return m.getNewsFn(req)
}

func TestFetch_RequestWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	var got marketdata.GetNewsRequest
	client := &mockNewsClient{getNewsFn: func(req marketdata.GetNewsRequest) ([]marketdata.News, error) {
		got = req
		return nil, nil
	}}

	src := NewSource(client, clockwork.NewFakeClockAt(now), 6*time.Hour, candidate.Filter{})
	texts, err := src.Fetch(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Empty(t, texts)

	assert.Equal(t, []string{"TSLA"}, got.Symbols)
	assert.Equal(t, now.Add(-6*time.Hour), got.Start)
	assert.Equal(t, now, got.End)
	assert.Equal(t, DefaultLimit, got.TotalLimit)
	assert.Equal(t, marketdata.SortDesc, got.Sort)
}

func TestFetch_DefaultLookback(t *testing.T) {
	src := NewSource(&mockNewsClient{}, clockwork.NewFakeClock(), 0, candidate.Filter{})
	assert.Equal(t, DefaultLookback, src.lookback)
}

func TestFetch_ArticleTexts(t *testing.T) {
	client := &mockNewsClient{getNewsFn: func(marketdata.GetNewsRequest) ([]marketdata.News, error) {
		return []marketdata.News{
			{Headline: "Tesla beats delivery estimates.", Summary: "Deliveries rose 20% year over year."},
			{Headline: "Tesla recalls vehicles"},
			{Summary: "Analysts cut price targets after the call."},
			{Headline: "TSLA"},
		}, nil
	}}

	src := NewSource(client, clockwork.NewFakeClock(), time.Hour, candidate.Filter{MinLength: 15})
	texts, err := src.Fetch(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Tesla beats delivery estimates. Deliveries rose 20% year over year.",
		"Tesla recalls vehicles",
		"Analysts cut price targets after the call.",
	}, texts)
}

func TestFetch_ClientError(t *testing.T) {
	boom := errors.New("forbidden")
	client := &mockNewsClient{getNewsFn: func(marketdata.GetNewsRequest) ([]marketdata.News, error) {
		return nil, boom
	}}

	_, err := NewSource(client, clockwork.NewFakeClock(), time.Hour, candidate.Filter{}).Fetch(context.Background(), "GME")
	assert.ErrorIs(t, err, boom)
}

func TestFetch_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	client := &mockNewsClient{getNewsFn: func(marketdata.GetNewsRequest) ([]marketdata.News, error) {
		<-release
		return nil, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(client, clockwork.NewFakeClock(), time.Hour, candidate.Filter{}).Fetch(ctx, "GME")
	assert.ErrorIs(t, err, context.Canceled)
}
