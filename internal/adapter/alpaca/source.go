// Package alpaca turns Alpaca market-data news for a symbol into candidate texts.
package alpaca

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/jonboulle/clockwork"

	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
)

const (
	DefaultLookback = 24 * time.Hour
	DefaultLimit    = 50
)

type newsClient interface {
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

// NewClient builds the market-data client used by Source.
func NewClient(apiKey, apiSecret string) *marketdata.Client {
	return marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
}

type Source struct {
	client   newsClient
	clock    clockwork.Clock
	lookback time.Duration
	limit    int
	filter   candidate.Filter
}

func NewSource(client newsClient, clock clockwork.Clock, lookback time.Duration, filter candidate.Filter) *Source {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Source{
		client:   client,
		clock:    clock,
		lookback: lookback,
		limit:    DefaultLimit,
		filter:   filter,
	}
}

func (s *Source) Name() string { return "alpaca" }

// Fetch returns "headline. summary" for each article in the look-back window,
// newest first. The market-data client has no context support, so a cancelled ctx
// abandons the call rather than aborting it.
func (s *Source) Fetch(ctx context.Context, symbol string) ([]string, error) {
	end := s.clock.Now()
	req := marketdata.GetNewsRequest{
		Symbols:    []string{symbol},
		Start:      end.Add(-s.lookback),
		End:        end,
		TotalLimit: s.limit,
		Sort:       marketdata.SortDesc,
	}

	type result struct {
		news []marketdata.News
		err  error
	}
	done := make(chan result, 1)
	go func() {
		news, err := s.client.GetNews(req)
		done <- result{news: news, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("alpaca news %s: %w", symbol, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("alpaca news %s: %w", symbol, res.err)
	}

	texts := make([]string, 0, len(res.news))
	for _, n := range res.news {
		texts = append(texts, articleText(n))
	}
	return s.filter.Apply(symbol, texts), nil
}

func articleText(n marketdata.News) string {
	headline := strings.TrimSpace(n.Headline)
	summary := strings.TrimSpace(n.Summary)
	switch {
	case summary == "":
		return headline
	case headline == "":
		return summary
	}
	return strings.TrimRight(headline, ".!?") + ". " + summary
}
