// Package reddit fetches subreddit comments that mention a ticker from a
// Pushshift-compatible comment search API.
package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
)

const (
	DefaultSubreddit = "wallstreetbets"
	DefaultFetchSize = 30
)

type jsonGetter interface {
	GetJSON(ctx context.Context, url string, out any) error
}

type searchResponse struct {
	Data []comment `json:"data"`
}

type comment struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
}

type Source struct {
	client    jsonGetter
	baseURL   string
	subreddit string
	size      int
	filter    candidate.Filter
}

type Option func(*Source)

func WithSubreddit(name string) Option {
	return func(s *Source) {
		if name != "" {
			s.subreddit = name
		}
	}
}

// WithFetchSize sets how many comments are requested before filtering.
func WithFetchSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.size = n
		}
	}
}

func NewSource(client jsonGetter, baseURL string, filter candidate.Filter, opts ...Option) *Source {
	s := &Source{
		client:    client,
		baseURL:   baseURL,
		subreddit: DefaultSubreddit,
		size:      DefaultFetchSize,
		filter:    filter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return "reddit" }

// Fetch searches for "$SYMBOL" in the configured subreddit and returns the filtered
// comment bodies in the order the API returned them.
func (s *Source) Fetch(ctx context.Context, symbol string) ([]string, error) {
	q := url.Values{}
	q.Set("q", "$"+symbol)
	q.Set("subreddit", s.subreddit)
	q.Set("size", strconv.Itoa(s.size))

	var resp searchResponse
	if err := s.client.GetJSON(ctx, s.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("reddit search %s: %w", symbol, err)
	}

	bodies := make([]string, 0, len(resp.Data))
	for _, c := range resp.Data {
		bodies = append(bodies, c.Body)
	}
	return s.filter.Apply(symbol, bodies), nil
}
