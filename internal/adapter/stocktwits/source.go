// Package stocktwits reads the public StockTwits message stream for a symbol.
package stocktwits

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
)

type jsonGetter interface {
	GetJSON(ctx context.Context, url string, out any) error
}

type streamResponse struct {
	Response struct {
		Status int `json:"status"`
	} `json:"response"`
	Messages []message `json:"messages"`
}

type message struct {
	ID        int    `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Username string `json:"username"`
	} `json:"user"`
}

type Source struct {
	client  jsonGetter
	baseURL string
	filter  candidate.Filter
}

func NewSource(client jsonGetter, baseURL string, filter candidate.Filter) *Source {
	return &Source{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		filter:  filter,
	}
}

func (s *Source) Name() string { return "stocktwits" }

// Fetch reads one page (about 30 messages, newest first) of the symbol stream.
func (s *Source) Fetch(ctx context.Context, symbol string) ([]string, error) {
	u := s.baseURL + "/" + url.PathEscape(symbol) + ".json"

	var resp streamResponse
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("stocktwits stream %s: %w", symbol, err)
	}
	if resp.Response.Status != 0 && resp.Response.Status != http.StatusOK {
		return nil, fmt.Errorf("stocktwits stream %s: status %d", symbol, resp.Response.Status)
	}

	bodies := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		bodies = append(bodies, html.UnescapeString(m.Body))
	}
	return s.filter.Apply(symbol, bodies), nil
}
