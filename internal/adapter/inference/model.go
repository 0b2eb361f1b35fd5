// Package inference calls a hosted text-classification endpoint that speaks the
// Hugging Face inference request and response shapes.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

const DefaultMaxInput = 512

type jsonPoster interface {
	PostJSON(ctx context.Context, url string, in, out any) error
}

type request struct {
	Inputs string `json:"inputs"`
}

type Model struct {
	client   jsonPoster
	url      string
	maxInput int
}

func NewModel(client jsonPoster, url string, maxInput int) *Model {
	if maxInput <= 0 {
		maxInput = DefaultMaxInput
	}
	return &Model{client: client, url: url, maxInput: maxInput}
}

// Predict returns the highest-scoring label for text. Input longer than the
// configured cap is cut to that many characters before sending.
func (m *Model) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	var raw json.RawMessage
	if err := m.client.PostJSON(ctx, m.url, request{Inputs: truncate(text, m.maxInput)}, &raw); err != nil {
		return domain.Prediction{}, fmt.Errorf("inference: %w", err)
	}

	preds, err := decodePredictions(raw)
	if err != nil {
		return domain.Prediction{}, err
	}
	return best(preds)
}

// decodePredictions accepts both [[{label,score}...]] and [{label,score}...].
func decodePredictions(raw json.RawMessage) ([]domain.Prediction, error) {
	var nested [][]domain.Prediction
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []domain.Prediction
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("inference: unexpected response %s", snippet(raw))
	}
	return flat, nil
}

func best(preds []domain.Prediction) (domain.Prediction, error) {
	if len(preds) == 0 {
		return domain.Prediction{}, domain.ErrEmptyPrediction
	}
	top := preds[0]
	for _, p := range preds[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	return top, nil
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func snippet(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}
