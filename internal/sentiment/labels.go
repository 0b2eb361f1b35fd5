package sentiment

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

// LabelMap translates a model's label vocabulary into canonical polarities.
// Keys are stored lower-case; lookups are case-insensitive.
type LabelMap map[string]domain.Polarity

// Label scheme names accepted by LabelScheme.
const (
	SchemeFinBERT  = "finbert"
	SchemeThreeWay = "three-way"
	SchemeTwoWay   = "two-way"
)

var schemes = map[string]LabelMap{
	SchemeFinBERT: {
		"positive": domain.Bullish,
		"negative": domain.Bearish,
		"neutral":  domain.Neutral,
		"bullish":  domain.Bullish,
		"bearish":  domain.Bearish,
	},
	SchemeThreeWay: {
		"label_0":  domain.Bearish,
		"label_1":  domain.Neutral,
		"label_2":  domain.Bullish,
		"negative": domain.Bearish,
		"neutral":  domain.Neutral,
		"positive": domain.Bullish,
	},
	SchemeTwoWay: {
		"label_0":  domain.Bearish,
		"label_1":  domain.Bullish,
		"negative": domain.Bearish,
		"positive": domain.Bullish,
	},
}

// LabelScheme returns a copy of the named preset.
func LabelScheme(name string) (LabelMap, error) {
	m, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown label scheme %q", name)
	}
	return maps.Clone(m), nil
}

// With returns a copy of m extended (and overridden) by extra.
func (m LabelMap) With(extra map[string]domain.Polarity) LabelMap {
	out := make(LabelMap, len(m)+len(extra))
	for label, p := range m {
		out[strings.ToLower(label)] = p
	}
	for label, p := range extra {
		out[strings.ToLower(strings.TrimSpace(label))] = p
	}
	return out
}

func (m LabelMap) Polarity(label string) (domain.Polarity, bool) {
	p, ok := m[strings.ToLower(strings.TrimSpace(label))]
	return p, ok
}

// Normalize combines a model with its label map into a Classifier. Unknown labels
// and scores outside [0, 1] are reported as per-item errors.
func Normalize(model domain.Model, labels LabelMap) domain.Classifier {
	return domain.ClassifierFunc(func(ctx context.Context, text string) (domain.Polarity, float64, error) {
		pred, err := model.Predict(ctx, text)
		if err != nil {
			return "", 0, err
		}

		polarity, ok := labels.Polarity(pred.Label)
		if !ok {
			return "", 0, fmt.Errorf("%w: %q", domain.ErrUnknownLabel, pred.Label)
		}
		if !validConfidence(pred.Score) {
			return "", 0, fmt.Errorf("%w: %v", domain.ErrInvalidScore, pred.Score)
		}
		return polarity, pred.Score, nil
	})
}
