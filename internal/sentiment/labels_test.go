package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	predictFn func(ctx context.Context, text string) (domain.Prediction, error)
}

func (m *fakeModel) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	return m.predictFn(ctx, text)
}

func predicting(label string, score float64) *fakeModel {
	return &fakeModel{predictFn: func(context.Context, string) (domain.Prediction, error) {
		return domain.Prediction{Label: label, Score: score}, nil
	}}
}

func TestLabelScheme_FinBERT(t *testing.T) {
	labels, err := LabelScheme(SchemeFinBERT)
	require.NoError(t, err)

	p, ok := labels.Polarity("Positive")
	assert.True(t, ok)
	assert.Equal(t, domain.Bullish, p)

	p, ok = labels.Polarity("negative")
	assert.True(t, ok)
	assert.Equal(t, domain.Bearish, p)

	p, ok = labels.Polarity(" Neutral ")
	assert.True(t, ok)
	assert.Equal(t, domain.Neutral, p)
}

func TestLabelScheme_GenericLabels(t *testing.T) {
	three, err := LabelScheme(SchemeThreeWay)
	require.NoError(t, err)
	two, err := LabelScheme(SchemeTwoWay)
	require.NoError(t, err)

	p, _ := three.Polarity("LABEL_0")
	assert.Equal(t, domain.Bearish, p)
	p, _ = three.Polarity("LABEL_1")
	assert.Equal(t, domain.Neutral, p)
	p, _ = three.Polarity("LABEL_2")
	assert.Equal(t, domain.Bullish, p)

	p, _ = two.Polarity("LABEL_1")
	assert.Equal(t, domain.Bullish, p)
	_, ok := two.Polarity("LABEL_2")
	assert.False(t, ok)
}

func TestLabelScheme_Unknown(t *testing.T) {
	_, err := LabelScheme("five-star")
	assert.EqualError(t, err, `unknown label scheme "five-star"`)
}

func TestLabelScheme_ReturnsCopy(t *testing.T) {
	labels, err := LabelScheme(SchemeFinBERT)
	require.NoError(t, err)
	labels["positive"] = domain.Bearish

	fresh, err := LabelScheme(SchemeFinBERT)
	require.NoError(t, err)
	p, _ := fresh.Polarity("positive")
	assert.Equal(t, domain.Bullish, p)
}

func TestLabelMap_With(t *testing.T) {
	base, err := LabelScheme(SchemeTwoWay)
	require.NoError(t, err)

	merged := base.With(map[string]domain.Polarity{"Moon": domain.Bullish, "LABEL_1": domain.Neutral})

	p, ok := merged.Polarity("moon")
	assert.True(t, ok)
	assert.Equal(t, domain.Bullish, p)
	p, _ = merged.Polarity("label_1")
	assert.Equal(t, domain.Neutral, p)

	p, _ = base.Polarity("label_1")
	assert.Equal(t, domain.Bullish, p, "base map is untouched")
}

func TestNormalize_MapsLabel(t *testing.T) {
	labels, _ := LabelScheme(SchemeFinBERT)
	clf := Normalize(predicting("Negative", 0.83), labels)

	p, conf, err := clf.Classify(context.Background(), "sell everything")
	require.NoError(t, err)
	assert.Equal(t, domain.Bearish, p)
	assert.Equal(t, 0.83, conf)
}

func TestNormalize_UnknownLabel(t *testing.T) {
	labels, _ := LabelScheme(SchemeFinBERT)
	clf := Normalize(predicting("LABEL_7", 0.5), labels)

	_, _, err := clf.Classify(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrUnknownLabel)
}

func TestNormalize_InvalidScore(t *testing.T) {
	labels, _ := LabelScheme(SchemeFinBERT)
	clf := Normalize(predicting("positive", 1.2), labels)

	_, _, err := clf.Classify(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrInvalidScore)
}

func TestNormalize_PropagatesModelError(t *testing.T) {
	modelErr := errors.New("inference timeout")
	labels, _ := LabelScheme(SchemeFinBERT)
	clf := Normalize(&fakeModel{predictFn: func(context.Context, string) (domain.Prediction, error) {
		return domain.Prediction{}, modelErr
	}}, labels)

	_, _, err := clf.Classify(context.Background(), "text")
	assert.ErrorIs(t, err, modelErr)
}

func TestNormalize_FeedsAggregate(t *testing.T) {
	labels, _ := LabelScheme(SchemeThreeWay)
	model := &fakeModel{predictFn: func(_ context.Context, text string) (domain.Prediction, error) {
		switch text {
		case "to the moon":
			return domain.Prediction{Label: "LABEL_2", Score: 0.9}, nil
		case "bagholder":
			return domain.Prediction{Label: "LABEL_0", Score: 0.7}, nil
		default:
			return domain.Prediction{Label: "LABEL_9", Score: 0.5}, nil
		}
	}}

	result := Aggregate(context.Background(), []string{"to the moon", "bagholder", "???"}, Normalize(model, labels), domain.ScoreMean)

	assert.Equal(t, domain.Counts{Bullish: 1, Bearish: 1, Total: 2}, result.Counts)
	assert.Equal(t, 1, result.Skipped)
	assert.InDelta(t, 0.1, result.NetScore, 1e-9)
}
