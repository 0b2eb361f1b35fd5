package domain

import "context"

// Prediction is a classifier's raw output in the model's own vocabulary.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Model maps one text to a raw prediction. Implementations may fail per call.
type Model interface {
	Predict(ctx context.Context, text string) (Prediction, error)
}

// Classifier maps one text to a canonical polarity and confidence in [0, 1].
// It is a Model combined with the label mapping for that model's vocabulary.
type Classifier interface {
	Classify(ctx context.Context, text string) (Polarity, float64, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (Polarity, float64, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (Polarity, float64, error) {
	return f(ctx, text)
}
