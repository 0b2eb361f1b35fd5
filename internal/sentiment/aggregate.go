package sentiment

import (
	"context"
	"math"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

// Aggregate classifies texts in input order and folds the successful results into
// an AggregateResult. Classification failures skip the item; they never abort the
// batch. An empty batch or a batch where every item failed is reported through
// Status, not as an error.
//
// Any mode other than domain.ScoreCount scores with domain.ScoreMean.
func Aggregate(ctx context.Context, texts []string, classifier domain.Classifier, mode domain.ScoringMode) domain.AggregateResult {
	if classifier == nil {
		panic("sentiment: Aggregate called with nil classifier")
	}
	if mode != domain.ScoreCount {
		mode = domain.ScoreMean
	}

	result := domain.AggregateResult{
		Mode:       mode,
		Classified: []domain.ClassificationResult{},
	}

	if len(texts) == 0 {
		result.Status = domain.StatusNoCandidates
		return result
	}

	topBullish, topBearish := -1, -1
	for _, text := range texts {
		polarity, confidence, err := classifier.Classify(ctx, text)
		if err != nil || !polarity.Valid() || !validConfidence(confidence) {
			result.Skipped++
			continue
		}

		idx := len(result.Classified)
		result.Classified = append(result.Classified, domain.ClassificationResult{
			Text:       text,
			Polarity:   polarity,
			Confidence: confidence,
		})

		switch polarity {
		case domain.Bullish:
			result.Counts.Bullish++
			if topBullish < 0 || confidence > result.Classified[topBullish].Confidence {
				topBullish = idx
			}
		case domain.Bearish:
			result.Counts.Bearish++
			if topBearish < 0 || confidence > result.Classified[topBearish].Confidence {
				topBearish = idx
			}
		case domain.Neutral:
			result.Counts.Neutral++
		}
	}

	if len(result.Classified) == 0 {
		result.Status = domain.StatusClassificationFailed
		return result
	}

	result.Counts.Total = result.Counts.Bullish + result.Counts.Bearish + result.Counts.Neutral
	result.NetScore = netScore(result.Classified, result.Counts, mode)

	if topBullish >= 0 {
		example := result.Classified[topBullish]
		result.TopBullish = &example
	}
	if topBearish >= 0 {
		example := result.Classified[topBearish]
		result.TopBearish = &example
	}

	result.Status = domain.StatusOK
	return result
}

func netScore(classified []domain.ClassificationResult, counts domain.Counts, mode domain.ScoringMode) float64 {
	polar := counts.Bullish + counts.Bearish
	if polar == 0 {
		return 0
	}

	if mode == domain.ScoreCount {
		return math.Round(100 * float64(counts.Bullish-counts.Bearish) / float64(polar))
	}

	var sum float64
	for _, c := range classified {
		switch c.Polarity {
		case domain.Bullish:
			sum += c.Confidence
		case domain.Bearish:
			sum -= c.Confidence
		}
	}
	return sum / float64(polar)
}

func validConfidence(confidence float64) bool {
	return !math.IsNaN(confidence) && confidence >= 0 && confidence <= 1
}
