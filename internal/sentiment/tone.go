package sentiment

import "github.com/simonboegh/x-sentiment-tracker/internal/domain"

// Gauge thresholds: a mean score beyond ±0.1 (±10 on the count scale) is
// considered directional.
const (
	meanToneThreshold  = 0.1
	countToneThreshold = 10.0
)

// Tone buckets a result's net score into the polarity used for display.
func Tone(result domain.AggregateResult) domain.Polarity {
	threshold := meanToneThreshold
	if result.Mode == domain.ScoreCount {
		threshold = countToneThreshold
	}

	switch {
	case result.NetScore > threshold:
		return domain.Bullish
	case result.NetScore < -threshold:
		return domain.Bearish
	default:
		return domain.Neutral
	}
}
