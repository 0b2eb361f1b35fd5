package domain

// Polarity is the canonical three-way sentiment vocabulary used for aggregation.
type Polarity string

const (
	Bullish Polarity = "bullish"
	Bearish Polarity = "bearish"
	Neutral Polarity = "neutral"
)

func (p Polarity) Valid() bool {
	switch p {
	case Bullish, Bearish, Neutral:
		return true
	}
	return false
}

// ScoringMode selects how the net score is derived from a batch.
type ScoringMode string

const (
	// ScoreCount is round(100 * (bullish - bearish) / (bullish + bearish)), range [-100, 100].
	ScoreCount ScoringMode = "count"
	// ScoreMean is the mean of signed confidences over polar items, range [-1, 1].
	ScoreMean ScoringMode = "mean"
)

func ParseScoringMode(s string) (ScoringMode, bool) {
	switch ScoringMode(s) {
	case ScoreCount:
		return ScoreCount, true
	case ScoreMean:
		return ScoreMean, true
	}
	return "", false
}

// Aggregation outcomes reported through AggregateResult.Status.
const (
	StatusOK                   = "ok"
	StatusNoCandidates         = "no candidates found"
	StatusClassificationFailed = "classification failed"
)

// ClassificationResult is one successfully classified candidate text.
type ClassificationResult struct {
	Text       string   `json:"text"`
	Polarity   Polarity `json:"label"`
	Confidence float64  `json:"confidence"`
}

type Counts struct {
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Neutral int `json:"neutral"`
	Total   int `json:"total"`
}

// AggregateResult is the output of one aggregation over a batch of candidate texts.
type AggregateResult struct {
	NetScore   float64                `json:"net_score"`
	Mode       ScoringMode            `json:"mode"`
	Counts     Counts                 `json:"counts"`
	TopBullish *ClassificationResult  `json:"top_bullish_example,omitempty"`
	TopBearish *ClassificationResult  `json:"top_bearish_example,omitempty"`
	Classified []ClassificationResult `json:"classified"`
	Skipped    int                    `json:"skipped"`
	Status     string                 `json:"status"`
}

func (r AggregateResult) OK() bool {
	return r.Status == StatusOK
}
