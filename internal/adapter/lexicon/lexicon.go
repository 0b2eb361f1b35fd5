// Package lexicon is an offline keyword classifier. It is a rough stand-in for a
// trained model when no inference endpoint is configured.
package lexicon

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

var (
	DefaultBullish = []string{"moon", "calls", "buy", "bull", "rocket", "squeeze", "breakout", "undervalued", "beat", "rally", "long"}
	DefaultBearish = []string{"puts", "sell", "short", "bear", "crash", "dump", "overvalued", "bagholder", "miss", "dead", "drop"}
)

// File is the YAML lexicon file. Labels extends the active label scheme with
// extra model label to polarity entries.
type File struct {
	Bullish []string          `yaml:"bullish"`
	Bearish []string          `yaml:"bearish"`
	Labels  map[string]string `yaml:"labels"`
}

func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

func Parse(r io.Reader) (*File, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	return &file, nil
}

// ExtraLabels validates and returns the label overrides.
func (f *File) ExtraLabels() (map[string]domain.Polarity, error) {
	out := make(map[string]domain.Polarity, len(f.Labels))
	for label, value := range f.Labels {
		p := domain.Polarity(strings.ToLower(strings.TrimSpace(value)))
		if !p.Valid() {
			return nil, fmt.Errorf("lexicon label %q: invalid polarity %q", label, value)
		}
		out[label] = p
	}
	return out, nil
}

// Model matches case-insensitive substrings. Its labels are the canonical
// polarity names, so it pairs with any scheme that maps bullish/bearish/neutral.
type Model struct {
	bullish []string
	bearish []string
}

// NewModel builds a model from f, falling back to the default term list for any
// side f leaves empty. A nil f uses both defaults.
func NewModel(f *File) *Model {
	m := &Model{bullish: DefaultBullish, bearish: DefaultBearish}
	if f != nil {
		if terms := normalize(f.Bullish); len(terms) > 0 {
			m.bullish = terms
		}
		if terms := normalize(f.Bearish); len(terms) > 0 {
			m.bearish = terms
		}
	}
	return m
}

// Predict counts matched terms per side. Bullish wins ties. Confidence is the
// winning side's share of all matches, so it never drops below 0.5.
func (m *Model) Predict(_ context.Context, text string) (domain.Prediction, error) {
	lower := strings.ToLower(text)
	bull := countMatches(lower, m.bullish)
	bear := countMatches(lower, m.bearish)

	switch {
	case bull == 0 && bear == 0:
		return domain.Prediction{Label: string(domain.Neutral), Score: 0.5}, nil
	case bull >= bear:
		return domain.Prediction{Label: string(domain.Bullish), Score: float64(bull) / float64(bull+bear)}, nil
	default:
		return domain.Prediction{Label: string(domain.Bearish), Score: float64(bear) / float64(bull+bear)}, nil
	}
}

func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

func normalize(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
