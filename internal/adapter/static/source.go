// Package static serves fixture texts from a YAML file for offline and demo runs.
//
// The file maps a symbol to its texts:
//
//	GME:
//	  - "GME squeeze is not over, buying more"
//	  - "Bagholding GME since January"
package static

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
)

type Source struct {
	fixtures map[string][]string
	filter   candidate.Filter
}

func Load(path string, filter candidate.Filter) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, filter)
}

func Parse(r io.Reader, filter candidate.Filter) (*Source, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	fixtures := make(map[string][]string, len(raw))
	for symbol, texts := range raw {
		key := strings.ToUpper(strings.TrimSpace(symbol))
		fixtures[key] = append(fixtures[key], texts...)
	}
	return &Source{fixtures: fixtures, filter: filter}, nil
}

func (s *Source) Name() string { return "static" }

// Fetch returns the fixture texts for symbol; unknown symbols yield no texts.
func (s *Source) Fetch(ctx context.Context, symbol string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.filter.Apply(symbol, s.fixtures[strings.ToUpper(symbol)]), nil
}
