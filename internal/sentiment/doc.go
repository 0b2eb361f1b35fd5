// Package sentiment turns a batch of candidate texts into a bounded net score.
//
// Aggregate is a pure function of its inputs: it classifies each text once, drops
// per-item failures, tallies polarities, computes the net score in the requested
// mode and picks the highest-confidence example of each polarity. Label schemes
// translate a model's native vocabulary into the canonical polarity.
package sentiment
