// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (sentiment.go, source.go, classifier.go, report.go, ...) hold
// shared types and the contracts adapters implement. No implementation code.
package domain
