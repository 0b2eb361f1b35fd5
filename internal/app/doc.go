// Package app provides the application service layer.
//
// Orchestrates use cases: single-symbol analysis (fetch, classify, aggregate, cache,
// publish) and the watchlist dashboard. Sits between HTTP handlers and the domain
// contracts. Depends on domain interfaces, not concrete implementations.
package app
