package domain

import "context"

// TextSource yields candidate texts for a symbol, newest first where the upstream
// supports it. Implementations apply length, blocklist and relevance filtering
// before returning.
type TextSource interface {
	Name() string
	Fetch(ctx context.Context, symbol string) ([]string, error)
}
