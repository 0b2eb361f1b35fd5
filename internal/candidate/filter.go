// Package candidate prepares raw upstream texts for classification.
package candidate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultBlocklist holds boilerplate that never carries sentiment.
var DefaultBlocklist = []string{
	"[deleted]",
	"[removed]",
	"i am a bot",
	"this action was performed automatically",
}

// Filter applies the coarse upstream filtering every text source shares.
// Zero values disable the respective rule.
type Filter struct {
	// MinLength is exclusive: texts must be longer than this many characters.
	MinLength int
	// MaxLength drops texts longer than this many characters.
	MaxLength int
	// Blocklist entries are matched as case-insensitive substrings.
	Blocklist []string
	// RequireSymbol keeps only texts that mention the symbol as $SYM or a whole word.
	RequireSymbol bool
	// Limit caps the number of texts returned.
	Limit int
}

// Apply returns the texts that pass the filter, trimmed and de-duplicated, in their
// original order. The input slice is not modified.
func (f Filter) Apply(symbol string, texts []string) []string {
	var mention *regexp.Regexp
	if f.RequireSymbol && symbol != "" {
		mention = symbolPattern(symbol)
	}

	blocked := make([]string, 0, len(f.Blocklist))
	for _, b := range f.Blocklist {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			blocked = append(blocked, b)
		}
	}

	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, raw := range texts {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}

		text := strings.TrimSpace(raw)
		n := utf8.RuneCountInString(text)
		if n <= f.MinLength || (f.MaxLength > 0 && n > f.MaxLength) {
			continue
		}
		if containsAny(strings.ToLower(text), blocked) {
			continue
		}
		if mention != nil && !mention.MatchString(text) {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}

		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func symbolPattern(symbol string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^A-Za-z0-9])\$?` + regexp.QuoteMeta(symbol) + `($|[^A-Za-z0-9])`)
}

// Truncate shortens text to at most n characters, appending an ellipsis when cut.
func Truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
