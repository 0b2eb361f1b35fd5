package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_LengthBounds(t *testing.T) {
	f := Filter{MinLength: 15, MaxLength: 40}

	got := f.Apply("GME", []string{
		"too short",
		"exactly fifteen",
		"this one is long enough to keep",
		"this one is far too long to be kept by the filter at all",
	})

	assert.Equal(t, []string{"this one is long enough to keep"}, got)
}

func TestFilter_TrimsAndDeduplicates(t *testing.T) {
	f := Filter{}

	got := f.Apply("GME", []string{"  buy the dip  ", "buy the dip", "", "   "})

	assert.Equal(t, []string{"buy the dip"}, got)
}

func TestFilter_Blocklist(t *testing.T) {
	f := Filter{Blocklist: DefaultBlocklist}

	got := f.Apply("TSLA", []string{
		"[deleted]",
		"I am a bot, and this action was performed automatically.",
		"TSLA earnings look strong",
	})

	assert.Equal(t, []string{"TSLA earnings look strong"}, got)
}

func TestFilter_RequireSymbol(t *testing.T) {
	f := Filter{RequireSymbol: true}

	got := f.Apply("NVDA", []string{
		"$NVDA to 200",
		"loading up on nvda calls",
		"NVDAX is a different fund",
		"nothing relevant here",
		"(NVDA) beat estimates",
	})

	assert.Equal(t, []string{"$NVDA to 200", "loading up on nvda calls", "(NVDA) beat estimates"}, got)
}

func TestFilter_LimitKeepsFirst(t *testing.T) {
	f := Filter{Limit: 2}

	got := f.Apply("GME", []string{"first", "second", "third"})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := []string{"  padded  ", "kept"}
	Filter{}.Apply("GME", in)
	assert.Equal(t, []string{"  padded  ", "kept"}, in)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "æøå...", Truncate("æøåæøå", 3))
	assert.Equal(t, "unchanged", Truncate("unchanged", 0))
}
