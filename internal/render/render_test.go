package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eu5advisor/internal/cache"
)

func newPlainRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(&bytes.Buffer{}, termenv.Ascii)
	require.NoError(t, err)
	return r
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "notty", styleFor(termenv.Ascii))
	assert.Equal(t, "auto", styleFor(termenv.ANSI256))
	assert.Equal(t, "auto", styleFor(termenv.TrueColor))
}

func TestMarkdown(t *testing.T) {
	r := newPlainRenderer(t)
	assert.Equal(t, "notty", r.Style())

	out := r.Markdown("# Estates\n\nThe **nobility** estate.")
	assert.Contains(t, out, "Estates")
	assert.Contains(t, out, "nobility")

	assert.Empty(t, r.Markdown("   "))
}

func TestPanels(t *testing.T) {
	r := newPlainRenderer(t)

	answer := r.Answer("Build **markets** early.")
	assert.Contains(t, answer, AnswerTitle)
	assert.Contains(t, answer, "markets")
	assert.Contains(t, answer, "╭")

	help := r.Help()
	assert.Contains(t, help, "Help")
	assert.Contains(t, help, "reset")
	assert.Contains(t, help, "stats")

	banner := r.Banner("gpt-5-mini", false)
	assert.Contains(t, banner, "EU5 STRATEGY ADVISOR")
	assert.Contains(t, banner, "gpt-5-mini")
	assert.Contains(t, banner, "web search disabled")

	errLine := r.Error(errors.New("boom"))
	assert.Contains(t, errLine, "Error:")
	assert.True(t, strings.HasSuffix(errLine, " boom"))
	assert.True(t, strings.HasSuffix(r.Query("England opening"), " England opening"))
	assert.Contains(t, r.Notice("Conversation reset"), "Conversation reset")
	assert.Contains(t, r.Goodbye(), "May your empire prosper")
}

func TestStats(t *testing.T) {
	r := newPlainRenderer(t)

	out := r.Stats(
		cache.Stats{Size: 2, Capacity: 256, Hits: 3, Misses: 1},
		cache.Stats{Capacity: 1024},
	)
	assert.Contains(t, out, "Knowledge cache: 2/256 entries")
	assert.Contains(t, out, "hit rate 75.0%")
	assert.Contains(t, out, "Search cache: 0/1024 entries")
	assert.Contains(t, out, "hit rate n/a")
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{name: "short text unchanged", text: "abc", n: 200, want: "abc"},
		{name: "exact length unchanged", text: "abcde", n: 5, want: "abcde"},
		{name: "long text cut", text: "abcdefgh", n: 5, want: "abcde..."},
		{name: "non-positive limit unchanged", text: "abcdefgh", n: 0, want: "abcdefgh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.text, tt.n))
		})
	}

	long := strings.Repeat("x", 250)
	assert.Len(t, Preview(long, 200), 203)
}
