package search

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQueryState(t *testing.T) {
	s := NewQueryState()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, -1, s.Highlight)
	assert.Empty(t, s.Submission())
}

func TestSetQueryResetsHighlight(t *testing.T) {
	queries := []string{"a", "cloud", "  spaced  ", "ünïcode", "x y z"}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			s := NewQueryState()
			s.SetSuggestions([]string{"one", "two", "three"})
			s.MoveHighlight(2)
			s.SetPage(4)
			assert.Equal(t, 1, s.Highlight)

			s.SetQuery(q)
			assert.Equal(t, -1, s.Highlight)
			assert.Equal(t, 1, s.Page)
			assert.Equal(t, q, s.Query)
		})
	}
}

func TestMoveHighlightClamps(t *testing.T) {
	s := NewQueryState()
	s.SetSuggestions([]string{"a", "b"})

	s.MoveHighlight(-1)
	assert.Equal(t, -1, s.Highlight)

	s.MoveHighlight(1)
	s.MoveHighlight(1)
	s.MoveHighlight(1)
	assert.Equal(t, 1, s.Highlight)

	s.MoveHighlight(-5)
	assert.Equal(t, -1, s.Highlight)

	empty := NewQueryState()
	empty.MoveHighlight(1)
	assert.Equal(t, -1, empty.Highlight)
}

func TestSetSuggestionsClampsHighlight(t *testing.T) {
	s := NewQueryState()
	s.SetSuggestions([]string{"a", "b", "c"})
	s.MoveHighlight(3)
	assert.Equal(t, 2, s.Highlight)

	s.SetSuggestions([]string{"a"})
	assert.Equal(t, 0, s.Highlight)

	s.ClearSuggestions()
	assert.Equal(t, -1, s.Highlight)
	assert.Empty(t, s.Suggestions)
}

func TestSubmission(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		suggestions []string
		moves       int
		want        string
	}{
		{"raw query trimmed", "  cloud  ", nil, 0, "cloud"},
		{"no highlight uses raw", "clo", []string{"cloud computing"}, 0, "clo"},
		{"highlight wins", "clo", []string{"cloud computing", "cloud security"}, 2, "cloud security"},
		{"whitespace only", "   ", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewQueryState()
			s.SetQuery(tt.query)
			s.SetSuggestions(tt.suggestions)
			s.MoveHighlight(tt.moves)
			assert.Equal(t, tt.want, s.Submission())
		})
	}
}

func TestSequencer(t *testing.T) {
	var seq Sequencer
	assert.False(t, seq.IsLatest(0))

	first := seq.Next()
	assert.True(t, seq.IsLatest(first))

	second := seq.Next()
	assert.False(t, seq.IsLatest(first), "older tag must be stale")
	assert.True(t, seq.IsLatest(second))

	seq.Invalidate()
	assert.False(t, seq.IsLatest(second))
	assert.Equal(t, second+1, seq.Current())
}

func TestSequencerConcurrent(t *testing.T) {
	var seq Sequencer
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq.Next()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), seq.Current())
}
