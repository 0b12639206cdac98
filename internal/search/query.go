package search

import (
	"strings"
	"sync"
)

// QueryState is the search popup state: the raw text being typed, the
// committed page, and the suggestion list with its keyboard highlight.
// Highlight is -1 when no suggestion is selected.
type QueryState struct {
	Query       string
	Page        int
	Highlight   int
	Suggestions []string
}

func NewQueryState() QueryState {
	return QueryState{Page: 1, Highlight: -1}
}

// SetQuery replaces the query text. Any change of text drops the
// highlight and rewinds paging to the first page.
func (s *QueryState) SetQuery(q string) {
	s.Query = q
	s.Highlight = -1
	s.Page = 1
}

// SetPage moves to page p; callers clamp against the page count.
func (s *QueryState) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	s.Page = p
}

// SetSuggestions replaces the list, keeping the highlight in range.
func (s *QueryState) SetSuggestions(list []string) {
	s.Suggestions = append([]string(nil), list...)
	if s.Highlight >= len(s.Suggestions) {
		s.Highlight = len(s.Suggestions) - 1
	}
}

func (s *QueryState) ClearSuggestions() {
	s.Suggestions = nil
	s.Highlight = -1
}

// MoveHighlight shifts the highlight by delta, clamped to [-1, len-1].
func (s *QueryState) MoveHighlight(delta int) {
	h := s.Highlight + delta
	if h < -1 {
		h = -1
	}
	if h > len(s.Suggestions)-1 {
		h = len(s.Suggestions) - 1
	}
	s.Highlight = h
}

// Highlighted returns the selected suggestion, if any.
func (s QueryState) Highlighted() (string, bool) {
	if s.Highlight < 0 || s.Highlight >= len(s.Suggestions) {
		return "", false
	}
	return s.Suggestions[s.Highlight], true
}

// Submission is what Enter commits: the highlighted suggestion when one is
// selected, otherwise the trimmed query. Empty means nothing to submit.
func (s QueryState) Submission() string {
	if h, ok := s.Highlighted(); ok {
		return h
	}
	return strings.TrimSpace(s.Query)
}

// Trimmed reports the query without surrounding whitespace.
func (s QueryState) Trimmed() string {
	return strings.TrimSpace(s.Query)
}

// Sequencer hands out monotonically increasing tags for in-flight requests.
// Only a response carrying the latest tag may be applied.
type Sequencer struct {
	mu   sync.Mutex
	last uint64
}

func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

func (s *Sequencer) IsLatest(tag uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tag != 0 && tag == s.last
}

// Invalidate makes every outstanding tag stale.
func (s *Sequencer) Invalidate() {
	s.Next()
}

func (s *Sequencer) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
