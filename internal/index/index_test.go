package index

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixtures() []news.ArticleSummary {
	return []news.ArticleSummary{
		{
			ID: "a1", Title: "Cloud spending surges", Summary: "Enterprises move workloads to Azure",
			Category: "cloud", Source: news.Source{Name: "Reuters"}, Companies: []string{"microsoft"},
			TrustScore: news.TrustScore{Overall: 85}, PublishedDate: t0,
		},
		{
			ID: "a2", Title: "Cloudflare outage disrupts sites", Summary: "A configuration error took down proxies",
			Category: "cybersecurity", Source: news.Source{Name: "The Verge"},
			TrustScore: news.TrustScore{Overall: 62}, PublishedDate: t0.Add(-time.Hour),
		},
		{
			ID: "a3", Title: "Fintech lenders tighten", Summary: "Credit conditions worsen",
			Category: "fintech", Source: news.Source{Name: "Bloomberg"},
			TrustScore: news.TrustScore{Overall: 45}, PublishedDate: t0.Add(-2 * time.Hour),
		},
		{
			ID: "a4", Title: "Google Cloud adds AI chips", Summary: "New accelerators for training",
			Category: "ai-ml", Source: news.Source{Name: "TechCrunch"}, Companies: []string{"google"},
			TrustScore: news.TrustScore{Overall: 78}, PublishedDate: t0.Add(-3 * time.Hour),
		},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.Upsert(fixtures()))
	return idx
}

func ids(articles []news.ArticleSummary) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestSearchText(t *testing.T) {
	idx := newTestIndex(t)

	results, total, err := idx.Search(Query{Text: "cloud", Criteria: filter.Default(), Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.ElementsMatch(t, []string{"a1", "a2", "a4"}, ids(results))

	first := results[0]
	assert.NotEmpty(t, first.Title)
	require.NotNil(t, first.Views)
	assert.Equal(t, 0, *first.Views)
}

func TestSearchFilters(t *testing.T) {
	idx := newTestIndex(t)

	tests := []struct {
		name     string
		text     string
		criteria filter.Criteria
		want     []string
	}{
		{"category", "cloud", filter.Criteria{Category: []string{"cloud"}, MinTrustScore: 40}, []string{"a1"}},
		{"min trust", "cloud", filter.Criteria{MinTrustScore: 75}, []string{"a1", "a4"}},
		{"source slug", "cloud", filter.Criteria{Source: []string{"the-verge"}, MinTrustScore: 40}, []string{"a2"}},
		{"company", "", filter.Criteria{Companies: []string{"google"}, MinTrustScore: 40}, []string{"a4"}},
		{"any of categories", "", filter.Criteria{Category: []string{"fintech", "ai-ml"}, MinTrustScore: 40}, []string{"a3", "a4"}},
		{"all of fields", "", filter.Criteria{Category: []string{"fintech", "ai-ml"}, MinTrustScore: 60}, []string{"a4"}},
		{"match all", "", filter.Default(), []string{"a1", "a2", "a3", "a4"}},
		{"trust excludes", "", filter.Criteria{MinTrustScore: 50}, []string{"a1", "a2", "a4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := idx.Search(Query{Text: tt.text, Criteria: tt.criteria, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			assert.ElementsMatch(t, tt.want, ids(results))
		})
	}
}

func TestSearchPaging(t *testing.T) {
	idx := newTestIndex(t)

	page, total, err := idx.Search(Query{Criteria: filter.Default(), Limit: 3, Skip: 0})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, page, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(page), "filter-only results are newest first")

	page, total, err = idx.Search(Query{Criteria: filter.Default(), Limit: 3, Skip: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"a4"}, ids(page))
}

func TestSuggest(t *testing.T) {
	idx := newTestIndex(t)

	all, err := idx.Suggest("clo", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Cloud spending surges", "Cloudflare outage disrupts sites", "Google Cloud adds AI chips"}, all)

	two, err := idx.Suggest("clo", 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	narrowed, err := idx.Suggest("google cl", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Google Cloud adds AI chips"}, narrowed)

	empty, err := idx.Suggest("   ", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTrendingAndCounters(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Increment("a3", Views)
	require.NoError(t, err)
	v, err := idx.Increment("a3", Views)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	_, err = idx.Increment("a2", Views)
	require.NoError(t, err)

	trending, err := idx.Trending(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a3", "a2", "a1"}, ids(trending))
	assert.Equal(t, 2, trending[0].ViewCount())

	s, err := idx.Increment("a1", Shares)
	require.NoError(t, err)
	assert.Equal(t, 1, s)
	got, err := idx.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ShareCount())

	_, err = idx.Increment("missing", Views)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpsertKeepsCounters(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Increment("a3", Saves)
	require.NoError(t, err)
	_, err = idx.Increment("a3", Views)
	require.NoError(t, err)

	updated := fixtures()[2]
	updated.Title = "Fintech lenders tighten further"
	require.NoError(t, idx.Upsert([]news.ArticleSummary{updated}))

	got, err := idx.Get("a3")
	require.NoError(t, err)
	assert.Equal(t, "Fintech lenders tighten further", got.Title)
	assert.Equal(t, 1, got.ViewCount())

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestGetMissing(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCounterFor(t *testing.T) {
	c, ok := CounterFor("share")
	assert.True(t, ok)
	assert.Equal(t, Shares, c)
	_, ok = CounterFor("like")
	assert.False(t, ok)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.bleve")
	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(fixtures()))
	require.NoError(t, idx.Close())

	idx, err = Open(path)
	require.NoError(t, err)
	defer idx.Close()
	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
