package news

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "Moderate Trust"},
		{59, "Moderate Trust"},
		{59.9, "Moderate Trust"},
		{60, "Trusted"},
		{79, "Trusted"},
		{80, "Highly Trusted"},
		{100, "Highly Trusted"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score).String(), "score %v", tt.score)
	}
}

func TestTierColorsDistinct(t *testing.T) {
	assert.NotEqual(t, HighlyTrusted.Color(), Trusted.Color())
	assert.NotEqual(t, Trusted.Color(), ModerateTrust.Color())
}

func TestCategoryColor(t *testing.T) {
	assert.Equal(t, CategoryColor("ai-ml"), CategoryColor("AI"))
	assert.Equal(t, CategoryColor("cybersecurity"), CategoryColor("security"))
	assert.NotEqual(t, NeutralCategoryColor, CategoryColor("cloud"))
	assert.Equal(t, NeutralCategoryColor, CategoryColor("gardening"))
	assert.Equal(t, NeutralCategoryColor, CategoryColor(""))

	assert.Equal(t, lipgloss.Color("#F97316"), CategoryColor("blockchain"))
	assert.Equal(t, lipgloss.Color("#A855F7"), CategoryColor("AI & ML"))
	assert.Equal(t, lipgloss.Color("#EAB308"), CategoryColor("iot"))
	assert.Equal(t, NeutralCategoryColor, CategoryColor("retail"))
	assert.Equal(t, NeutralCategoryColor, CategoryColor("sustainability"))
	assert.Equal(t, NeutralCategoryColor, CategoryColor("html"))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		published time.Time
		want      string
	}{
		{"just now", now, "0m ago"},
		{"minutes", now.Add(-59 * time.Minute), "59m ago"},
		{"one hour", now.Add(-60 * time.Minute), "1h ago"},
		{"hours", now.Add(-23 * time.Hour), "23h ago"},
		{"one day", now.Add(-24 * time.Hour), "1d ago"},
		{"six days", now.Add(-6 * 24 * time.Hour), "6d ago"},
		{"future clamps", now.Add(5 * time.Minute), "0m ago"},
		{"zero", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(tt.published, now))
		})
	}

	old := now.Add(-8 * 24 * time.Hour)
	assert.Equal(t, old.Local().Format(ShortDateLayout), RelativeTime(old, now))
}

func TestRoutes(t *testing.T) {
	assert.Equal(t, "/news-search?q=cloud", SearchURL("cloud"))
	assert.Equal(t, "/news-search?q=cloud+security", SearchURL("cloud security"))
	assert.Equal(t, "/article/abc-1", ArticlePath("abc-1"))

	kind, arg, ok := ParseRoute(SearchURL("a&b"))
	require.True(t, ok)
	assert.Equal(t, "search", kind)
	assert.Equal(t, "a&b", arg)

	kind, arg, ok = ParseRoute(ArticlePath("x y"))
	require.True(t, ok)
	assert.Equal(t, "article", kind)
	assert.Equal(t, "x y", arg)

	_, _, ok = ParseRoute("/elsewhere")
	assert.False(t, ok)
	_, _, ok = ParseRoute("/article/")
	assert.False(t, ok)
}

func TestArticleSummaryDecode(t *testing.T) {
	raw := `{
		"id": "a1",
		"title": "Cloud outage",
		"summary": "s",
		"url": "https://example.com/a1",
		"source": {"name": "Wire", "logo": "https://example.com/l.png"},
		"trustScore": {"overall": 82},
		"publishedDate": "2025-03-10T10:00:00Z",
		"category": "cloud",
		"aiAnalysis": {"keyInsights": ["k1"], "sentiment": "neutral"},
		"views": 12
	}`

	var a ArticleSummary
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "Wire", a.Source.Name)
	assert.Equal(t, 82.0, a.TrustScore.Overall)
	require.NotNil(t, a.AIAnalysis)
	assert.Equal(t, []string{"k1"}, a.AIAnalysis.KeyInsights)
	assert.Equal(t, 12, a.ViewCount())
	assert.Equal(t, 0, a.ShareCount())
	assert.Equal(t, 2025, a.PublishedDate.Year())
}
