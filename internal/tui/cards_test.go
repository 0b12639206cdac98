package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/paging"
)

func TestStaggerDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), StaggerDelay(0))
	assert.Equal(t, 50*time.Millisecond, StaggerDelay(1))
	assert.Equal(t, 450*time.Millisecond, StaggerDelay(9))
	assert.Equal(t, time.Duration(0), StaggerDelay(-3))
}

func TestRenderCardDefault(t *testing.T) {
	card := RenderCard(testArticles()[0], CardDefault, 100, testNow, CardOptions{})

	for _, want := range []string{
		"cloud",
		"Example Wire",
		"2h ago",
		"● Highly Trusted 85",
		"Cloud spending rises again",
		"Enterprises grow cloud budgets",
		"› Budgets up 12%",
		"12 views • 3 shares",
		"☆ save",
		"↗ share",
	} {
		assert.Contains(t, card, want)
	}
}

func TestRenderCardFlags(t *testing.T) {
	art := testArticles()[0]

	card := RenderCard(art, CardDefault, 100, testNow, CardOptions{Saved: true, Shared: true})
	assert.Contains(t, card, "★ saved")
	assert.Contains(t, card, "✓ "+MsgShared)
	assert.NotContains(t, card, "☆ save")

	plain := RenderCard(art, CardDefault, 100, testNow, CardOptions{})
	selected := RenderCard(art, CardDefault, 100, testNow, CardOptions{Selected: true})
	assert.Equal(t, strings.Count(plain, "\n"), strings.Count(selected, "\n"))
}

func TestRenderCardSummaryLimit(t *testing.T) {
	card := RenderCard(testArticles()[0], CardDefault, 100, testNow, CardOptions{SummaryLimit: 10})

	assert.Contains(t, card, "Enterpris…")
	assert.NotContains(t, card, "budgets")
}

func TestRenderCardInsightsCapped(t *testing.T) {
	art := testArticles()[0]
	art.AIAnalysis.KeyInsights = []string{"first", "second", "third"}

	card := RenderCard(art, CardDefault, 100, testNow, CardOptions{})

	assert.Contains(t, card, "› first")
	assert.Contains(t, card, "› second")
	assert.NotContains(t, card, "third")
}

func TestRenderCardCompact(t *testing.T) {
	card := RenderCard(testArticles()[1], CardCompact, 100, testNow, CardOptions{})

	assert.Contains(t, card, "Kubernetes security audit findings")
	assert.Contains(t, card, "Sec Daily")
	assert.Contains(t, card, "30m ago")
	assert.Contains(t, card, "Trusted")
	assert.NotContains(t, card, "misconfigured")
	assert.NotContains(t, card, "share")

	def := RenderCard(testArticles()[1], CardDefault, 100, testNow, CardOptions{})
	assert.Less(t, strings.Count(card, "\n"), strings.Count(def, "\n"))
}

func TestRenderCardWithoutSourceShowsLink(t *testing.T) {
	art := testArticles()[1]
	art.Source.Name = ""

	card := RenderCard(art, CardCompact, 100, testNow, CardOptions{})

	assert.Contains(t, card, "example.com/k8s-audit")
}

func TestRenderCardIsPure(t *testing.T) {
	art := testArticles()[0]
	opts := CardOptions{Saved: true}

	assert.Equal(t,
		RenderCard(art, CardDefault, 80, testNow, opts),
		RenderCard(art, CardDefault, 80, testNow, opts))
}

func TestRenderPager(t *testing.T) {
	p := paging.New()
	p.Limit = 10

	p.Total = 10
	assert.Empty(t, renderPager(p))

	p.Total = 95
	p = p.Goto(3)
	out := renderPager(p)
	assert.Contains(t, out, "‹ prev")
	assert.Contains(t, out, "next ›")
	assert.Contains(t, out, MsgPage(3, 10))
}

func TestRenderSidebar(t *testing.T) {
	catalog, err := filter.DefaultCatalog()
	require.NoError(t, err)
	sb := filter.NewSidebar(catalog)

	out := renderSidebar(sb, filter.Default(), 40, false)
	assert.Contains(t, out, "▾ Categories")
	assert.Contains(t, out, "▸ Sources")
	assert.Contains(t, out, "(•) 40+")
	assert.NotContains(t, out, "Reset")

	c := filter.Reduce(filter.Default(), filter.Action{Kind: filter.ToggleCategory, Value: "ai-ml"})
	c = filter.Reduce(c, filter.Action{Kind: filter.SetMinTrust, Score: 75})
	out = renderSidebar(sb, c, 40, true)
	assert.Contains(t, out, "↺ Reset (2)")
	assert.Contains(t, out, "▾ Categories (1)")
	assert.Contains(t, out, "(•) 75+")
	assert.Contains(t, out, "[x]")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncateEnd("hello", 5))
	assert.Equal(t, "hell…", truncateEnd("hello world", 5))
	assert.Equal(t, "", truncateEnd("hello", 0))

	assert.Equal(t, "short", truncateMiddle("short", 10))
	assert.Equal(t, "abc…xyz", truncateMiddle("abcdefghijklmnopqrstuvwxyz", 7))
	assert.Equal(t, "…", truncateMiddle("abcdef", 1))
}

func TestDisplayURL(t *testing.T) {
	assert.Equal(t, "example.com/news/item", displayURL("https://www.example.com/news/item/"))
	assert.Equal(t, "not a url", displayURL("not a url"))
}
