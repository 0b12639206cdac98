package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/filter"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
	<channel>
		<title>Example Wire</title>
		<link>http://example.org</link>
		<description>Test Description</description>
		<item>
			<title>Microsoft expands Azure regions</title>
			<link>http://example.org/article1</link>
			<description><![CDATA[<p>The <b>cloud</b>   push continues &amp; grows.</p>]]></description>
			<guid>article-1</guid>
			<category>Cloud</category>
			<category>Cloud</category>
			<pubDate>Wed, 01 Jan 2025 12:00:00 GMT</pubDate>
		</item>
		<item>
			<title>Chip shortage eases</title>
			<link>http://example.org/article2</link>
			<content:encoded><![CDATA[<p>Full content from Amazon Web Services</p>]]></content:encoded>
			<guid>article-2</guid>
		</item>
		<item>
			<title>No link or guid</title>
		</item>
	</channel>
</rss>`

func testCompanies() []filter.Option {
	return []filter.Option{
		{ID: "microsoft", Label: "Microsoft"},
		{ID: "amazon", Label: "Amazon"},
		{ID: "google", Label: "Google"},
	}
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser(testCompanies())
	fixed := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	parser.now = func() time.Time { return fixed }

	src := Source{SourceConfig: config.SourceConfig{Name: "Example Wire", Category: "cloud", Trust: 82}}
	articles, err := parser.Parse(strings.NewReader(sampleRSS), src)
	require.NoError(t, err)
	require.Len(t, articles, 2, "items without link or guid are skipped")

	first := articles[0]
	assert.Equal(t, "Microsoft expands Azure regions", first.Title)
	assert.Equal(t, "The cloud push continues & grows.", first.Summary)
	assert.Equal(t, "http://example.org/article1", first.URL)
	assert.Equal(t, "Example Wire", first.Source.Name)
	assert.Equal(t, 82.0, first.TrustScore.Overall)
	assert.Equal(t, "cloud", first.Category)
	assert.Equal(t, []string{"microsoft"}, first.Companies)
	assert.Equal(t, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), first.PublishedDate)
	require.NotNil(t, first.AIAnalysis)
	assert.Equal(t, []string{"Cloud"}, first.AIAnalysis.KeyInsights)

	second := articles[1]
	assert.Equal(t, "Full content from Amazon Web Services", second.Summary)
	assert.Equal(t, []string{"amazon"}, second.Companies)
	assert.Equal(t, fixed, second.PublishedDate, "missing dates fall back to now")
	assert.Nil(t, second.AIAnalysis)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, first.ID, 16)
}

func TestParser_StableIDs(t *testing.T) {
	parser := NewParser(nil)
	src := Source{SourceConfig: config.SourceConfig{Name: "Example Wire"}}

	a, err := parser.Parse(strings.NewReader(sampleRSS), src)
	require.NoError(t, err)
	b, err := parser.Parse(strings.NewReader(sampleRSS), src)
	require.NoError(t, err)
	assert.Equal(t, a[0].ID, b[0].ID)

	other := Source{SourceConfig: config.SourceConfig{Name: "Other Wire"}}
	c, err := parser.Parse(strings.NewReader(sampleRSS), other)
	require.NoError(t, err)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestParser_FeedTitleFallback(t *testing.T) {
	parser := NewParser(nil)
	articles, err := parser.Parse(strings.NewReader(sampleRSS), Source{})
	require.NoError(t, err)
	require.NotEmpty(t, articles)
	assert.Equal(t, "Example Wire", articles[0].Source.Name)
}

func TestParser_Atom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Feed</title>
	<entry>
		<title>Google ships update</title>
		<link href="http://example.org/atom1"/>
		<id>urn:uuid:1</id>
		<updated>2025-01-03T08:00:00Z</updated>
		<summary>Search changes</summary>
	</entry>
</feed>`
	parser := NewParser(testCompanies())
	articles, err := parser.Parse(strings.NewReader(atom), Source{SourceConfig: config.SourceConfig{Name: "Atom"}})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "http://example.org/atom1", articles[0].URL)
	assert.Equal(t, []string{"google"}, articles[0].Companies)
	assert.Equal(t, time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC), articles[0].PublishedDate)
}

func TestParser_Invalid(t *testing.T) {
	parser := NewParser(nil)
	_, err := parser.Parse(strings.NewReader("not a feed"), Source{})
	assert.Error(t, err)
}

func TestMatchCompanies(t *testing.T) {
	parser := NewParser([]filter.Option{
		{ID: "ibm", Label: "IBM"},
		{ID: "oracle", Label: "Oracle"},
		{ID: "salesforce", Label: "Salesforce"},
	})
	assert.Equal(t, []string{"ibm", "salesforce"}, parser.matchCompanies("IBM partners with Salesforce"))
	assert.Empty(t, parser.matchCompanies("Oracles of finance"))
}
