package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
)

var whitespace = regexp.MustCompile(`\s+`)

// Parser turns RSS/Atom documents into article summaries.
type Parser struct {
	parser    *gofeed.Parser
	sanitizer *bluemonday.Policy
	companies []filter.Option
	now       func() time.Time
}

// NewParser tags articles with the companies whose id or label appears in
// the title or summary.
func NewParser(companies []filter.Option) *Parser {
	return &Parser{
		parser:    gofeed.NewParser(),
		sanitizer: bluemonday.StrictPolicy(),
		companies: companies,
		now:       time.Now,
	}
}

func (p *Parser) Parse(reader io.Reader, src Source) ([]news.ArticleSummary, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	sourceName := src.Name
	if sourceName == "" {
		sourceName = strings.TrimSpace(feed.Title)
	}
	logo := src.Logo
	if logo == "" && feed.Image != nil {
		logo = feed.Image.URL
	}

	articles := make([]news.ArticleSummary, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" && item.GUID == "" {
			continue
		}

		summary := p.plainText(item.Description)
		if summary == "" {
			summary = p.plainText(item.Content)
		}

		published := p.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		a := news.ArticleSummary{
			ID:            articleID(sourceName, item),
			Title:         strings.TrimSpace(item.Title),
			Summary:       summary,
			URL:           item.Link,
			Source:        news.Source{Name: sourceName, Logo: logo},
			TrustScore:    news.TrustScore{Overall: src.Trust},
			PublishedDate: published.UTC(),
			Category:      src.Category,
			Companies:     p.matchCompanies(item.Title + " " + summary),
		}
		if len(item.Categories) > 0 {
			a.AIAnalysis = &news.AIAnalysis{KeyInsights: uniqueStrings(item.Categories)}
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func (p *Parser) plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(p.sanitizer.Sanitize(s))
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func (p *Parser) matchCompanies(text string) []string {
	words := wordSet(text)
	var out []string
	for _, c := range p.companies {
		if words[strings.ToLower(c.ID)] || containsPhrase(text, c.Label) {
			out = append(out, c.ID)
		}
	}
	return out
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	}) {
		set[w] = true
	}
	return set
}

// containsPhrase matches label on word boundaries, case-insensitively.
func containsPhrase(text, label string) bool {
	if label == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(label) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// articleID is stable across refreshes so counters survive reindexing.
func articleID(source string, item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	sum := sha256.Sum256([]byte(source + "\x00" + key))
	return hex.EncodeToString(sum[:8])
}

func uniqueStrings(strs []string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, s := range strs {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
