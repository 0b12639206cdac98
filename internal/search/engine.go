package search

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/newsdesk/internal/news"
)

// Result is a locally scored article.
type Result struct {
	Article *news.ArticleSummary
	SavedAt time.Time
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "summary", "category", "source", "companies", "insights"
	Text   string
	Weight float64
}

// Engine scores saved articles without an index.
type Engine struct {
	source SavedSource
	now    func() time.Time
}

func NewEngine(source SavedSource) *Engine {
	return &Engine{source: source, now: time.Now}
}

// Search ranks saved articles against query. Queries shorter than two
// characters return nothing.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	saved, err := e.source.SavedArticles(0)
	if err != nil {
		return nil, err
	}

	var results []*Result
	for _, s := range saved {
		if result := e.scoreArticle(&s.Article, terms); result != nil {
			result.SavedAt = s.SavedAt
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Match scores a single article; nil when nothing matches.
func (e *Engine) Match(article *news.ArticleSummary, query string) *Result {
	if article == nil || len(strings.TrimSpace(query)) < 2 {
		return nil
	}
	return e.scoreArticle(article, tokenize(query))
}

func (e *Engine) scoreArticle(a *news.ArticleSummary, terms []string) *Result {
	var matches []Match
	var total float64

	add := func(field, text string, weight float64, snippet string) {
		if s := scoreField(text, terms, weight); s > 0 {
			matches = append(matches, Match{Field: field, Text: snippet, Weight: s})
			total += s
		}
	}

	add("title", a.Title, 4.0, a.Title)
	add("summary", a.Summary, 2.0, findBestSnippet(a.Summary, terms, 150))
	add("category", a.Category, 1.0, a.Category)
	add("source", a.Source.Name, 1.0, a.Source.Name)
	if len(a.Companies) > 0 {
		joined := strings.Join(a.Companies, " ")
		add("companies", joined, 1.0, joined)
	}
	if a.AIAnalysis != nil && len(a.AIAnalysis.KeyInsights) > 0 {
		joined := strings.Join(a.AIAnalysis.KeyInsights, " ")
		add("insights", joined, 1.5, findBestSnippet(joined, terms, 150))
	}

	if total == 0 {
		return nil
	}
	total *= 1.0 + recencyBoost(a.PublishedDate, e.now())
	return &Result{Article: a, Score: total, Matches: matches}
}

func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}
		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet returns the window of text with the most term hits.
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize > len(words) {
		return truncate(text, maxLength)
	}

	bestScore := 0.0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0.0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize lowercases text and splits it into terms, dropping single runes.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}

func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}

// recencyBoost is up to 10% for articles from the last week, fading
// linearly to zero.
func recencyBoost(published, now time.Time) float64 {
	if published.IsZero() {
		return 0
	}
	age := now.Sub(published)
	week := 7 * 24 * time.Hour
	if age < 0 {
		age = 0
	}
	if age >= week {
		return 0
	}
	return 0.1 * (1 - float64(age)/float64(week))
}
