package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
)

// ErrNotFound is returned for unknown article ids.
var ErrNotFound = errors.New("article not found")

// Counter names one of the engagement counters kept per article.
type Counter string

const (
	Views  Counter = fieldViews
	Shares Counter = fieldShares
	Saves  Counter = fieldSaves
)

// CounterFor maps a tracking action ("view", "share", "save") to its
// counter.
func CounterFor(action string) (Counter, bool) {
	switch action {
	case "view":
		return Views, true
	case "share":
		return Shares, true
	case "save":
		return Saves, true
	}
	return "", false
}

// Query is one search against the index.
type Query struct {
	Text     string
	Criteria filter.Criteria
	Limit    int
	Skip     int
}

// Index stores article summaries in bleve for the development search
// service.
type Index struct {
	idx bleve.Index
	// mu serialises read-modify-write of counters and upserts.
	mu sync.Mutex
}

// Open opens or creates the index at path. An empty path keeps the index
// in memory.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating memory index: %w", err)
		}
		return &Index{idx: idx}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(path)
	if err != nil {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}
	return &Index{idx: idx}, nil
}

func (i *Index) Close() error {
	return i.idx.Close()
}

type counters struct {
	views, shares, saves int
}

// Upsert indexes articles. Counters of articles already in the index are
// kept; counters carried by the incoming article win when larger.
func (i *Index) Upsert(articles []news.ArticleSummary) error {
	if len(articles) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	existing, err := i.countersFor(ids)
	if err != nil {
		return err
	}

	batch := i.idx.NewBatch()
	for _, a := range articles {
		if a.ID == "" {
			continue
		}
		c := existing[a.ID]
		c.views = max(c.views, a.ViewCount())
		c.shares = max(c.shares, a.ShareCount())
		doc, err := toDoc(a, c)
		if err != nil {
			return err
		}
		if err := batch.Index(a.ID, doc); err != nil {
			return fmt.Errorf("indexing %s: %w", a.ID, err)
		}
	}
	return i.idx.Batch(batch)
}

func toDoc(a news.ArticleSummary, c counters) (map[string]any, error) {
	a.Views = nil
	a.Shares = nil
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", a.ID, err)
	}
	companies := a.Companies
	if companies == nil {
		companies = []string{}
	}
	return map[string]any{
		fieldTitle:     a.Title,
		fieldSummary:   a.Summary,
		fieldCategory:  a.Category,
		fieldSource:    filter.Slug(a.Source.Name),
		fieldCompanies: companies,
		fieldTrust:     a.TrustScore.Overall,
		fieldPublished: float64(a.PublishedDate.Unix()),
		fieldViews:     float64(c.views),
		fieldShares:    float64(c.shares),
		fieldSaves:     float64(c.saves),
		fieldPayload:   string(payload),
	}, nil
}

func (i *Index) countersFor(ids []string) (map[string]counters, error) {
	out := make(map[string]counters, len(ids))
	q := bleve.NewDocIDQuery(ids)
	req := bleve.NewSearchRequestOptions(q, len(ids), 0, false)
	req.Fields = []string{fieldViews, fieldShares, fieldSaves}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("reading counters: %w", err)
	}
	for _, h := range res.Hits {
		out[h.ID] = counters{
			views:  intField(h.Fields, fieldViews),
			shares: intField(h.Fields, fieldShares),
			saves:  intField(h.Fields, fieldSaves),
		}
	}
	return out, nil
}

// Search runs q and returns one page of articles plus the total hit count.
func (i *Index) Search(q Query) ([]news.ArticleSummary, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	skip := max(q.Skip, 0)

	conjuncts := []bleveQuery.Query{textQuery(q.Text)}
	conjuncts = append(conjuncts, filterQueries(q.Criteria)...)

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), limit, skip, false)
	req.Fields = []string{fieldPayload, fieldViews, fieldShares}
	if strings.TrimSpace(q.Text) == "" {
		// Filter-only browsing is ordered by recency alone.
		req.SortBy([]string{"-" + fieldPublished})
	} else {
		req.SortBy([]string{"-_score", "-" + fieldPublished})
	}

	res, err := i.idx.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}
	articles, err := decodeHits(res.Hits)
	if err != nil {
		return nil, 0, err
	}
	return articles, int(res.Total), nil
}

// textQuery ORs per-token title and summary matches, with prefix matches
// so partially typed words still hit. Empty text matches everything.
func textQuery(text string) bleveQuery.Query {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return bleve.NewMatchAllQuery()
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField(fieldTitle)
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField(fieldTitle)
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qd := bleve.NewMatchQuery(tok)
		qd.SetField(fieldSummary)
		qd.SetBoost(2.0)
		qs = append(qs, qd)
		qdp := bleve.NewPrefixQuery(tok)
		qdp.SetField(fieldSummary)
		qdp.SetBoost(1.8)
		qs = append(qs, qdp)
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// filterQueries turns criteria into conjuncts: any-of within a field,
// all-of across fields, and an inclusive minimum trust score.
func filterQueries(c filter.Criteria) []bleveQuery.Query {
	var out []bleveQuery.Query

	anyOf := func(field string, values []string) {
		if len(values) == 0 {
			return
		}
		var terms []bleveQuery.Query
		for _, v := range values {
			tq := bleve.NewTermQuery(v)
			tq.SetField(field)
			terms = append(terms, tq)
		}
		out = append(out, bleve.NewDisjunctionQuery(terms...))
	}
	anyOf(fieldCategory, c.Category)
	anyOf(fieldSource, c.Source)
	anyOf(fieldCompanies, c.Companies)

	if c.MinTrustScore > 0 {
		minScore := float64(c.MinTrustScore)
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&minScore, nil, &inclusive, nil)
		rq.SetField(fieldTrust)
		out = append(out, rq)
	}
	return out
}

// Suggest returns up to n distinct titles matching prefix. The last word is
// treated as a prefix, earlier words must match.
func (i *Index) Suggest(prefix string, n int) ([]string, error) {
	tokens := strings.Fields(strings.ToLower(prefix))
	if len(tokens) == 0 || n <= 0 {
		return []string{}, nil
	}

	var conj []bleveQuery.Query
	for _, tok := range tokens[:len(tokens)-1] {
		mq := bleve.NewMatchQuery(tok)
		mq.SetField(fieldTitle)
		conj = append(conj, mq)
	}
	last := tokens[len(tokens)-1]
	pq := bleve.NewPrefixQuery(last)
	pq.SetField(fieldTitle)
	conj = append(conj, pq)

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conj...), n*3, 0, false)
	req.Fields = []string{fieldTitle}
	req.SortBy([]string{"-_score", "-" + fieldViews})
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, h := range res.Hits {
		title, _ := h.Fields[fieldTitle].(string)
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, title)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// Trending returns the n most viewed articles, newest first on ties.
func (i *Index) Trending(n int) ([]news.ArticleSummary, error) {
	if n <= 0 {
		return []news.ArticleSummary{}, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), n, 0, false)
	req.Fields = []string{fieldPayload, fieldViews, fieldShares}
	req.SortBy([]string{"-" + fieldViews, "-" + fieldPublished})
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return decodeHits(res.Hits)
}

// Get loads a single article.
func (i *Index) Get(id string) (*news.ArticleSummary, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{id}), 1, 0, false)
	req.Fields = []string{fieldPayload, fieldViews, fieldShares}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}
	articles, err := decodeHits(res.Hits)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, ErrNotFound
	}
	return &articles[0], nil
}

// Increment bumps counter c of article id and returns the new value.
func (i *Index) Increment(id string, c Counter) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{id}), 1, 0, false)
	req.Fields = []string{fieldPayload, fieldViews, fieldShares, fieldSaves}
	res, err := i.idx.Search(req)
	if err != nil {
		return 0, err
	}
	if len(res.Hits) == 0 {
		return 0, ErrNotFound
	}
	h := res.Hits[0]

	var a news.ArticleSummary
	payload, _ := h.Fields[fieldPayload].(string)
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return 0, fmt.Errorf("decoding %s: %w", id, err)
	}
	cs := counters{
		views:  intField(h.Fields, fieldViews),
		shares: intField(h.Fields, fieldShares),
		saves:  intField(h.Fields, fieldSaves),
	}

	var value int
	switch c {
	case Views:
		cs.views++
		value = cs.views
	case Shares:
		cs.shares++
		value = cs.shares
	case Saves:
		cs.saves++
		value = cs.saves
	default:
		return 0, fmt.Errorf("unknown counter %q", c)
	}

	doc, err := toDoc(a, cs)
	if err != nil {
		return 0, err
	}
	if err := i.idx.Index(id, doc); err != nil {
		return 0, err
	}
	return value, nil
}

// DocCount reports total documents in the index.
func (i *Index) DocCount() (int, error) {
	n, err := i.idx.DocCount()
	return int(n), err
}

func decodeHits(hits search.DocumentMatchCollection) ([]news.ArticleSummary, error) {
	out := make([]news.ArticleSummary, 0, len(hits))
	for _, h := range hits {
		payload, _ := h.Fields[fieldPayload].(string)
		var a news.ArticleSummary
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", h.ID, err)
		}
		views := intField(h.Fields, fieldViews)
		shares := intField(h.Fields, fieldShares)
		a.Views = &views
		a.Shares = &shares
		out = append(out, a)
	}
	return out, nil
}

func intField(fields map[string]interface{}, name string) int {
	if v, ok := fields[name].(float64); ok {
		return int(v)
	}
	return 0
}
