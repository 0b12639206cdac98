// Package newsapi is the HTTP client for the news search service.
package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
)

const (
	suggestionsPath = "/api/news/suggestions"
	trendingPath    = "/api/news/trending"
	searchPath      = "/api/news/search"
	articlePath     = "/api/news/article/"

	statusSuccess = "success"

	// maxBodyBytes bounds how much of a response is decoded.
	maxBodyBytes = 8 << 20
)

// TrackAction is a best-effort engagement signal for an article.
type TrackAction string

const (
	TrackSave  TrackAction = "save"
	TrackShare TrackAction = "share"
	TrackView  TrackAction = "view"
)

// SearchRequest is one page of a filtered search. Filters are flattened into
// the request body next to the paging fields.
type SearchRequest struct {
	Query    string
	Limit    int
	Skip     int
	Criteria filter.Criteria
}

type searchBody struct {
	Query         string   `json:"query"`
	Limit         int      `json:"limit"`
	Skip          int      `json:"skip"`
	Category      []string `json:"category"`
	Source        []string `json:"source"`
	Companies     []string `json:"companies"`
	MinTrustScore int      `json:"minTrustScore"`
}

type dataEnvelope[T any] struct {
	Status string `json:"status,omitempty"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

type Client struct {
	baseURL   *url.URL
	client    *http.Client
	userAgent string
}

// NewClient builds a client for baseURL. A nil httpClient gets one with the
// given timeout.
func NewClient(baseURL string, timeout time.Duration, userAgent string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must use http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL must have a host, got %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: u, client: httpClient, userAgent: userAgent}, nil
}

// NewFromConfig builds a client from the [api] section.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	return NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.UserAgent, nil)
}

// Suggestions returns completion strings for a partial query.
func (c *Client) Suggestions(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)

	var env dataEnvelope[[]string]
	if err := c.get(ctx, suggestionsPath, q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []string{}, nil
	}
	return env.Data, nil
}

// Trending returns up to limit trending articles.
func (c *Client) Trending(ctx context.Context, limit int) ([]news.ArticleSummary, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var env dataEnvelope[[]news.ArticleSummary]
	if err := c.get(ctx, trendingPath, q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []news.ArticleSummary{}, nil
	}
	return env.Data, nil
}

// Search runs one page of a filtered search. Any envelope status other than
// "success" is returned as an *APIError.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*news.SearchResultPage, error) {
	crit := req.Criteria.Clone()
	body := searchBody{
		Query:         req.Query,
		Limit:         req.Limit,
		Skip:          req.Skip,
		Category:      crit.Category,
		Source:        crit.Source,
		Companies:     crit.Companies,
		MinTrustScore: crit.MinTrustScore,
	}

	var env dataEnvelope[news.SearchResultPage]
	if err := c.post(ctx, searchPath, body, &env); err != nil {
		return nil, err
	}
	if env.Status != statusSuccess {
		return nil, &APIError{Endpoint: searchPath, StatusCode: http.StatusOK, Status: env.Status, Message: env.Error}
	}
	page := env.Data
	if page.Results == nil {
		page.Results = []news.ArticleSummary{}
	}
	if page.Trending == nil {
		page.Trending = []news.ArticleSummary{}
	}
	return &page, nil
}

// Track records an engagement signal. The response body is ignored.
func (c *Client) Track(ctx context.Context, articleID string, action TrackAction) error {
	if articleID == "" {
		return fmt.Errorf("tracking %s: empty article id", action)
	}
	path := articlePath + url.PathEscape(articleID) + "/" + string(action)
	return c.post(ctx, path, nil, nil)
}

// endpoint joins the base URL with an already escaped path.
func (c *Client) endpoint(escapedPath string, q url.Values) string {
	s := c.baseURL.String() + escapedPath
	if len(q) > 0 {
		s += "?" + q.Encode()
	}
	return s
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), r)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Endpoint: path, StatusCode: resp.StatusCode}
		var env dataEnvelope[json.RawMessage]
		if json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env) == nil {
			apiErr.Status = env.Status
			apiErr.Message = env.Error
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
