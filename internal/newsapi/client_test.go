package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/filter"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", 5*time.Second, "newsdesk-test/1.0", nil)
	require.NoError(t, err)
	return c
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", time.Second, "", nil)
	assert.Error(t, err)
	_, err = NewClient("http://", time.Second, "", nil)
	assert.Error(t, err)

	c, err := NewFromConfig(config.TestConfig())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSuggestions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/news/suggestions", r.URL.Path)
		assert.Equal(t, "cloud & ai", r.URL.Query().Get("q"))
		assert.Equal(t, "newsdesk-test/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"data":["cloud migration","cloud security"]}`))
	})

	got, err := c.Suggestions(context.Background(), "cloud & ai")
	require.NoError(t, err)
	assert.Equal(t, []string{"cloud migration", "cloud security"}, got)
}

func TestSuggestionsEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	got, err := c.Suggestions(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTrending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/news/trending", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[{"id":"t1","title":"Trend","trustScore":{"overall":70},"publishedDate":"2025-01-01T00:00:00Z"}]}`))
	})

	got, err := c.Trending(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, 70.0, got[0].TrustScore.Overall)
}

func TestSearchSendsFlattenedFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/news/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"query": "cloud",
			"limit": 10,
			"skip": 20,
			"category": ["ai-ml"],
			"source": [],
			"companies": [],
			"minTrustScore": 75
		}`, string(body))

		_, _ = w.Write([]byte(`{"status":"success","data":{"results":[{"id":"a1"}],"total":95,"trending":[]}}`))
	})

	crit := filter.Reduce(filter.Default(), filter.Action{Kind: filter.ToggleCategory, Value: "ai-ml"})
	crit = filter.Reduce(crit, filter.Action{Kind: filter.SetMinTrust, Score: 75})

	page, err := c.Search(context.Background(), SearchRequest{Query: "cloud", Limit: 10, Skip: 20, Criteria: crit})
	require.NoError(t, err)
	assert.Equal(t, 95, page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "a1", page.Results[0].ID)
	assert.NotNil(t, page.Trending)
}

func TestSearchNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":"index unavailable"}`))
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "x", Limit: 10, Criteria: filter.Default()})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "error", apiErr.Status)
	assert.Equal(t, "index unavailable", apiErr.Message)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "index unavailable")
}

func TestHTTPErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.Trending(context.Background(), 3)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestMalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	})

	_, err := c.Suggestions(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "decoding")
}

func TestTrack(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"ignored": true})
	})

	ctx := context.Background()
	require.NoError(t, c.Track(ctx, "a1", TrackSave))
	require.NoError(t, c.Track(ctx, "a1", TrackShare))
	require.NoError(t, c.Track(ctx, "a b", TrackView))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/api/news/article/a1/save",
		"/api/news/article/a1/share",
		"/api/news/article/a%20b/view",
	}, paths)

	assert.Error(t, c.Track(ctx, "", TrackView))
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Suggestions(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
