package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pders01/newsdesk/internal/config"
)

const defaultUserAgent = "newsdesk/1.0 (news ingest; github.com/pders01/newsdesk)"

// Source is a configured feed plus its conditional-GET state.
type Source struct {
	config.SourceConfig
	ETag         string
	LastModified string
	LastFetched  time.Time
}

type Fetcher struct {
	client      *http.Client
	userAgent   string
	ignoreCache bool
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout := 30 * time.Second
	userAgent := defaultUserAgent
	if cfg != nil {
		if cfg.Server.HTTPTimeout > 0 {
			timeout = cfg.Server.HTTPTimeout
		}
		if cfg.API.UserAgent != "" {
			userAgent = cfg.API.UserAgent
		}
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// SetIgnoreCache drops ETag/Last-Modified on subsequent requests.
func (f *Fetcher) SetIgnoreCache(ignore bool) {
	f.ignoreCache = ignore
}

// Fetch requests src. The bool is false when the server answered 304; the
// response is nil in that case.
func (f *Fetcher) Fetch(ctx context.Context, src *Source) (*http.Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	if !f.ignoreCache {
		if src.ETag != "" {
			req.Header.Set("If-None-Match", src.ETag)
		}
		if src.LastModified != "" {
			req.Header.Set("If-Modified-Since", src.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, false, nil
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return resp, true, nil
}

// UpdateMetadata records the validators from resp on src.
func (f *Fetcher) UpdateMetadata(src *Source, resp *http.Response, now time.Time) {
	if etag := resp.Header.Get("ETag"); etag != "" {
		src.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		src.LastModified = lastMod
	}
	src.LastFetched = now
}

// RetryAfter reads the Retry-After header in seconds, defaulting to 15m.
func RetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 15 * time.Minute
}
