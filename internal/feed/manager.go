package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/validation"
)

const maxConcurrentRefresh = 5

// Manager ingests the configured sources.
type Manager struct {
	fetcher      *Fetcher
	parser       *Parser
	interval     time.Duration
	urlValidator *validation.URLValidator
	resolvers    *Resolvers
	now          func() time.Time

	mu      sync.Mutex
	sources []*Source
}

func NewManager(cfg *config.Config, companies []filter.Option) *Manager {
	m := &Manager{
		fetcher:      NewFetcher(cfg),
		parser:       NewParser(companies),
		interval:     cfg.Server.RefreshInterval,
		urlValidator: validation.NewURLValidator(),
		resolvers:    DefaultResolvers(),
		now:          time.Now,
	}
	for _, sc := range cfg.Server.Sources {
		m.sources = append(m.sources, &Source{SourceConfig: m.resolvers.Resolve(sc)})
	}
	return m
}

// SetForceRefresh makes the next refreshes ignore cache validators and
// the refresh interval.
func (m *Manager) SetForceRefresh(force bool) {
	m.fetcher.SetIgnoreCache(force)
	if force {
		m.interval = 0
	}
}

// SetPermissiveValidation allows loopback and private source URLs.
func (m *Manager) SetPermissiveValidation(permissive bool) {
	if permissive {
		m.urlValidator = validation.NewPermissiveURLValidator()
	} else {
		m.urlValidator = validation.NewURLValidator()
	}
}

// Resolvers returns the registry used to map site URLs to feed URLs.
func (m *Manager) Resolvers() *Resolvers {
	return m.resolvers
}

// AddSource resolves, validates and registers a source.
func (m *Manager) AddSource(sc config.SourceConfig) error {
	normalized, err := m.urlValidator.ValidateAndNormalize(sc.URL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}
	sc.URL = normalized
	sc = m.resolvers.Resolve(sc)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.URL == sc.URL {
			return fmt.Errorf("source %s already registered", sc.URL)
		}
	}
	m.sources = append(m.sources, &Source{SourceConfig: sc})
	return nil
}

func (m *Manager) Sources() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Source, 0, len(m.sources))
	for _, s := range m.sources {
		out = append(out, *s)
	}
	return out
}

// RefreshSource fetches one source and returns its parsed articles. A
// source fetched within the refresh interval or answered with 304 yields
// no articles.
func (m *Manager) RefreshSource(ctx context.Context, src *Source) ([]news.ArticleSummary, error) {
	if _, err := m.urlValidator.ValidateAndNormalize(src.URL); err != nil {
		return nil, fmt.Errorf("%s: invalid feed URL: %w", src.Name, err)
	}

	now := m.now()
	if m.interval > 0 && !src.LastFetched.IsZero() && now.Sub(src.LastFetched) < m.interval {
		return nil, nil
	}

	resp, updated, err := m.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	if !updated || resp == nil {
		src.LastFetched = now
		return nil, nil
	}
	defer resp.Body.Close()

	articles, err := m.parser.Parse(resp.Body, *src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}

	m.fetcher.UpdateMetadata(src, resp, now)
	return articles, nil
}

// Refresh ingests every source concurrently. Failing sources do not stop
// the others; their errors are joined into the returned error.
func (m *Manager) Refresh(ctx context.Context) ([]news.ArticleSummary, error) {
	m.mu.Lock()
	sources := append([]*Source(nil), m.sources...)
	m.mu.Unlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		all  []news.ArticleSummary
		errs []error
	)
	g.SetLimit(maxConcurrentRefresh)

	for _, src := range sources {
		g.Go(func() error {
			state := *src
			articles, err := m.RefreshSource(ctx, &state)

			m.mu.Lock()
			*src = state
			m.mu.Unlock()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				debuglog.WithFields(map[string]interface{}{"source": src.Name}).Warnf("refresh failed: %v", err)
				errs = append(errs, err)
				return nil
			}
			all = append(all, articles...)
			return nil
		})
	}
	_ = g.Wait()

	debuglog.Infof("refreshed %d sources: %d articles, %d errors", len(sources), len(all), len(errs))
	return all, errors.Join(errs...)
}
