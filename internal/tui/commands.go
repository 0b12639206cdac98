package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/newsapi"
	"github.com/pders01/newsdesk/internal/storage"
)

// savedListLimit bounds how many bookmarks the saved view loads.
const savedListLimit = 200

// variantMetaKey remembers the card density between sessions.
const variantMetaKey = "card_variant"

func (a *App) fetchSuggestions(seq uint64, query string) tea.Cmd {
	client, ctx := a.client, a.ctx
	return func() tea.Msg {
		suggestions, err := client.Suggestions(ctx, query)
		return suggestionsMsg{seq: seq, query: query, suggestions: suggestions, err: err}
	}
}

func (a *App) fetchTrending(seq uint64) tea.Cmd {
	client, ctx := a.client, a.ctx
	limit := a.config.API.TrendingLimit
	return func() tea.Msg {
		articles, err := client.Trending(ctx, limit)
		return trendingMsg{seq: seq, articles: articles, err: err}
	}
}

func (a *App) fetchResults(seq uint64, req newsapi.SearchRequest) tea.Cmd {
	client, ctx := a.client, a.ctx
	return func() tea.Msg {
		page, err := client.Search(ctx, req)
		if err == nil && page == nil {
			page = &news.SearchResultPage{}
		}
		return resultsMsg{seq: seq, page: page, err: err}
	}
}

// track sends an engagement signal. Failures are logged and dropped.
func (a *App) track(id string, action newsapi.TrackAction) tea.Cmd {
	client, ctx := a.client, a.ctx
	return func() tea.Msg {
		err := client.Track(ctx, id, action)
		logSwallowed("track", err, map[string]interface{}{"id": id, "action": string(action)})
		return nil
	}
}

func (a *App) copyLink(url string) tea.Cmd {
	if a.copyText == nil || url == "" {
		return nil
	}
	copyText := a.copyText
	return func() tea.Msg {
		logSwallowed("copy link", copyText(url), map[string]interface{}{"url": url})
		return nil
	}
}

func (a *App) openURL(url string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if opener == nil {
			return errorMsg{err: fmt.Errorf("no browser configured")}
		}
		if err := opener.Open(url); err != nil {
			return errorMsg{err: wrapErr("failed to open "+url, err)}
		}
		return nil
	}
}

// renderArticle lays the article out as markdown and renders it for the
// reader viewport.
func (a *App) renderArticle(art news.ArticleSummary) tea.Cmd {
	r, rendererErr := a.getRenderer()
	md := articleMarkdown(art, a.catalog)
	return func() tea.Msg {
		if rendererErr != nil {
			return articleRenderedMsg{id: art.ID, content: "Error initializing renderer: " + rendererErr.Error()}
		}
		rendered, err := r.Render(md)
		if err != nil {
			return articleRenderedMsg{id: art.ID, content: fmt.Sprintf("Failed to render article: %s\n\nPress esc to go back.", err)}
		}
		return articleRenderedMsg{id: art.ID, content: rendered}
	}
}

func articleMarkdown(art news.ArticleSummary, catalog *filter.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", art.Title)

	tier := news.TierFor(art.TrustScore.Overall)
	meta := []string{}
	if art.Source.Name != "" {
		meta = append(meta, art.Source.Name)
	}
	if !art.PublishedDate.IsZero() {
		meta = append(meta, art.PublishedDate.Local().Format(time.RFC1123))
	}
	meta = append(meta, fmt.Sprintf("%s (%d)", tier, int(art.TrustScore.Overall)))
	fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " • "))

	if art.Category != "" {
		fmt.Fprintf(&b, "**Category:** %s\n\n", art.Category)
	}
	if len(art.Companies) > 0 {
		names := make([]string, 0, len(art.Companies))
		for _, id := range art.Companies {
			names = append(names, filter.Label(catalog.Companies, id))
		}
		fmt.Fprintf(&b, "**Companies:** %s\n\n", strings.Join(names, ", "))
	}

	b.WriteString("---\n\n")
	if art.Summary != "" {
		b.WriteString(art.Summary)
		b.WriteString("\n\n")
	}

	if ai := art.AIAnalysis; ai != nil {
		if len(ai.KeyInsights) > 0 {
			b.WriteString("## Key insights\n\n")
			for _, insight := range ai.KeyInsights {
				fmt.Fprintf(&b, "- %s\n", insight)
			}
			b.WriteString("\n")
		}
		if ai.Sentiment != "" {
			fmt.Fprintf(&b, "**Sentiment:** %s\n\n", ai.Sentiment)
		}
	}

	if art.Views != nil || art.Shares != nil {
		fmt.Fprintf(&b, "*%d views • %d shares*\n\n", art.ViewCount(), art.ShareCount())
	}
	if art.URL != "" {
		fmt.Fprintf(&b, "[Read online](%s)\n", art.URL)
	}
	return b.String()
}

func (a *App) loadSavedIDs() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		saved, err := store.SavedArticles(0)
		if err != nil {
			return errorMsg{err: wrapErr("loading saved articles", err)}
		}
		ids := make([]string, 0, len(saved))
		for _, s := range saved {
			ids = append(ids, s.Article.ID)
		}
		return savedIDsMsg{ids: ids}
	}
}

// loadSaved fills the saved list, ranked by the local engine when query is
// set and newest first otherwise.
func (a *App) loadSaved(query string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store, engine := a.store, a.engine
	return func() tea.Msg {
		if query == "" {
			saved, err := store.SavedArticles(savedListLimit)
			if err != nil {
				return savedLoadedMsg{query: query, err: wrapErr("loading saved articles", err)}
			}
			items := make([]list.Item, len(saved))
			for i, s := range saved {
				items[i] = savedItem{saved: s}
			}
			return savedLoadedMsg{query: query, items: items}
		}

		results, err := engine.Search(query, savedListLimit)
		if err != nil {
			return savedLoadedMsg{query: query, err: wrapErr("searching saved articles", err)}
		}
		items := make([]list.Item, len(results))
		for i, r := range results {
			item := savedItem{saved: &storage.SavedArticle{Article: *r.Article, SavedAt: r.SavedAt}}
			if len(r.Matches) > 0 {
				item.snippet = r.Matches[0].Text
			}
			items[i] = item
		}
		return savedLoadedMsg{query: query, items: items}
	}
}

func (a *App) persistSaved(art news.ArticleSummary, saved bool) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		var err error
		if saved {
			err = store.SaveArticle(art)
		} else {
			err = store.RemoveArticle(art.ID)
		}
		return savedPersistedMsg{id: art.ID, err: err}
	}
}

func (a *App) persistVariant() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store, variant := a.store, a.variant
	return func() tea.Msg {
		logSwallowed("save card variant", store.SetMeta(variantMetaKey, string(variant)), nil)
		return nil
	}
}

func (a *App) recordQuery(query string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		logSwallowed("record query", store.RecordQuery(query), map[string]interface{}{"query": query})
		return nil
	}
}

func (a *App) loadRecent() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		records, err := store.RecentQueries(maxRecentQueries)
		if err != nil {
			logSwallowed("recent queries", err, nil)
			return nil
		}
		return recentQueriesMsg{records: records}
	}
}
