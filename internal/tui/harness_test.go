package tui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/newsapi"
	"github.com/pders01/newsdesk/internal/storage"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type trackCall struct {
	id     string
	action newsapi.TrackAction
}

type fakeClient struct {
	mu sync.Mutex

	suggestions []string
	suggestErr  error
	trending    []news.ArticleSummary
	trendingErr error
	page        *news.SearchResultPage
	searchErr   error
	trackErr    error

	suggestCalls  []string
	trendingCalls int
	searchCalls   []newsapi.SearchRequest
	tracked       []trackCall
}

func (f *fakeClient) Suggestions(_ context.Context, q string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls = append(f.suggestCalls, q)
	return f.suggestions, f.suggestErr
}

func (f *fakeClient) Trending(_ context.Context, _ int) ([]news.ArticleSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendingCalls++
	return f.trending, f.trendingErr
}

func (f *fakeClient) Search(_ context.Context, req newsapi.SearchRequest) (*news.SearchResultPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.page, nil
}

func (f *fakeClient) Track(_ context.Context, id string, action newsapi.TrackAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, trackCall{id: id, action: action})
	return f.trackErr
}

func (f *fakeClient) lastSearch() newsapi.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.searchCalls) == 0 {
		return newsapi.SearchRequest{}
	}
	return f.searchCalls[len(f.searchCalls)-1]
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return o.err
}

type scheduled struct {
	d   time.Duration
	msg tea.Msg
}

// harness drives an App synchronously: commands run inline and their
// messages are fed back through Update. Timers are captured instead of
// waited on.
type harness struct {
	t      *testing.T
	app    *App
	client *fakeClient
	opener *fakeOpener
	timers []scheduled
	copied []string
}

func newHarness(t *testing.T, client *fakeClient, opts ...func(*Options)) *harness {
	t.Helper()
	catalog, err := filter.DefaultCatalog()
	require.NoError(t, err)

	h := &harness{t: t, client: client, opener: &fakeOpener{}}
	o := Options{Client: client, Opener: h.opener, Catalog: catalog}
	for _, fn := range opts {
		fn(&o)
	}

	h.app = NewApp(config.TestConfig(), o)
	h.app.now = func() time.Time { return testNow }
	h.app.after = func(d time.Duration, msg tea.Msg) tea.Cmd {
		h.timers = append(h.timers, scheduled{d: d, msg: msg})
		return nil
	}
	h.app.copyText = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	// Blinking cursors schedule real timers on every keystroke.
	h.app.searchInput.Cursor.SetMode(cursor.CursorStatic)
	h.app.savedInput.Cursor.SetMode(cursor.CursorStatic)
	t.Cleanup(h.app.Close)
	return h
}

func withStore(t *testing.T) (func(*Options), *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return func(o *Options) { o.Store = store }, store
}

func (h *harness) send(msg tea.Msg) {
	_, cmd := h.app.Update(msg)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.send(msg)
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// fireTimers delivers every captured timer message in scheduling order.
func (h *harness) fireTimers() {
	pending := h.timers
	h.timers = nil
	for _, s := range pending {
		h.send(s.msg)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func intPtr(n int) *int { return &n }

func testArticles() []news.ArticleSummary {
	return []news.ArticleSummary{
		{
			ID:            "a1",
			Title:         "Cloud spending rises again",
			Summary:       "Enterprises grow cloud budgets for the third year.",
			URL:           "https://example.com/cloud-spending",
			Source:        news.Source{Name: "Example Wire"},
			TrustScore:    news.TrustScore{Overall: 85},
			PublishedDate: testNow.Add(-2 * time.Hour),
			Category:      "cloud",
			AIAnalysis:    &news.AIAnalysis{KeyInsights: []string{"Budgets up 12%"}, Sentiment: "positive"},
			Views:         intPtr(12),
			Shares:        intPtr(3),
		},
		{
			ID:            "a2",
			Title:         "Kubernetes security audit findings",
			Summary:       "An audit finds misconfigured clusters at scale.",
			URL:           "https://example.com/k8s-audit",
			Source:        news.Source{Name: "Sec Daily"},
			TrustScore:    news.TrustScore{Overall: 62},
			PublishedDate: testNow.Add(-30 * time.Minute),
			Category:      "cybersecurity",
		},
	}
}

func pageOf(total int) *news.SearchResultPage {
	return &news.SearchResultPage{Results: testArticles(), Total: total}
}

var errBoom = errors.New("boom")

// committed returns a harness that already shows results for "cloud".
func committed(t *testing.T, client *fakeClient, opts ...func(*Options)) *harness {
	t.Helper()
	if client.page == nil {
		client.page = pageOf(2)
	}
	h := newHarness(t, client, opts...)
	h.run(h.app.Init())
	h.run(h.app.commitQuery("cloud"))
	require.Len(t, h.app.results, 2)
	return h
}
