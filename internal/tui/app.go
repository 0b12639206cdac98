package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/newsapi"
	"github.com/pders01/newsdesk/internal/paging"
	"github.com/pders01/newsdesk/internal/search"
	"github.com/pders01/newsdesk/internal/storage"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	sidebarWidth  = 28
	// chromeHeight is the separator plus the status bar.
	chromeHeight = 2
)

// NewsClient is the part of the news service the UI talks to.
type NewsClient interface {
	Suggestions(ctx context.Context, query string) ([]string, error)
	Trending(ctx context.Context, limit int) ([]news.ArticleSummary, error)
	Search(ctx context.Context, req newsapi.SearchRequest) (*news.SearchResultPage, error)
	Track(ctx context.Context, articleID string, action newsapi.TrackAction) error
}

// URLOpener launches a link outside the terminal.
type URLOpener interface {
	Open(url string) error
}

// Options wires the App to its collaborators. Store, Opener and Catalog may
// be nil.
type Options struct {
	Client       NewsClient
	Store        *storage.Store
	Opener       URLOpener
	Catalog      *filter.Catalog
	InitialQuery string
	// OnSubmit runs before navigation whenever a query is submitted.
	OnSubmit func(query string)
}

type App struct {
	config     *config.Config
	client     NewsClient
	store      *storage.Store
	opener     URLOpener
	catalog    *filter.Catalog
	engine     *search.Engine
	keyHandler *KeyHandler
	filters    *filter.Store
	sidebar    *filter.Sidebar

	searchInput textinput.Model
	savedInput  textinput.Model
	savedList   list.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view         View
	previousView View
	readerFrom   View
	focus        Focus
	variant      CardVariant
	width        int
	height       int

	query     search.QueryState
	committed string
	pager     paging.Pager
	location  string
	onSubmit  func(string)
	recent    []storage.QueryRecord

	suggestSeq  search.Sequencer
	resultsSeq  search.Sequencer
	trendingSeq search.Sequencer

	trending         []news.ArticleSummary
	trendingLoaded   bool
	trendingInFlight bool
	results          []news.ArticleSummary
	resultsErr       string
	loading          bool
	cursor           int
	cardOffset       int
	revealedAt       time.Time

	saved      map[string]bool
	shared     map[string]uint64
	shareToken uint64
	viewEpoch  uint64

	currentArticle *news.ArticleSummary
	loadingArticle bool

	status     string
	statusKind StatusKind

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
	after  func(d time.Duration, msg tea.Msg) tea.Cmd

	// copyText puts shared links on the system clipboard.
	copyText func(text string) error
}

func NewApp(cfg *config.Config, opts Options) *App {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = &filter.Catalog{}
	}

	si := textinput.New()
	si.Placeholder = "Search corporate news..."
	si.CharLimit = 256
	si.Prompt = "› "

	fi := textinput.New()
	fi.Placeholder = "Find in saved articles..."
	fi.Prompt = "› "

	savedList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	savedList.Title = "› saved"
	savedList.SetShowStatusBar(false)
	savedList.SetFilteringEnabled(false)
	savedList.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SecondaryColor)

	pager := paging.New()
	if cfg.API.PageSize > 0 {
		pager.Limit = cfg.API.PageSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:      cfg,
		client:      opts.Client,
		store:       opts.Store,
		opener:      opts.Opener,
		catalog:     catalog,
		filters:     filter.NewStore(filter.Default()),
		sidebar:     filter.NewSidebar(catalog),
		searchInput: si,
		savedInput:  fi,
		savedList:   savedList,
		viewport:    viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:     sp,
		help:        help.New(),
		view:        ViewResults,
		variant:     parseVariant(cfg.UI.CardVariant),
		width:       defaultWidth,
		height:      defaultHeight,
		query:       search.NewQueryState(),
		pager:       pager,
		location:    news.SearchPath,
		onSubmit:    opts.OnSubmit,
		saved:       map[string]bool{},
		shared:      map[string]uint64{},
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
		after:       tick,
		copyText:    clipboard.WriteAll,
	}
	if opts.Store != nil {
		app.engine = search.NewEngine(opts.Store)
		if v, err := opts.Store.GetMeta(variantMetaKey); err == nil {
			app.variant = parseVariant(v)
		}
	}

	app.filters.OnChange(func(c filter.Criteria) {
		debuglog.Debugf("filters changed: %d active, min trust %d", filter.ActiveCount(c), c.MinTrustScore)
	})

	if q := strings.TrimSpace(opts.InitialQuery); q != "" {
		app.committed = q
		app.location = news.SearchURL(q)
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	return app
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Location is the route the app last navigated to.
func (a *App) Location() string { return a.location }

// Close cancels in-flight requests.
func (a *App) Close() {
	a.cancel()
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	minWidth := a.config.UI.Article.WordWrapMinWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	wordWrapWidth = max(min(wordWrapWidth, maxWidth), minWidth)
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.ensureTrending(),
		a.loadSavedIDs(),
		a.startSearch(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case suggestionDebounceMsg:
		if !a.suggestSeq.IsLatest(msg.seq) {
			return a, nil
		}
		return a, a.fetchSuggestions(msg.seq, msg.query)

	case suggestionsMsg:
		if !a.suggestSeq.IsLatest(msg.seq) {
			return a, nil
		}
		if msg.err != nil {
			a.query.ClearSuggestions()
			logSwallowed("suggestions", msg.err, map[string]interface{}{"query": msg.query})
			return a, nil
		}
		a.query.SetSuggestions(msg.suggestions)

	case trendingMsg:
		if !a.trendingSeq.IsLatest(msg.seq) {
			return a, nil
		}
		a.trendingInFlight = false
		a.trendingLoaded = true
		if msg.err != nil {
			a.trending = nil
			logSwallowed("trending", msg.err, nil)
			return a, nil
		}
		a.trending = msg.articles

	case resultsMsg:
		if !a.resultsSeq.IsLatest(msg.seq) {
			return a, nil
		}
		return a, a.applyResults(msg)

	case revealMsg:
		// Re-render so the next staggered card appears.

	case articleRenderedMsg:
		if a.view == ViewReader && a.currentArticle != nil && a.currentArticle.ID == msg.id {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
			a.clearStatus()
		}

	case savedIDsMsg:
		for _, id := range msg.ids {
			a.saved[id] = true
		}

	case savedLoadedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), StatusError)
			return a, nil
		}
		if msg.query == strings.TrimSpace(a.savedInput.Value()) {
			a.savedList.SetItems(msg.items)
		}

	case savedPersistedMsg:
		if msg.err != nil {
			logSwallowed("persist saved", msg.err, map[string]interface{}{"id": msg.id})
		}
		if a.view == ViewSaved {
			return a, a.loadSaved(strings.TrimSpace(a.savedInput.Value()))
		}

	case recentQueriesMsg:
		a.recent = msg.records

	case shareResetMsg:
		if msg.epoch != a.viewEpoch {
			return a, nil
		}
		if a.shared[msg.id] == msg.token {
			delete(a.shared, msg.id)
		}

	case spinner.TickMsg:
		if a.loading || a.loadingArticle {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case errorMsg:
		a.setStatus(msg.err.Error(), StatusError)
	}

	if a.view == ViewReader {
		switch msg.(type) {
		case tea.MouseMsg:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	contentHeight := a.contentHeight()

	a.viewport.Width = width
	a.viewport.Height = contentHeight
	a.savedList.SetSize(width, max(contentHeight-4, 3))
	a.help.Width = width - 2

	inputWidth := min(width-8, 66)
	if inputWidth < 10 {
		inputWidth = max(width-4, 1)
	}
	a.searchInput.Width = inputWidth
	a.savedInput.Width = inputWidth
}

func (a *App) contentHeight() int {
	return max(a.height-chromeHeight, 1)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

// switchView moves to v. Leaving a card-hosting view for anything but the
// search popup discards its pending share confirmations.
func (a *App) switchView(v View) {
	if v == a.view {
		return
	}
	if a.view != ViewSearch && v != ViewSearch {
		a.teardownCards()
	}
	a.previousView = a.view
	a.view = v
}

func (a *App) teardownCards() {
	a.viewEpoch++
	a.shared = map[string]uint64{}
}

// ensureTrending fetches the trending list unless it was already loaded or
// a fetch is outstanding.
func (a *App) ensureTrending() tea.Cmd {
	if a.trendingLoaded || a.trendingInFlight {
		return nil
	}
	a.trendingInFlight = true
	return a.fetchTrending(a.trendingSeq.Next())
}

// startSearch issues the results fetch for the committed query, current
// page and filters. Without a query nothing is fetched.
func (a *App) startSearch() tea.Cmd {
	if a.committed == "" {
		a.resultsSeq.Invalidate()
		a.results = nil
		a.resultsErr = ""
		a.pager.Total = 0
		a.loading = false
		return nil
	}

	seq := a.resultsSeq.Next()
	a.loading = true
	req := newsapi.SearchRequest{
		Query:    a.committed,
		Limit:    a.pager.Limit,
		Skip:     a.pager.Skip(),
		Criteria: a.filters.Current(),
	}
	return tea.Batch(a.fetchResults(seq, req), a.spinner.Tick)
}

// applyResults installs a fresh page. A failed search drops whatever was on
// screen so an error never sits next to results from an older request.
func (a *App) applyResults(msg resultsMsg) tea.Cmd {
	a.loading = false
	a.cursor = 0
	a.cardOffset = 0

	if msg.err != nil {
		logSwallowed("search", msg.err, map[string]interface{}{
			"query": a.committed,
			"page":  a.pager.Page,
		})
		a.results = nil
		a.pager.Total = 0
		a.resultsErr = MsgSearchFailed
		return nil
	}

	a.resultsErr = ""
	a.results = msg.page.Results
	a.pager.Total = msg.page.Total
	if len(msg.page.Trending) > 0 {
		a.trending = msg.page.Trending
		a.trendingLoaded = true
	}
	return a.revealCards()
}

// revealCards starts the staggered entrance of the current page.
func (a *App) revealCards() tea.Cmd {
	a.revealedAt = a.now()
	var cmds []tea.Cmd
	for i := 1; i < len(a.results); i++ {
		cmds = append(cmds, a.after(StaggerDelay(i), revealMsg{}))
	}
	return tea.Batch(cmds...)
}

// navigate follows an in-app route such as /news-search?q=cloud.
func (a *App) navigate(target string) tea.Cmd {
	a.location = target
	kind, arg, ok := news.ParseRoute(target)
	if !ok {
		debuglog.Warnf("ignoring unknown route %q", target)
		return nil
	}

	switch kind {
	case "search":
		return a.commitQuery(arg)
	case "article":
		if art, found := a.findArticle(arg); found {
			return a.openReader(art)
		}
		debuglog.Warnf("article %s not on screen", arg)
	}
	return nil
}

func (a *App) commitQuery(q string) tea.Cmd {
	a.switchView(ViewResults)
	a.focus = FocusCards
	a.committed = q
	a.pager.Page = 1
	a.pager.Total = 0
	a.cursor = 0
	a.cardOffset = 0
	a.clearStatus()
	return tea.Batch(a.recordQuery(q), a.startSearch(), a.ensureTrending())
}

func (a *App) findArticle(id string) (news.ArticleSummary, bool) {
	for _, group := range [][]news.ArticleSummary{a.results, a.trending} {
		for _, art := range group {
			if art.ID == id {
				return art, true
			}
		}
	}
	return news.ArticleSummary{}, false
}

// openReader shows art in the reader and records a view.
func (a *App) openReader(art news.ArticleSummary) tea.Cmd {
	from := a.view
	a.switchView(ViewReader)
	if from != ViewReader {
		a.readerFrom = from
	}
	a.currentArticle = &art
	a.loadingArticle = true
	a.location = news.ArticlePath(art.ID)
	a.setStatus(MsgLoadingArticle, StatusInfo)
	return tea.Batch(a.spinner.Tick, a.renderArticle(art), a.track(art.ID, newsapi.TrackView))
}

func (a *App) closeReader() {
	back := a.readerFrom
	if back == ViewReader || back == ViewSearch {
		back = ViewResults
	}
	a.switchView(back)
	a.currentArticle = nil
	a.loadingArticle = false
	a.clearStatus()
	if back == ViewResults {
		a.location = a.resultsLocation()
	}
}

func (a *App) resultsLocation() string {
	if a.committed == "" {
		return news.SearchPath
	}
	return news.SearchURL(a.committed)
}

// dispatch applies a filter action and refetches from the first page when
// the criteria changed.
func (a *App) dispatch(act filter.Action) tea.Cmd {
	before := a.filters.Current()
	after := a.filters.Dispatch(act)
	a.sidebar.Sync(before, after)
	if filter.Equal(before, after) {
		return nil
	}
	a.pager.Page = 1
	a.cursor = 0
	a.cardOffset = 0
	return a.startSearch()
}

func (a *App) gotoPage(page int) tea.Cmd {
	next := a.pager.Goto(page)
	if next.Page == a.pager.Page {
		return nil
	}
	a.pager = next
	a.cursor = 0
	a.cardOffset = 0
	return a.startSearch()
}

// toggleSave flips the local saved flag at once. Every toggle records a
// save; persistence and tracking run in the background and never undo the
// flip.
func (a *App) toggleSave(art news.ArticleSummary) tea.Cmd {
	saved := !a.saved[art.ID]
	if saved {
		a.saved[art.ID] = true
	} else {
		delete(a.saved, art.ID)
	}
	a.setStatus(MsgSavedToggle(art.Title, saved), StatusSuccess)

	return tea.Batch(a.persistSaved(art, saved), a.track(art.ID, newsapi.TrackSave))
}

// share copies the link, records a share and shows the confirmation until
// the confirm timer fires or the view goes away.
func (a *App) share(art news.ArticleSummary) tea.Cmd {
	a.shareToken++
	token := a.shareToken
	a.shared[art.ID] = token

	reset := shareResetMsg{id: art.ID, token: token, epoch: a.viewEpoch}
	return tea.Batch(
		a.track(art.ID, newsapi.TrackShare),
		a.copyLink(art.URL),
		a.after(a.config.API.ShareConfirm, reset),
	)
}

func (a *App) cardOptions(art news.ArticleSummary, selected bool) CardOptions {
	_, shared := a.shared[art.ID]
	return CardOptions{
		Selected:     selected,
		Saved:        a.saved[art.ID],
		Shared:       shared,
		SummaryLimit: a.config.UI.Article.MaxSummaryLength,
	}
}

func (a *App) selectedArticle() (news.ArticleSummary, bool) {
	switch a.view {
	case ViewResults:
		if a.cursor >= 0 && a.cursor < len(a.results) {
			return a.results[a.cursor], true
		}
	case ViewReader:
		if a.currentArticle != nil {
			return *a.currentArticle, true
		}
	case ViewSaved:
		if it, ok := a.savedList.SelectedItem().(savedItem); ok {
			return it.saved.Article, true
		}
	}
	return news.ArticleSummary{}, false
}

func (a *App) View() string {
	height := a.contentHeight()

	var content string
	switch a.view {
	case ViewResults:
		content = a.resultsView(a.width, height)
	case ViewSearch:
		content = a.searchView(a.width, height)
	case ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, height,
				a.spinner.View()+" "+renderMuted(MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}
	case ViewSaved:
		content = a.savedView(a.width, height)
	}

	content = ContentWrapper(a.width, height).Render(content)
	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width), a.statusBar())
}

func (a *App) statusBar() string {
	var parts []string
	if a.status != "" {
		text := a.status
		if a.statusKind == StatusError {
			text = "✗ " + text
		}
		parts = append(parts, a.statusKind.style().Render(text))
	}
	parts = append(parts, a.help.ShortHelpView(a.keyHandler.GetHelpForCurrentView()))

	return lipgloss.NewStyle().
		Width(a.width).
		MaxHeight(1).
		Padding(0, 1).
		Render(strings.Join(parts, "  "))
}

type suggestionDebounceMsg struct {
	seq   uint64
	query string
}

type suggestionsMsg struct {
	seq         uint64
	query       string
	suggestions []string
	err         error
}

type trendingMsg struct {
	seq      uint64
	articles []news.ArticleSummary
	err      error
}

type resultsMsg struct {
	seq  uint64
	page *news.SearchResultPage
	err  error
}

type revealMsg struct{}

type articleRenderedMsg struct {
	id      string
	content string
}

type savedIDsMsg struct {
	ids []string
}

type savedLoadedMsg struct {
	query string
	items []list.Item
	err   error
}

type savedPersistedMsg struct {
	id  string
	err error
}

type recentQueriesMsg struct {
	records []storage.QueryRecord
}

type shareResetMsg struct {
	id    string
	token uint64
	epoch uint64
}

type errorMsg struct {
	err error
}
