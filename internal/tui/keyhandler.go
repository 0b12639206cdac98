package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/newsapi"
	"github.com/pders01/newsdesk/internal/search"
	"github.com/pders01/newsdesk/internal/validation"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		app:         app,
		config:      cfg,
		modifierKey: cfg.Keys.Modifier + "+",
		keys:        newKeyMap(cfg),
	}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewSaved:
		return kh.app.savedInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return kh.quit()
	case "esc":
		if kh.app.view == ViewSaved {
			kh.app.savedInput.Blur()
			return kh.app, nil
		}
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter()
	case "down", "ctrl+n":
		if kh.app.view == ViewSearch {
			kh.app.query.MoveHighlight(1)
			return kh.app, nil
		}
		kh.app.savedInput.Blur()
		return kh.app, nil
	case "up", "ctrl+p":
		if kh.app.view == ViewSearch {
			kh.app.query.MoveHighlight(-1)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		return kh.app, kh.submitQuery()
	case ViewSaved:
		kh.app.savedInput.Blur()
		return kh.app, nil
	default:
		return kh.app, nil
	}
}

// submitQuery commits the highlighted suggestion or the typed query. The
// caller's callback runs before navigation.
func (kh *KeyHandler) submitQuery() tea.Cmd {
	app := kh.app
	submission := validation.SanitizeQuery(app.query.Submission())
	if submission == "" {
		return nil
	}

	if app.onSubmit != nil {
		app.onSubmit(submission)
	}
	app.suggestSeq.Invalidate()
	app.query.ClearSuggestions()
	app.searchInput.Blur()
	return app.navigate(news.SearchURL(submission))
}

// delegateToTextInput passes the key to the focused input and reacts to a
// changed value.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	switch app.view {
	case ViewSearch:
		prev := app.searchInput.Value()
		newSearchInput, cmd := app.searchInput.Update(msg)
		app.searchInput = newSearchInput

		if value := app.searchInput.Value(); value != prev {
			return app, tea.Batch(cmd, kh.queryChanged(value))
		}
		return app, cmd

	case ViewSaved:
		prev := app.savedInput.Value()
		newSavedInput, cmd := app.savedInput.Update(msg)
		app.savedInput = newSavedInput

		if value := app.savedInput.Value(); value != prev {
			return app, tea.Batch(cmd, app.loadSaved(strings.TrimSpace(value)))
		}
		return app, cmd

	default:
		return app, nil
	}
}

// queryChanged records the new text and schedules a debounced suggestion
// lookup. Every change takes a new sequence tag, so only the last pending
// lookup survives.
func (kh *KeyHandler) queryChanged(value string) tea.Cmd {
	app := kh.app
	app.query.SetQuery(value)
	seq := app.suggestSeq.Next()

	q := validation.SanitizeQuery(value)
	if q == "" {
		app.query.ClearSuggestions()
		return nil
	}
	return app.after(kh.config.API.SuggestionDebounce, suggestionDebounceMsg{seq: seq, query: q})
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	k := kh.keys

	if kh.app.view == ViewSaved && key.Matches(msg, k.Find) {
		kh.app.savedInput.Focus()
		return kh.app, nil, true
	}

	switch {
	case key.Matches(msg, k.Quit):
		model, cmd := kh.quit()
		return model, cmd, true
	case key.Matches(msg, k.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case key.Matches(msg, k.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case key.Matches(msg, k.Saved) && kh.app.view != ViewSaved:
		model, cmd := kh.enterSavedMode()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewResults:
		if kh.app.focus == FocusSidebar {
			return kh.handleSidebarKeys(msg)
		}
		return kh.handleResultsKeys(msg)
	case ViewReader, ViewSaved:
		return kh.handleArticleKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app, k := kh.app, kh.keys

	switch {
	case key.Matches(msg, k.Up):
		app.cursor = max(app.cursor-1, 0)
		return app, nil, true
	case key.Matches(msg, k.Down):
		app.cursor = max(min(app.cursor+1, len(app.results)-1), 0)
		return app, nil, true
	case key.Matches(msg, k.NextPage):
		return app, app.gotoPage(app.pager.Page + 1), true
	case key.Matches(msg, k.PrevPage):
		return app, app.gotoPage(app.pager.Page - 1), true
	case key.Matches(msg, k.Filters):
		app.focus = FocusSidebar
		return app, nil, true
	case key.Matches(msg, k.Variant):
		app.variant = app.variant.Toggle()
		return app, app.persistVariant(), true
	case key.Matches(msg, k.Reset):
		return app, kh.resetFilters(), true
	case key.Matches(msg, k.Enter):
		if art, ok := app.selectedArticle(); ok {
			return app, app.openReader(art), true
		}
		return app, nil, true
	}
	return kh.handleArticleKeys(msg)
}

// handleArticleKeys covers the actions every article card offers.
func (kh *KeyHandler) handleArticleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app, k := kh.app, kh.keys

	art, ok := app.selectedArticle()
	if !ok {
		return app, nil, false
	}

	switch {
	case key.Matches(msg, k.Open):
		if art.URL == "" {
			return app, nil, true
		}
		if app.view == ViewReader {
			// openReader already recorded the view.
			return app, app.openURL(art.URL), true
		}
		return app, tea.Batch(app.openURL(art.URL), app.track(art.ID, newsapi.TrackView)), true
	case key.Matches(msg, k.Save):
		return app, app.toggleSave(art), true
	case key.Matches(msg, k.Share):
		return app, app.share(art), true
	case app.view == ViewSaved && key.Matches(msg, k.Enter):
		return app, app.openReader(art), true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app, k := kh.app, kh.keys
	criteria := app.filters.Current()

	switch {
	case key.Matches(msg, k.Up):
		app.sidebar.Move(-1, criteria)
		return app, nil, true
	case key.Matches(msg, k.Down):
		app.sidebar.Move(1, criteria)
		return app, nil, true
	case key.Matches(msg, k.Toggle):
		if act, ok := app.sidebar.Activate(criteria); ok {
			return app, app.dispatch(act), true
		}
		return app, nil, true
	case key.Matches(msg, k.Filters):
		app.focus = FocusCards
		return app, nil, true
	case key.Matches(msg, k.Reset):
		return app, kh.resetFilters(), true
	case key.Matches(msg, k.NextPage):
		return app, app.gotoPage(app.pager.Page + 1), true
	case key.Matches(msg, k.PrevPage):
		return app, app.gotoPage(app.pager.Page - 1), true
	}
	return app, nil, false
}

// resetFilters restores the default criteria when any filter is active.
func (kh *KeyHandler) resetFilters() tea.Cmd {
	app := kh.app
	if filter.ActiveCount(app.filters.Current()) == 0 {
		return nil
	}
	cmd := app.dispatch(filter.Action{Kind: filter.Reset})
	app.setStatus(MsgFiltersReset, StatusInfo)
	return cmd
}

func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewSaved:
		kh.app.savedList, cmd = kh.app.savedList.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app
	switch app.view {
	case ViewSearch:
		app.suggestSeq.Invalidate()
		app.query.ClearSuggestions()
		app.searchInput.Blur()
		back := app.previousView
		if back == ViewSearch {
			back = ViewResults
		}
		app.switchView(back)
		return app, nil

	case ViewReader:
		app.closeReader()
		return app, nil

	case ViewSaved:
		app.switchView(ViewResults)
		app.location = app.resultsLocation()
		return app, nil

	case ViewResults:
		if app.focus == FocusSidebar {
			app.focus = FocusCards
			return app, nil
		}
		return kh.quit()

	default:
		return kh.quit()
	}
}

// enterSearchMode opens the search popup over the current view.
func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	app := kh.app
	if app.view == ViewSearch {
		return app, nil
	}
	app.switchView(ViewSearch)
	app.query = search.NewQueryState()
	app.searchInput.Reset()
	app.searchInput.Focus()
	app.clearStatus()
	return app, tea.Batch(app.ensureTrending(), app.loadRecent())
}

func (kh *KeyHandler) enterSavedMode() (tea.Model, tea.Cmd) {
	app := kh.app
	app.switchView(ViewSaved)
	app.savedInput.Reset()
	app.savedInput.Blur()
	app.clearStatus()
	return app, app.loadSaved("")
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.teardownCards()
	kh.app.Close()
	return kh.app, tea.Quit
}

// GetHelpForCurrentView returns the bindings shown in the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []key.Binding {
	k := kh.keys
	app := kh.app

	switch app.view {
	case ViewResults:
		if app.focus == FocusSidebar {
			bindings := []key.Binding{k.Toggle, k.Filters}
			if filter.ActiveCount(app.filters.Current()) > 0 {
				bindings = append(bindings, k.Reset)
			}
			return bindings
		}
		bindings := []key.Binding{k.Search, k.Enter, k.Open, k.Save, k.Share, k.Filters, k.Variant}
		if app.pager.TotalPages() > 1 {
			bindings = append(bindings, k.NextPage, k.PrevPage)
		}
		return append(bindings, k.Saved, k.Quit)

	case ViewReader:
		return []key.Binding{k.Open, k.Save, k.Share, k.Back}

	case ViewSaved:
		if app.savedInput.Focused() {
			return []key.Binding{k.Back}
		}
		return []key.Binding{k.Find, k.Enter, k.Open, k.Save, k.Back}

	case ViewSearch:
		return []key.Binding{k.Back}

	default:
		return nil
	}
}
