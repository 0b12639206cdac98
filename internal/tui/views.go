package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/storage"
)

const (
	maxRecentQueries = 5
	popupMaxWidth    = 72
)

func (a *App) resultsView(width, height int) string {
	criteria := a.filters.Current()

	title := CompactLogo + " " + a.committed
	if a.committed == "" {
		title = CompactLogo + " search"
	}
	var sub []string
	if a.committed != "" && a.resultsErr == "" && !a.loading {
		sub = append(sub, MsgResultsCount(a.pager.Total))
	}
	if f := MsgActiveFilters(filter.ActiveCount(criteria)); f != "" {
		sub = append(sub, f)
	}
	header := renderHeader(title, strings.Join(sub, " • "), width)
	bodyHeight := max(height-lipgloss.Height(header)-1, 3)

	showSidebar := width >= 70 || a.focus == FocusSidebar
	mainWidth := width
	var sidebar string
	if showSidebar {
		sw := sidebarWidth
		if width < 70 {
			sw = width
		}
		sidebar = renderSidebar(a.sidebar, criteria, sw, a.focus == FocusSidebar)
		mainWidth = width - sw - 1
	}

	var main string
	if mainWidth >= 20 {
		main = a.resultsMain(mainWidth, bodyHeight)
	}

	body := main
	if showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func (a *App) resultsMain(width, height int) string {
	switch {
	case a.committed == "":
		empty := renderEmptyState(width, min(height, 7), MsgNoQuery, MsgNoQueryHint)
		if trending := a.trendingBlock(width); trending != "" {
			return lipgloss.JoinVertical(lipgloss.Left, empty, trending)
		}
		return empty
	case a.loading && len(a.results) == 0:
		return renderCentered(width, height, a.spinner.View()+" "+renderMuted(MsgSearching))
	case a.resultsErr != "":
		return renderCentered(width, height, ErrorMessageStyle.Render("✗ "+a.resultsErr))
	case len(a.results) == 0:
		return renderEmptyState(width, height, MsgNoResults, MsgNoResultsHint)
	}

	pager := renderPager(a.pager)
	cardsHeight := height
	if pager != "" {
		cardsHeight -= lipgloss.Height(pager) + 1
	}
	cards := a.renderCards(width, max(cardsHeight, 3))
	if pager == "" {
		return cards
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards, "", pager)
}

// renderCards draws the revealed cards of the current page, scrolled so the
// cursor card is on screen.
func (a *App) renderCards(width, height int) string {
	now := a.now()
	elapsed := now.Sub(a.revealedAt)

	var cards []string
	for i, art := range a.results {
		if elapsed < StaggerDelay(i) {
			break
		}
		selected := a.focus == FocusCards && i == a.cursor
		cards = append(cards, RenderCard(art, a.variant, width, now, a.cardOptions(art, selected)))
	}
	if len(cards) == 0 {
		return ""
	}

	cursor := min(a.cursor, len(cards)-1)
	if cursor < a.cardOffset {
		a.cardOffset = cursor
	}
	for a.cardOffset < cursor && blockHeight(cards[a.cardOffset:cursor+1]) > height {
		a.cardOffset++
	}
	a.cardOffset = min(a.cardOffset, len(cards)-1)

	return ContentWrapper(width, height).Render(lipgloss.JoinVertical(lipgloss.Left, cards[a.cardOffset:]...))
}

func blockHeight(blocks []string) int {
	h := 0
	for _, b := range blocks {
		h += lipgloss.Height(b)
	}
	return h
}

func (a *App) trendingBlock(width int) string {
	if len(a.trending) == 0 {
		return ""
	}
	lines := []string{HeaderStyle.Render("Trending")}
	now := a.now()
	for i, art := range a.trending {
		line := fmt.Sprintf("%d. %s", i+1, truncateEnd(art.Title, width-18))
		lines = append(lines, line+TimeStyle.Render(" • "+news.RelativeTime(art.PublishedDate, now)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) searchView(width, height int) string {
	boxWidth := min(width-4, popupMaxWidth)
	inputWidth := max(boxWidth-6, 10)
	a.searchInput.Width = inputWidth

	rows := []string{
		renderHeader("› search", "", boxWidth),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), inputWidth),
	}

	if len(a.query.Suggestions) > 0 {
		for i, s := range a.query.Suggestions {
			line := truncateEnd(s, boxWidth-4)
			if i == a.query.Highlight {
				rows = append(rows, SelectedItemStyle.Render("› "+line))
			} else {
				rows = append(rows, SuggestionStyle.Render(line))
			}
		}
	} else if a.query.Trimmed() == "" {
		if len(a.recent) > 0 {
			rows = append(rows, "", HeaderStyle.Render("Recent"))
			for i, r := range a.recent {
				if i == maxRecentQueries {
					break
				}
				rows = append(rows, SuggestionStyle.Render(truncateEnd(r.Query, boxWidth-4)))
			}
		}
		if trending := a.trendingBlock(boxWidth); trending != "" {
			rows = append(rows, "", trending)
		}
	}

	rows = append(rows, "", renderHelp("↑↓: navigate • enter: search • esc: close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor).
		Padding(0, 1).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return renderCentered(width, height, box)
}

func (a *App) savedView(width, height int) string {
	inputWidth := max(min(width-8, popupMaxWidth), 10)
	a.savedInput.Width = inputWidth

	rows := []string{
		renderInputFrame(a.savedInput.View(), a.savedInput.Focused(), inputWidth),
	}
	if len(a.savedList.Items()) == 0 {
		hint := "Press s on any article to keep it here"
		if strings.TrimSpace(a.savedInput.Value()) != "" {
			hint = "Nothing saved matches that search"
		}
		rows = append(rows, renderEmptyState(width, max(height-4, 3), MsgNoSaved, hint))
	} else {
		rows = append(rows, a.savedList.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// savedItem adapts a bookmark for the saved list.
type savedItem struct {
	saved   *storage.SavedArticle
	snippet string
}

func (i savedItem) Title() string {
	return i.saved.Article.Title
}

func (i savedItem) Description() string {
	a := i.saved.Article
	desc := i.snippet
	if desc == "" {
		desc = a.Source.Name
	}
	tier := news.TierFor(a.TrustScore.Overall)
	return lipgloss.NewStyle().Foreground(MutedColor).Render(desc) +
		TimeStyle.Render(" • saved "+i.saved.SavedAt.Format(news.ShortDateLayout)+" • "+tier.String())
}

func (i savedItem) FilterValue() string { return i.saved.Article.Title }
